package domain

import (
	"context"
)

// KnowledgeStore provides access to the expert knowledge base.
// Implementations return ErrNotFound (wrapped) for missing ids.
type KnowledgeStore interface {
	ListSymptoms(ctx context.Context) ([]Symptom, error)
	GetSymptom(ctx context.Context, id string) (*Symptom, error)
	ListDiseases(ctx context.Context) ([]Disease, error)
	GetDisease(ctx context.Context, id string) (*Disease, error)
	ListRules(ctx context.Context, filter RuleFilter) ([]Rule, error)
	GetRule(ctx context.Context, id string) (*Rule, error)
	// CreateRule stores a new rule. An empty ID is assigned the next sequential
	// id. Returns ErrDuplicateRule when the (symptom, disease) pair exists and
	// ErrUnknownReference when either side is missing.
	CreateRule(ctx context.Context, rule *Rule) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	Reload() error
	Validate() error
}
