// Package domain contains the core entities of the smoking-related disease
// self-assessment service: the expert knowledge base (symptoms, diseases and
// certainty-factor rules) and the records produced by a diagnosis.
//
// The knowledge model follows the MYCIN certainty factor formulation where each
// rule carries a measure of belief (MB) and a measure of disbelief (MD).
package domain

import (
	"errors"
	"time"
)

// Severity ranks how dangerous a disease is. It is used as the secondary key
// when two diagnoses carry the same adjusted certainty.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

// RiskLevel is the overall classification attached to a diagnosis summary.
type RiskLevel string

const (
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelModerate RiskLevel = "moderate"
	RiskLevelLow      RiskLevel = "low"
)

// Sentinel errors shared by stores and services.
var (
	ErrNotFound         = errors.New("not found")
	ErrNoSymptoms       = errors.New("at least one symptom must be selected")
	ErrDuplicateRule    = errors.New("rule for this symptom and disease already exists")
	ErrUnknownReference = errors.New("referenced symptom or disease does not exist")
	ErrInvalidSeverity  = errors.New("invalid disease severity")
	ErrUnavailable      = errors.New("knowledge base unavailable")
	ErrHistoryDisabled  = errors.New("diagnosis history is not configured")
)

// IsValid reports whether s is one of the known severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityModerate, SeverityLow:
		return true
	default:
		return false
	}
}

// Rank orders severities so that critical > high > moderate > low.
// Unknown severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid reports whether r is one of the known risk levels.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelHigh, RiskLevelModerate, RiskLevelLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	return string(r)
}

// Symptom is an observable complaint a user can report.
// MB and MD are the symptom's default belief values; they are informational
// and never enter the inference, which uses per-rule values.
type Symptom struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	MB          float64 `json:"mb"`
	MD          float64 `json:"md"`
}

// Disease is a diagnosable condition. Prevention, Treatment and Statistics are
// passed through to clients untouched.
type Disease struct {
	ID          string            `json:"id"`
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Probability float64           `json:"probability"`
	Severity    Severity          `json:"severity"`
	Prevention  []string          `json:"prevention,omitempty"`
	Treatment   []string          `json:"treatment,omitempty"`
	Statistics  map[string]string `json:"statistics,omitempty"`
}

// Rule links one symptom to one disease with expert-assigned belief values.
// At most one rule exists per (SymptomID, DiseaseID) pair.
type Rule struct {
	ID        string  `json:"id"`
	SymptomID string  `json:"symptom_id"`
	DiseaseID string  `json:"disease_id"`
	MB        float64 `json:"mb"`
	MD        float64 `json:"md"`
	Weight    float64 `json:"weight"`
}

// RuleFilter narrows rule listings. Empty fields match everything.
type RuleFilter struct {
	DiseaseID string
	SymptomID string
}

// Matches reports whether rule satisfies the filter.
func (f RuleFilter) Matches(rule Rule) bool {
	if f.DiseaseID != "" && rule.DiseaseID != f.DiseaseID {
		return false
	}
	if f.SymptomID != "" && rule.SymptomID != f.SymptomID {
		return false
	}
	return true
}

// KnowledgeBase is an immutable snapshot of everything the inference engine
// needs. It is loaded once per request (or served from cache) and never mutated.
type KnowledgeBase struct {
	Symptoms []Symptom `json:"symptoms"`
	Diseases []Disease `json:"diseases"`
	Rules    []Rule    `json:"rules"`
	LoadedAt time.Time `json:"loaded_at"`
}

// FindSymptom returns the symptom with the given id.
func (kb *KnowledgeBase) FindSymptom(id string) (Symptom, bool) {
	for _, s := range kb.Symptoms {
		if s.ID == id {
			return s, true
		}
	}
	return Symptom{}, false
}

// FindDisease returns the disease with the given id.
func (kb *KnowledgeBase) FindDisease(id string) (Disease, bool) {
	for _, d := range kb.Diseases {
		if d.ID == id {
			return d, true
		}
	}
	return Disease{}, false
}
