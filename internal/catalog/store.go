// Package catalog ships the built-in knowledge base of 33 symptoms, 8 smoking
// related diseases and 56 certainty factor rules, and an in-memory store that
// serves it. The lite MCP server and the CLI run entirely on this store; the
// HTTP server uses it when no database is configured and to seed Postgres.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sidirok-cf-server/internal/domain"
)

// RuleIDPrefix prefixes generated rule ids.
const RuleIDPrefix = "R"

// Default returns a fresh copy of the built-in knowledge base.
func Default() *domain.KnowledgeBase {
	return &domain.KnowledgeBase{
		Symptoms: cloneSymptoms(symptoms),
		Diseases: cloneDiseases(diseases),
		Rules:    cloneRules(rules),
		LoadedAt: time.Now().UTC(),
	}
}

// NextRuleID returns the id following the highest numbered R-id in existing,
// zero padded to two digits like the shipped rules (R57, R58, ...).
func NextRuleID(existing []domain.Rule) string {
	highest := 0
	for _, r := range existing {
		if !strings.HasPrefix(r.ID, RuleIDPrefix) {
			continue
		}
		n, err := strconv.Atoi(r.ID[len(RuleIDPrefix):])
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%02d", RuleIDPrefix, highest+1)
}

// Store is a concurrency-safe in-memory domain.KnowledgeStore.
type Store struct {
	mu       sync.RWMutex
	symptoms []domain.Symptom
	diseases []domain.Disease
	rules    []domain.Rule
}

// NewStore returns a store holding the built-in knowledge base.
func NewStore() *Store {
	return NewStoreFrom(Default())
}

// NewStoreFrom returns a store holding a copy of kb.
func NewStoreFrom(kb *domain.KnowledgeBase) *Store {
	return &Store{
		symptoms: cloneSymptoms(kb.Symptoms),
		diseases: cloneDiseases(kb.Diseases),
		rules:    cloneRules(kb.Rules),
	}
}

// ListSymptoms returns all symptoms ordered by id.
func (s *Store) ListSymptoms(ctx context.Context) ([]domain.Symptom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := cloneSymptoms(s.symptoms)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetSymptom returns one symptom.
func (s *Store) GetSymptom(ctx context.Context, id string) (*domain.Symptom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sym := range s.symptoms {
		if sym.ID == id {
			out := sym
			return &out, nil
		}
	}
	return nil, fmt.Errorf("symptom %s: %w", id, domain.ErrNotFound)
}

// ListDiseases returns all diseases ordered by id.
func (s *Store) ListDiseases(ctx context.Context) ([]domain.Disease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := cloneDiseases(s.diseases)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetDisease returns one disease.
func (s *Store) GetDisease(ctx context.Context, id string) (*domain.Disease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.diseases {
		if d.ID == id {
			out := cloneDisease(d)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("disease %s: %w", id, domain.ErrNotFound)
}

// ListRules returns the rules matching filter ordered by id.
func (s *Store) ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetRule returns one rule.
func (s *Store) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rules {
		if r.ID == id {
			out := r
			return &out, nil
		}
	}
	return nil, fmt.Errorf("rule %s: %w", id, domain.ErrNotFound)
}

// CreateRule adds rule, assigning an id when it has none.
func (s *Store) CreateRule(ctx context.Context, rule *domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasSymptom(rule.SymptomID) {
		return fmt.Errorf("symptom %s: %w", rule.SymptomID, domain.ErrUnknownReference)
	}
	if !s.hasDisease(rule.DiseaseID) {
		return fmt.Errorf("disease %s: %w", rule.DiseaseID, domain.ErrUnknownReference)
	}
	for _, r := range s.rules {
		if r.SymptomID == rule.SymptomID && r.DiseaseID == rule.DiseaseID {
			return fmt.Errorf("%s -> %s: %w", rule.SymptomID, rule.DiseaseID, domain.ErrDuplicateRule)
		}
		if rule.ID != "" && r.ID == rule.ID {
			return fmt.Errorf("rule id %s: %w", rule.ID, domain.ErrDuplicateRule)
		}
	}

	if rule.ID == "" {
		rule.ID = NextRuleID(s.rules)
	}
	s.rules = append(s.rules, *rule)
	return nil
}

func (s *Store) hasSymptom(id string) bool {
	for _, sym := range s.symptoms {
		if sym.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) hasDisease(id string) bool {
	for _, d := range s.diseases {
		if d.ID == id {
			return true
		}
	}
	return false
}

func cloneSymptoms(in []domain.Symptom) []domain.Symptom {
	out := make([]domain.Symptom, len(in))
	copy(out, in)
	return out
}

func cloneRules(in []domain.Rule) []domain.Rule {
	out := make([]domain.Rule, len(in))
	copy(out, in)
	return out
}

func cloneDiseases(in []domain.Disease) []domain.Disease {
	out := make([]domain.Disease, len(in))
	for i, d := range in {
		out[i] = cloneDisease(d)
	}
	return out
}

func cloneDisease(d domain.Disease) domain.Disease {
	d.Prevention = append([]string(nil), d.Prevention...)
	d.Treatment = append([]string(nil), d.Treatment...)
	if d.Statistics != nil {
		stats := make(map[string]string, len(d.Statistics))
		for k, v := range d.Statistics {
			stats[k] = v
		}
		d.Statistics = stats
	}
	return d
}
