package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/sidirok-cf-server/internal/cache"
	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/metrics"
	"github.com/sidirok-cf-server/pkg/certainty"
)

// DiseaseDetail is a disease together with the rules that conclude it.
type DiseaseDetail struct {
	domain.Disease
	Rules []domain.Rule `json:"rules"`
}

// KnowledgeService serves the knowledge base through the snapshot cache tiers.
// Store reads go through a circuit breaker; while it is open the last snapshot
// loaded is served instead.
type KnowledgeService struct {
	store   domain.KnowledgeStore
	tiers   []cache.Tier
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     *logrus.Logger

	// generation advances on every Invalidate; loads that straddle one are
	// returned to the caller but not cached.
	generation atomic.Uint64

	mu    sync.RWMutex
	stale *domain.KnowledgeBase
}

// KnowledgeOption configures a KnowledgeService.
type KnowledgeOption func(*KnowledgeService)

// WithCacheTiers sets the cache tiers, fastest first.
func WithCacheTiers(tiers ...cache.Tier) KnowledgeOption {
	return func(s *KnowledgeService) {
		s.tiers = tiers
	}
}

// WithKnowledgeMetrics records snapshot lookups on m.
func WithKnowledgeMetrics(m *metrics.Metrics) KnowledgeOption {
	return func(s *KnowledgeService) {
		s.metrics = m
	}
}

// WithBreakerSettings replaces the default circuit breaker settings. A nil
// IsSuccessful keeps cancelled and timed-out calls from counting as failures.
func WithBreakerSettings(st gobreaker.Settings) KnowledgeOption {
	return func(s *KnowledgeService) {
		if st.IsSuccessful == nil {
			st.IsSuccessful = breakerSuccess
		}
		s.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

// NewKnowledgeService creates a knowledge service over store
func NewKnowledgeService(store domain.KnowledgeStore, logger *logrus.Logger, opts ...KnowledgeOption) *KnowledgeService {
	s := &KnowledgeService{
		store: store,
		log:   logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "knowledge-store",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		IsSuccessful: breakerSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// breakerSuccess keeps callers that gave up from counting against the store.
func breakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Snapshot returns the whole knowledge base. The result is shared and must not be modified.
func (s *KnowledgeService) Snapshot(ctx context.Context) (*domain.KnowledgeBase, error) {
	generation := s.generation.Load()

	for i, tier := range s.tiers {
		kb, ok, err := tier.Get(ctx, cache.SnapshotKey)
		if err != nil {
			s.recordLookup(tier.Name(), metrics.ResultError)
			s.log.WithError(err).WithField("tier", tier.Name()).Warn("Snapshot cache lookup failed")
			continue
		}
		if !ok {
			s.recordLookup(tier.Name(), metrics.ResultMiss)
			continue
		}
		s.recordLookup(tier.Name(), metrics.ResultHit)
		s.fill(ctx, generation, s.tiers[:i], kb)
		return kb, nil
	}

	loaded, err := s.breaker.Execute(func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.recordLookup(metrics.TierStore, metrics.ResultError)
		if kb := s.lastGood(); kb != nil {
			s.recordLookup(metrics.TierStale, metrics.ResultHit)
			s.log.WithError(err).Warn("Knowledge store unavailable, serving last snapshot")
			return kb, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	kb := loaded.(*domain.KnowledgeBase)
	s.recordLookup(metrics.TierStore, metrics.ResultHit)
	if s.fill(ctx, generation, s.tiers, kb) {
		s.mu.Lock()
		s.stale = kb
		s.mu.Unlock()
	}
	return kb, nil
}

func (s *KnowledgeService) load(ctx context.Context) (*domain.KnowledgeBase, error) {
	symptoms, err := s.store.ListSymptoms(ctx)
	if err != nil {
		return nil, err
	}
	diseases, err := s.store.ListDiseases(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.store.ListRules(ctx, domain.RuleFilter{})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"symptoms": len(symptoms),
		"diseases": len(diseases),
		"rules":    len(rules),
	}).Debug("Knowledge snapshot loaded from store")

	return &domain.KnowledgeBase{
		Symptoms: symptoms,
		Diseases: diseases,
		Rules:    rules,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// fill writes kb to tiers unless an Invalidate ran since generation was read.
// It reports whether kb is still current.
func (s *KnowledgeService) fill(ctx context.Context, generation uint64, tiers []cache.Tier, kb *domain.KnowledgeBase) bool {
	for _, tier := range tiers {
		if s.generation.Load() != generation {
			s.log.WithField("tier", tier.Name()).Debug("Knowledge changed during load, snapshot not cached")
			return false
		}
		if err := tier.Set(ctx, cache.SnapshotKey, kb); err != nil {
			s.log.WithError(err).WithField("tier", tier.Name()).Warn("Failed to cache knowledge snapshot")
			continue
		}
		// An Invalidate that landed between the check and the write may
		// have cleared this tier before the write.
		if s.generation.Load() != generation {
			if err := tier.Invalidate(ctx); err != nil {
				s.log.WithError(err).WithField("tier", tier.Name()).Warn("Failed to invalidate snapshot cache")
			}
			return false
		}
	}
	return true
}

func (s *KnowledgeService) lastGood() *domain.KnowledgeBase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

func (s *KnowledgeService) recordLookup(tier, result string) {
	if s.metrics != nil {
		s.metrics.RecordKnowledgeLookup(tier, result)
	}
}

// Invalidate drops every cached snapshot.
func (s *KnowledgeService) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	for _, tier := range s.tiers {
		if err := tier.Invalidate(ctx); err != nil {
			s.log.WithError(err).WithField("tier", tier.Name()).Warn("Failed to invalidate snapshot cache")
		}
	}
}

// ListSymptoms returns all symptoms, or only those in category when it is set.
func (s *KnowledgeService) ListSymptoms(ctx context.Context, category string) ([]domain.Symptom, error) {
	kb, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Symptom{}
	for _, sym := range kb.Symptoms {
		if category == "" || sym.Category == category {
			out = append(out, sym)
		}
	}
	return out, nil
}

// Categories returns the distinct symptom categories in ascending order.
func (s *KnowledgeService) Categories(ctx context.Context) ([]string, error) {
	kb, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, sym := range kb.Symptoms {
		if sym.Category == "" || seen[sym.Category] {
			continue
		}
		seen[sym.Category] = true
		out = append(out, sym.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *KnowledgeService) GetSymptom(ctx context.Context, id string) (*domain.Symptom, error) {
	kb, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sym, ok := kb.FindSymptom(id)
	if !ok {
		return nil, fmt.Errorf("symptom %s: %w", id, domain.ErrNotFound)
	}
	return &sym, nil
}

func (s *KnowledgeService) ListDiseases(ctx context.Context) ([]domain.Disease, error) {
	kb, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.Disease{}, kb.Diseases...), nil
}

// GetDisease returns a disease with its rules.
func (s *KnowledgeService) GetDisease(ctx context.Context, id string) (*DiseaseDetail, error) {
	kb, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	disease, ok := kb.FindDisease(id)
	if !ok {
		return nil, fmt.Errorf("disease %s: %w", id, domain.ErrNotFound)
	}
	return &DiseaseDetail{
		Disease: disease,
		Rules:   filterRules(kb.Rules, domain.RuleFilter{DiseaseID: id}),
	}, nil
}

// ListRules returns one page of the rules matching filter, ordered by id.
func (s *KnowledgeService) ListRules(ctx context.Context, filter domain.RuleFilter, page domain.Page) (*domain.PagedResult[domain.Rule], error) {
	kb, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	matched := filterRules(kb.Rules, filter)

	start := page.Offset()
	if start < 0 || start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if page.Limit > 0 && page.Limit < end-start {
		end = start + page.Limit
	}

	return &domain.PagedResult[domain.Rule]{
		Data:       append([]domain.Rule{}, matched[start:end]...),
		Pagination: page.Paginate(int64(len(matched))),
	}, nil
}

func (s *KnowledgeService) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	kb, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range kb.Rules {
		if r.ID == id {
			rule := r
			return &rule, nil
		}
	}
	return nil, fmt.Errorf("rule %s: %w", id, domain.ErrNotFound)
}

// CreateRule validates and stores a new rule, then invalidates the snapshot caches.
func (s *KnowledgeService) CreateRule(ctx context.Context, req *domain.CreateRuleRequest) (*domain.Rule, error) {
	if err := domain.ValidateCreateRuleRequest(req); err != nil {
		return nil, err
	}

	rule := req.ToRule()
	if err := s.store.CreateRule(ctx, &rule); err != nil {
		if !errors.Is(err, domain.ErrDuplicateRule) && !errors.Is(err, domain.ErrUnknownReference) {
			s.log.WithError(err).Error("Failed to create rule")
		}
		return nil, err
	}

	s.Invalidate(ctx)

	s.log.WithFields(logrus.Fields{
		"rule_id":    rule.ID,
		"symptom_id": rule.SymptomID,
		"disease_id": rule.DiseaseID,
	}).Info("Rule created")
	return &rule, nil
}

func filterRules(rules []domain.Rule, filter domain.RuleFilter) []domain.Rule {
	out := []domain.Rule{}
	for _, r := range rules {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return certainty.CompareRuleIDs(out[i].ID, out[j].ID) < 0 })
	return out
}
