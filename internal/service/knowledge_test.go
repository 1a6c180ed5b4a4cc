package service

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidirok-cf-server/internal/cache"
	"github.com/sidirok-cf-server/internal/catalog"
	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/metrics"
)

// flakyStore counts snapshot loads and can be switched to fail them.
type flakyStore struct {
	*catalog.Store
	fail  atomic.Bool
	loads atomic.Int32
}

func (f *flakyStore) ListSymptoms(ctx context.Context) ([]domain.Symptom, error) {
	f.loads.Add(1)
	if f.fail.Load() {
		return nil, errors.New("connection refused")
	}
	return f.Store.ListSymptoms(ctx)
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: catalog.NewStore()}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func float(v float64) *float64 { return &v }

func TestKnowledgeService_SnapshotUsesMemoryTier(t *testing.T) {
	store := newFlakyStore()
	m := metrics.New()
	svc := NewKnowledgeService(store, testLogger(),
		WithCacheTiers(cache.NewMemoryCache(4, time.Minute)),
		WithKnowledgeMetrics(m))
	ctx := context.Background()

	first, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	second, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), store.loads.Load())
	assert.Len(t, first.Rules, 56)
	assert.False(t, first.LoadedAt.IsZero())
}

func TestKnowledgeService_ServesLastSnapshotWhenStoreFails(t *testing.T) {
	store := newFlakyStore()
	svc := NewKnowledgeService(store, testLogger())
	ctx := context.Background()

	good, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	store.fail.Store(true)
	got, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, good, got)
}

func TestKnowledgeService_BreakerOpensAfterFailures(t *testing.T) {
	store := newFlakyStore()
	store.fail.Store(true)
	svc := NewKnowledgeService(store, testLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Snapshot(ctx)
		assert.True(t, errors.Is(err, domain.ErrUnavailable), "attempt %d: %v", i, err)
	}
	// The breaker trips after three failed loads and rejects the rest
	assert.Equal(t, int32(3), store.loads.Load())
}

func TestKnowledgeService_Symptoms(t *testing.T) {
	svc := NewKnowledgeService(catalog.NewStore(), testLogger())
	ctx := context.Background()

	all, err := svc.ListSymptoms(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 33)

	cardio, err := svc.ListSymptoms(ctx, "cardiovascular")
	require.NoError(t, err)
	assert.Len(t, cardio, 4)
	for _, s := range cardio {
		assert.Equal(t, "cardiovascular", s.Category)
	}

	none, err := svc.ListSymptoms(ctx, "dermatological")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cardiovascular", "neurological", "oral", "pain", "reproductive", "respiratory", "systemic"}, categories)

	sym, err := svc.GetSymptom(ctx, "G07")
	require.NoError(t, err)
	assert.Equal(t, "pain", sym.Category)

	_, err = svc.GetSymptom(ctx, "G99")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestKnowledgeService_Diseases(t *testing.T) {
	svc := NewKnowledgeService(catalog.NewStore(), testLogger())
	ctx := context.Background()

	diseases, err := svc.ListDiseases(ctx)
	require.NoError(t, err)
	assert.Len(t, diseases, 8)

	detail, err := svc.GetDisease(ctx, "P4")
	require.NoError(t, err)
	assert.Equal(t, "P4", detail.ID)
	require.Len(t, detail.Rules, 8)
	assert.Equal(t, "R25", detail.Rules[0].ID)
	assert.Equal(t, "R32", detail.Rules[7].ID)

	_, err = svc.GetDisease(ctx, "P9")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestKnowledgeService_ListRules(t *testing.T) {
	svc := NewKnowledgeService(catalog.NewStore(), testLogger())
	ctx := context.Background()

	page, err := svc.ListRules(ctx, domain.RuleFilter{}, domain.NewPage(2, 10))
	require.NoError(t, err)
	require.Len(t, page.Data, 10)
	assert.Equal(t, "R11", page.Data[0].ID)
	assert.Equal(t, domain.Pagination{Total: 56, Page: 2, Limit: 10, TotalPages: 6, HasNext: true, HasPrev: true}, page.Pagination)

	last, err := svc.ListRules(ctx, domain.RuleFilter{}, domain.NewPage(6, 10))
	require.NoError(t, err)
	assert.Len(t, last.Data, 6)
	assert.False(t, last.Pagination.HasNext)

	beyond, err := svc.ListRules(ctx, domain.RuleFilter{}, domain.NewPage(9, 10))
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)

	for _, p := range []domain.Page{
		domain.NewPage(math.MaxInt, 10),
		{Page: math.MaxInt, Limit: domain.MaxPageLimit},
	} {
		huge, err := svc.ListRules(ctx, domain.RuleFilter{}, p)
		require.NoError(t, err, "page %+v", p)
		assert.Empty(t, huge.Data)
		assert.Equal(t, int64(56), huge.Pagination.Total)
	}

	filtered, err := svc.ListRules(ctx, domain.RuleFilter{SymptomID: "G01"}, domain.NewPage(1, 100))
	require.NoError(t, err)
	for _, r := range filtered.Data {
		assert.Equal(t, "G01", r.SymptomID)
	}
	assert.Equal(t, int64(len(filtered.Data)), filtered.Pagination.Total)

	rule, err := svc.GetRule(ctx, "R27")
	require.NoError(t, err)
	assert.Equal(t, "G07", rule.SymptomID)

	_, err = svc.GetRule(ctx, "R00")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestKnowledgeService_CreateRuleInvalidatesCache(t *testing.T) {
	store := newFlakyStore()
	svc := NewKnowledgeService(store, testLogger(), WithCacheTiers(cache.NewMemoryCache(4, time.Hour)))
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	rule, err := svc.CreateRule(ctx, &domain.CreateRuleRequest{
		SymptomID: "G01",
		DiseaseID: "P4",
		MB:        float(0.6),
		MD:        float(0.1),
	})
	require.NoError(t, err)
	assert.Equal(t, "R57", rule.ID)
	assert.Equal(t, domain.DefaultRuleWeight, rule.Weight)

	got, err := svc.GetRule(ctx, "R57")
	require.NoError(t, err)
	assert.Equal(t, *rule, *got)
	assert.Equal(t, int32(2), store.loads.Load())
}

func TestKnowledgeService_CreateRuleErrors(t *testing.T) {
	svc := NewKnowledgeService(catalog.NewStore(), testLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *domain.CreateRuleRequest
		wantErr error
	}{
		{
			name:    "duplicate pair",
			req:     &domain.CreateRuleRequest{SymptomID: "G07", DiseaseID: "P4", MB: float(0.5), MD: float(0)},
			wantErr: domain.ErrDuplicateRule,
		},
		{
			name:    "unknown disease",
			req:     &domain.CreateRuleRequest{SymptomID: "G07", DiseaseID: "P42", MB: float(0.5), MD: float(0)},
			wantErr: domain.ErrUnknownReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRule(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	_, err := svc.CreateRule(ctx, &domain.CreateRuleRequest{SymptomID: "G07", DiseaseID: "P1", MB: float(1.5), MD: float(0)})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "mb", verr.Field)
}

// ctxStore fails loads the way a database driver does once the caller's
// context is done.
type ctxStore struct {
	*catalog.Store
	loads atomic.Int32
}

func (c *ctxStore) ListSymptoms(ctx context.Context) ([]domain.Symptom, error) {
	c.loads.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Store.ListSymptoms(ctx)
}

func TestKnowledgeService_AbandonedRequestsDoNotTripBreaker(t *testing.T) {
	store := &ctxStore{Store: catalog.NewStore()}
	svc := NewKnowledgeService(store, testLogger())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	for i := 0; i < 3; i++ {
		_, err := svc.Snapshot(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, domain.ErrUnavailable)

		_, err = svc.Snapshot(expired)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, int32(6), store.loads.Load(), "every load reached the store")

	kb, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, kb.Rules, 56)
}

// pausingStore holds the first rule load open until released, after the
// rules have been read.
type pausingStore struct {
	*catalog.Store
	loads   atomic.Int32
	paused  chan struct{}
	release chan struct{}
}

func (p *pausingStore) ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.Rule, error) {
	rules, err := p.Store.ListRules(ctx, filter)
	if p.loads.Add(1) == 1 {
		close(p.paused)
		<-p.release
	}
	return rules, err
}

func TestKnowledgeService_LoadRacingCreateRuleIsNotCached(t *testing.T) {
	store := &pausingStore{
		Store:   catalog.NewStore(),
		paused:  make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewKnowledgeService(store, testLogger(), WithCacheTiers(cache.NewMemoryCache(4, time.Hour)))
	ctx := context.Background()

	type result struct {
		kb  *domain.KnowledgeBase
		err error
	}
	done := make(chan result, 1)
	go func() {
		kb, err := svc.Snapshot(ctx)
		done <- result{kb, err}
	}()

	<-store.paused
	_, err := svc.CreateRule(ctx, &domain.CreateRuleRequest{
		SymptomID: "G01",
		DiseaseID: "P4",
		MB:        float(0.6),
		MD:        float(0.1),
	})
	require.NoError(t, err)
	close(store.release)

	racing := <-done
	require.NoError(t, racing.err)
	assert.Len(t, racing.kb.Rules, 56, "load read the rules before the insert")

	rule, err := svc.GetRule(ctx, "R57")
	require.NoError(t, err)
	assert.Equal(t, "G01", rule.SymptomID)
	assert.Equal(t, int32(2), store.loads.Load())
}
