package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidirok-cf-server/internal/domain"
)

func testConfig(t *testing.T, backend string) *domain.Config {
	t.Helper()
	return &domain.Config{
		Cache: domain.CacheConfig{MemoryMaxItems: 4, MemoryTTL: time.Minute},
		History: domain.HistoryConfig{
			Backend:    backend,
			SQLitePath: filepath.Join(t.TempDir(), "nested", "history.db"),
		},
		Engine: domain.EngineConfig{MaxAlternatives: 2},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestNew_CatalogWithSQLiteHistory(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, HistorySQLite), quietLogger())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.History)
	assert.Empty(t, a.Checks)

	outcome, err := a.Diagnosis.Diagnose(context.Background(), &domain.DiagnosisRequest{
		SelectedSymptoms: []domain.SelectedSymptom{{SymptomID: "G07", Certainty: 1}},
	}, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.ID)
	assert.LessOrEqual(t, len(outcome.Summary.Alternatives), 2)
}

func TestNew_WithoutHistory(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, HistoryNone), quietLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.History)
	_, err = a.Diagnosis.History(context.Background(), "user-1", domain.NewPage(1, 10))
	assert.True(t, errors.Is(err, domain.ErrHistoryDisabled))
}

func TestNew_UnknownHistoryBackend(t *testing.T) {
	_, err := New(context.Background(), testConfig(t, "mongo"), quietLogger())
	assert.Error(t, err)
}

func TestNew_RedisUnavailableIsTolerated(t *testing.T) {
	cfg := testConfig(t, HistoryNone)
	cfg.Cache.RedisEnabled = true
	cfg.Cache.RedisURL = "redis://127.0.0.1:1/0"

	a, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.NotContains(t, a.Checks, "redis")
	symptoms, err := a.Knowledge.ListSymptoms(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, symptoms, 33)
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []int
	a := &App{}
	a.onClose(func() { order = append(order, 1) })
	a.onClose(func() { order = append(order, 2) })

	a.Close()
	a.Close()
	assert.Equal(t, []int{2, 1}, order)
}
