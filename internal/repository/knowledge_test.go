package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sidirok-cf-server/internal/catalog"
	"github.com/sidirok-cf-server/internal/database"
	"github.com/sidirok-cf-server/internal/domain"
)

// generateTestPassword creates a random password for test databases
func generateTestPassword() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(bytes)
}

func setupTestDB(t *testing.T) (*database.DB, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()
	testPassword := generateTestPassword()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	config := database.Config{
		Host:        host,
		Port:        port.Int(),
		Database:    "testdb",
		Username:    "testuser",
		Password:    testPassword,
		MaxConns:    10,
		MinConns:    2,
		MaxConnLife: time.Hour,
		MaxConnIdle: time.Minute * 30,
		SSLMode:     "disable",
	}

	logger := testLogger()
	db, err := database.NewConnection(ctx, config, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	databaseURL := "postgres://testuser:" + testPassword + "@" + host + ":" + port.Port() + "/testdb?sslmode=disable"
	if err := database.Migrate(ctx, databaseURL, "../../migrations", logger); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}
	return db, cleanup
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func seededRepository(t *testing.T) (*KnowledgeRepository, func()) {
	db, cleanup := setupTestDB(t)
	repo := NewKnowledgeRepository(db.Pool, testLogger())

	result, err := repo.Seed(context.Background(), catalog.Default())
	require.NoError(t, err)
	require.Equal(t, int64(33), result.Symptoms)
	require.Equal(t, int64(8), result.Diseases)
	require.Equal(t, int64(56), result.Rules)
	return repo, cleanup
}

func TestKnowledgeRepository_Seed(t *testing.T) {
	repo, cleanup := seededRepository(t)
	defer cleanup()

	// Re-seeding inserts nothing
	result, err := repo.Seed(context.Background(), catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, result)
}

func TestKnowledgeRepository_Lookups(t *testing.T) {
	repo, cleanup := seededRepository(t)
	defer cleanup()
	ctx := context.Background()

	symptoms, err := repo.ListSymptoms(ctx)
	require.NoError(t, err)
	assert.Len(t, symptoms, 33)
	assert.Equal(t, "G01", symptoms[0].ID)

	symptom, err := repo.GetSymptom(ctx, "G07")
	require.NoError(t, err)
	assert.Equal(t, "G07", symptom.ID)

	_, err = repo.GetSymptom(ctx, "G99")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	diseases, err := repo.ListDiseases(ctx)
	require.NoError(t, err)
	require.Len(t, diseases, 8)

	expected, ok := catalog.Default().FindDisease("P4")
	require.True(t, ok)
	disease, err := repo.GetDisease(ctx, "P4")
	require.NoError(t, err)
	assert.Equal(t, expected, *disease)

	_, err = repo.GetDisease(ctx, "P0")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	rule, err := repo.GetRule(ctx, "R27")
	require.NoError(t, err)
	assert.Equal(t, "R27", rule.ID)

	_, err = repo.GetRule(ctx, "R999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestKnowledgeRepository_ListRules(t *testing.T) {
	repo, cleanup := seededRepository(t)
	defer cleanup()
	ctx := context.Background()

	all, err := repo.ListRules(ctx, domain.RuleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 56)

	byDisease, err := repo.ListRules(ctx, domain.RuleFilter{DiseaseID: "P4"})
	require.NoError(t, err)
	require.NotEmpty(t, byDisease)
	for _, r := range byDisease {
		assert.Equal(t, "P4", r.DiseaseID)
	}

	both, err := repo.ListRules(ctx, domain.RuleFilter{DiseaseID: "P4", SymptomID: "G07"})
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestKnowledgeRepository_CreateRule(t *testing.T) {
	repo, cleanup := seededRepository(t)
	defer cleanup()
	ctx := context.Background()

	rule := &domain.Rule{SymptomID: "G01", DiseaseID: "P4", MB: 0.4, MD: 0.1, Weight: 1}
	require.NoError(t, repo.CreateRule(ctx, rule))
	assert.Equal(t, "R57", rule.ID)

	stored, err := repo.GetRule(ctx, "R57")
	require.NoError(t, err)
	assert.Equal(t, *rule, *stored)

	err = repo.CreateRule(ctx, &domain.Rule{SymptomID: "G01", DiseaseID: "P4", MB: 0.5, Weight: 1})
	assert.True(t, errors.Is(err, domain.ErrDuplicateRule), "got %v", err)

	err = repo.CreateRule(ctx, &domain.Rule{ID: "R57", SymptomID: "G02", DiseaseID: "P8", MB: 0.5, Weight: 1})
	assert.True(t, errors.Is(err, domain.ErrDuplicateRule), "got %v", err)

	err = repo.CreateRule(ctx, &domain.Rule{SymptomID: "G99", DiseaseID: "P4", MB: 0.5, Weight: 1})
	assert.True(t, errors.Is(err, domain.ErrUnknownReference), "got %v", err)
}
