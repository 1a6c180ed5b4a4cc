package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/sidirok-cf-server/internal/domain"
)

// PostgresStore implements Store using the diagnoses table.
// It expects the schema to already exist (created via migrations).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection and verifies it.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL opens a connection pool for databaseURL.
func NewPostgresStoreFromURL(databaseURL string, cfg domain.DatabaseConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

const pgColumns = `id, user_id, user_data, selected_symptoms, results, summary, primary_disease, primary_percentage, created_at`

func scanPostgresRecord(sc scanner) (*domain.DiagnosisRecord, error) {
	var r row
	var userData, selected, results, summary []byte
	if err := sc.Scan(&r.ID, &r.UserID, &userData, &selected, &results, &summary,
		&r.PrimaryDisease, &r.PrimaryPercentage, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.UserData = string(userData)
	r.SelectedSymptoms = string(selected)
	r.Results = string(results)
	r.Summary = string(summary)
	return decodeRecord(r)
}

// Save stores a diagnosis record.
func (s *PostgresStore) Save(ctx context.Context, record *domain.DiagnosisRecord) error {
	prepareRecord(record)
	r, err := encodeRecord(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO diagnoses (` + pgColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.UserID, r.UserData, r.SelectedSymptoms, r.Results, r.Summary,
		r.PrimaryDisease, r.PrimaryPercentage, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save diagnosis: %w", err)
	}
	return nil
}

// Get retrieves one of a user's records.
func (s *PostgresStore) Get(ctx context.Context, id, userID string) (*domain.DiagnosisRecord, error) {
	// Non-uuid ids can never match and would fail the cast.
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("diagnosis %s: %w", id, domain.ErrNotFound)
	}

	query := `
		SELECT ` + pgColumns + `
		FROM diagnoses
		WHERE id = $1 AND user_id = $2
	`
	record, err := scanPostgresRecord(s.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("diagnosis %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}
	return record, nil
}

// ListByUser returns one page of a user's records, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string, page domain.Page) ([]domain.DiagnosisRecord, error) {
	query := `
		SELECT ` + pgColumns + `
		FROM diagnoses
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	return collectPostgres(rows)
}

func collectPostgres(rows *sql.Rows) ([]domain.DiagnosisRecord, error) {
	defer rows.Close()

	result := []domain.DiagnosisRecord{}
	for rows.Next() {
		record, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

// CountByUser returns the number of records a user has.
func (s *PostgresStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM diagnoses WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count diagnoses: %w", err)
	}
	return count, nil
}

// Delete removes one of a user's records.
func (s *PostgresStore) Delete(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("diagnosis %s: %w", id, domain.ErrNotFound)
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM diagnoses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete diagnosis: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("diagnosis %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Statistics aggregates records created in [from, to).
func (s *PostgresStore) Statistics(ctx context.Context, from, to time.Time) (*domain.DiagnosisStatistics, error) {
	query := `
		SELECT created_at, primary_disease, primary_percentage
		FROM diagnoses
		WHERE created_at >= $1 AND created_at < $2
	`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	var entries []statEntry
	for rows.Next() {
		var e statEntry
		if err := rows.Scan(&e.CreatedAt, &e.PrimaryDisease, &e.PrimaryPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildStatistics(from, to, entries), nil
}

// ExportJSON exports every record, oldest first.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pgColumns+` FROM diagnoses ORDER BY created_at, id`)
	if err != nil {
		return fmt.Errorf("failed to list diagnoses: %w", err)
	}
	all, err := collectPostgres(rows)
	if err != nil {
		return err
	}
	return writeExport(writer, all)
}

// ImportJSON imports records, skipping ids that already exist.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	export, err := readExport(reader)
	if err != nil {
		return 0, 0, err
	}

	for i := range export.Records {
		record := &export.Records[i]
		if _, err := uuid.Parse(record.ID); err != nil {
			record.ID = ""
		}
		if record.ID != "" {
			var exists bool
			err := s.db.QueryRowContext(ctx,
				"SELECT EXISTS(SELECT 1 FROM diagnoses WHERE id = $1)", record.ID).Scan(&exists)
			if err != nil {
				return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
			}
			if exists {
				skipped++
				continue
			}
		}

		if err := s.Save(ctx, record); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
