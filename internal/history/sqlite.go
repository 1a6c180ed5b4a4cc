package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sidirok-cf-server/internal/domain"
)

// SQLiteStore implements Store on a local SQLite file.
// Timestamps are stored as unix microseconds so range queries compare integers.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS diagnoses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_data TEXT NOT NULL,
		selected_symptoms TEXT NOT NULL,
		results TEXT NOT NULL,
		summary TEXT NOT NULL,
		primary_disease TEXT NOT NULL DEFAULT '',
		primary_percentage REAL NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_diagnoses_user_created ON diagnoses(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_diagnoses_created ON diagnoses(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

const sqliteColumns = `id, user_id, user_data, selected_symptoms, results, summary, primary_disease, primary_percentage, created_at`

func scanSQLiteRecord(sc scanner) (*domain.DiagnosisRecord, error) {
	var r row
	var createdAt int64
	if err := sc.Scan(&r.ID, &r.UserID, &r.UserData, &r.SelectedSymptoms, &r.Results, &r.Summary,
		&r.PrimaryDisease, &r.PrimaryPercentage, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = time.UnixMicro(createdAt)
	return decodeRecord(r)
}

// Save stores a diagnosis record.
func (s *SQLiteStore) Save(ctx context.Context, record *domain.DiagnosisRecord) error {
	prepareRecord(record)
	r, err := encodeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO diagnoses (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.UserID, r.UserData, r.SelectedSymptoms, r.Results, r.Summary,
		r.PrimaryDisease, r.PrimaryPercentage, r.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get retrieves one of a user's records.
func (s *SQLiteStore) Get(ctx context.Context, id, userID string) (*domain.DiagnosisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM diagnoses
		WHERE id = ? AND user_id = ?
	`, id, userID)

	record, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("diagnosis %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return record, nil
}

// ListByUser returns one page of a user's records, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string, page domain.Page) ([]domain.DiagnosisRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM diagnoses
		WHERE user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	return collectSQLite(rows)
}

func collectSQLite(rows *sql.Rows) ([]domain.DiagnosisRecord, error) {
	defer rows.Close()

	result := []domain.DiagnosisRecord{}
	for rows.Next() {
		record, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

// CountByUser returns the number of records a user has.
func (s *SQLiteStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM diagnoses WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count diagnoses: %w", err)
	}
	return count, nil
}

// Delete removes one of a user's records.
func (s *SQLiteStore) Delete(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM diagnoses WHERE id = ? AND user_id = ?", id, userID)
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
func (s *SQLiteStore) Statistics(ctx context.Context, from, to time.Time) (*domain.DiagnosisStatistics, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT created_at, primary_disease, primary_percentage
		FROM diagnoses
		WHERE created_at >= ? AND created_at < ?
	`, from.UnixMicro(), to.UnixMicro())
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	var entries []statEntry
	for rows.Next() {
		var e statEntry
		var createdAt int64
		if err := rows.Scan(&createdAt, &e.PrimaryDisease, &e.PrimaryPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.CreatedAt = time.UnixMicro(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buildStatistics(from, to, entries), nil
}

// ExportJSON exports every record, oldest first.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM diagnoses ORDER BY created_at, id`)
	if err != nil {
		return fmt.Errorf("failed to list diagnoses: %w", err)
	}
	all, err := collectSQLite(rows)
	if err != nil {
		return err
	}
	return writeExport(writer, all)
}

// ImportJSON imports records, skipping ids that already exist.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	export, err := readExport(reader)
	if err != nil {
		return 0, 0, err
	}

	for i := range export.Records {
		record := &export.Records[i]
		if record.ID != "" {
			var exists bool
			err := s.db.QueryRowContext(ctx,
				"SELECT EXISTS(SELECT 1 FROM diagnoses WHERE id = ?)", record.ID).Scan(&exists)
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
