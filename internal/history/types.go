// Package history persists completed diagnoses per user.
// Server mode stores them in Postgres, the standalone tool server in SQLite.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/sidirok-cf-server/internal/domain"
)

// ExportVersion is written into every export document.
const ExportVersion = "1.0"

// Store defines the interface for diagnosis history storage.
type Store interface {
	// Save persists a record. A missing ID or CreatedAt is filled in.
	Save(ctx context.Context, record *domain.DiagnosisRecord) error

	// Get returns the record with id owned by userID, or domain.ErrNotFound.
	Get(ctx context.Context, id, userID string) (*domain.DiagnosisRecord, error)

	// ListByUser returns one page of a user's records, newest first.
	ListByUser(ctx context.Context, userID string, page domain.Page) ([]domain.DiagnosisRecord, error)

	// CountByUser returns how many records a user has.
	CountByUser(ctx context.Context, userID string) (int64, error)

	// Delete removes a user's record, or returns domain.ErrNotFound.
	Delete(ctx context.Context, id, userID string) error

	// Statistics aggregates every record created in [from, to).
	Statistics(ctx context.Context, from, to time.Time) (*domain.DiagnosisStatistics, error)

	// ExportJSON writes all records as an Export document.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON reads an Export document. Records whose id already exists are skipped.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string                   `json:"version"`
	ExportedAt time.Time                `json:"exported_at"`
	Count      int                      `json:"count"`
	Records    []domain.DiagnosisRecord `json:"records"`
}

// row is a record flattened into column values.
type row struct {
	ID                string
	UserID            string
	UserData          string
	SelectedSymptoms  string
	Results           string
	Summary           string
	PrimaryDisease    string
	PrimaryPercentage float64
	CreatedAt         time.Time
}

func prepareRecord(record *domain.DiagnosisRecord) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Microsecond)
}

func encodeRecord(record *domain.DiagnosisRecord) (row, error) {
	r := row{
		ID:             record.ID,
		UserID:         record.UserID,
		PrimaryDisease: record.PrimaryDiseaseName(),
		CreatedAt:      record.CreatedAt,
	}
	if p := record.Summary.PrimaryDiagnosis; p != nil {
		r.PrimaryPercentage = p.Percentage
	}

	fields := []struct {
		dst *string
		src interface{}
	}{
		{&r.UserData, record.Profile},
		{&r.SelectedSymptoms, nonNil(record.SelectedSymptoms)},
		{&r.Results, nonNil(record.Results)},
		{&r.Summary, record.Summary},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.src)
		if err != nil {
			return row{}, fmt.Errorf("failed to encode record %s: %w", record.ID, err)
		}
		*f.dst = string(data)
	}
	return r, nil
}

func decodeRecord(r row) (*domain.DiagnosisRecord, error) {
	record := &domain.DiagnosisRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt.UTC(),
	}
	fields := []struct {
		src string
		dst interface{}
	}{
		{r.UserData, &record.Profile},
		{r.SelectedSymptoms, &record.SelectedSymptoms},
		{r.Results, &record.Results},
		{r.Summary, &record.Summary},
	}
	for _, f := range fields {
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", r.ID, err)
		}
	}
	return record, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeExport(writer io.Writer, records []domain.DiagnosisRecord) error {
	export := &Export{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Count:      len(records),
		Records:    nonNil(records),
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

func readExport(reader io.Reader) (*Export, error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return &export, nil
}
