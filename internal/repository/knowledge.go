package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/sidirok-cf-server/internal/catalog"
	"github.com/sidirok-cf-server/internal/domain"
)

// Postgres error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// KnowledgeRepository serves the knowledge base from Postgres.
// It implements domain.KnowledgeStore.
type KnowledgeRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewKnowledgeRepository creates a new knowledge repository
func NewKnowledgeRepository(db *pgxpool.Pool, logger *logrus.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:  db,
		log: logger,
	}
}

// ListSymptoms returns every symptom ordered by id
func (r *KnowledgeRepository) ListSymptoms(ctx context.Context) ([]domain.Symptom, error) {
	query := `
		SELECT id, code, name, description, category, mb, md
		FROM symptoms
		ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing symptoms: %w", err)
	}
	defer rows.Close()

	symptoms := []domain.Symptom{}
	for rows.Next() {
		var s domain.Symptom
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.Category, &s.MB, &s.MD); err != nil {
			return nil, fmt.Errorf("scanning symptom: %w", err)
		}
		symptoms = append(symptoms, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating symptoms: %w", err)
	}
	return symptoms, nil
}

// GetSymptom retrieves a symptom by its ID
func (r *KnowledgeRepository) GetSymptom(ctx context.Context, id string) (*domain.Symptom, error) {
	query := `
		SELECT id, code, name, description, category, mb, md
		FROM symptoms
		WHERE id = $1`

	var s domain.Symptom
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.Category, &s.MB, &s.MD)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("symptom %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting symptom: %w", err)
	}
	return &s, nil
}

// ListDiseases returns every disease ordered by id
func (r *KnowledgeRepository) ListDiseases(ctx context.Context) ([]domain.Disease, error) {
	query := `
		SELECT id, code, name, description, probability, severity, prevention, treatment, statistics
		FROM diseases
		ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing diseases: %w", err)
	}
	defer rows.Close()

	diseases := []domain.Disease{}
	for rows.Next() {
		d, err := scanDisease(rows)
		if err != nil {
			return nil, err
		}
		diseases = append(diseases, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating diseases: %w", err)
	}
	return diseases, nil
}

// GetDisease retrieves a disease by its ID
func (r *KnowledgeRepository) GetDisease(ctx context.Context, id string) (*domain.Disease, error) {
	query := `
		SELECT id, code, name, description, probability, severity, prevention, treatment, statistics
		FROM diseases
		WHERE id = $1`

	d, err := scanDisease(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("disease %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

// ListRules returns the rules matching filter ordered by id
func (r *KnowledgeRepository) ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.Rule, error) {
	query := `
		SELECT id, symptom_id, disease_id, mb, md, weight
		FROM rules
		WHERE ($1 = '' OR disease_id = $1)
		  AND ($2 = '' OR symptom_id = $2)
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, filter.DiseaseID, filter.SymptomID)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	rules := []domain.Rule{}
	for rows.Next() {
		var rule domain.Rule
		if err := rows.Scan(&rule.ID, &rule.SymptomID, &rule.DiseaseID, &rule.MB, &rule.MD, &rule.Weight); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}
	return rules, nil
}

// GetRule retrieves a rule by its ID
func (r *KnowledgeRepository) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	query := `
		SELECT id, symptom_id, disease_id, mb, md, weight
		FROM rules
		WHERE id = $1`

	var rule domain.Rule
	err := r.db.QueryRow(ctx, query, id).Scan(&rule.ID, &rule.SymptomID, &rule.DiseaseID, &rule.MB, &rule.MD, &rule.Weight)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("rule %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting rule: %w", err)
	}
	return &rule, nil
}

// CreateRule inserts a rule, assigning the next sequential id when none is given
func (r *KnowledgeRepository) CreateRule(ctx context.Context, rule *domain.Rule) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM rules WHERE symptom_id = $1 AND disease_id = $2)`,
			rule.SymptomID, rule.DiseaseID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking existing rule: %w", err)
		}
		if exists {
			return fmt.Errorf("%s -> %s: %w", rule.SymptomID, rule.DiseaseID, domain.ErrDuplicateRule)
		}

		if rule.ID == "" {
			id, err := nextRuleID(ctx, tx)
			if err != nil {
				return err
			}
			rule.ID = id
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO rules (id, symptom_id, disease_id, mb, md, weight)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			rule.ID, rule.SymptomID, rule.DiseaseID, rule.MB, rule.MD, rule.Weight,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return fmt.Errorf("rule %s: %w", rule.ID, domain.ErrDuplicateRule)
			case pgForeignKeyViolation:
				return fmt.Errorf("%s -> %s: %w", rule.SymptomID, rule.DiseaseID, domain.ErrUnknownReference)
			}
		}
		if errors.Is(err, domain.ErrDuplicateRule) {
			return err
		}
		r.log.WithFields(logrus.Fields{
			"symptom_id": rule.SymptomID,
			"disease_id": rule.DiseaseID,
			"error":      err,
		}).Error("Failed to create rule")
		return fmt.Errorf("creating rule: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"rule_id":    rule.ID,
		"symptom_id": rule.SymptomID,
		"disease_id": rule.DiseaseID,
	}).Info("Rule created successfully")
	return nil
}

func nextRuleID(ctx context.Context, tx pgx.Tx) (string, error) {
	rows, err := tx.Query(ctx, `SELECT id FROM rules WHERE id LIKE $1`, catalog.RuleIDPrefix+"%")
	if err != nil {
		return "", fmt.Errorf("reading rule ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Rule, error) {
		var rule domain.Rule
		err := row.Scan(&rule.ID)
		return rule, err
	})
	if err != nil {
		return "", fmt.Errorf("collecting rule ids: %w", err)
	}
	return catalog.NextRuleID(ids), nil
}

// SeedResult counts the rows inserted by Seed.
type SeedResult struct {
	Symptoms int64 `json:"symptoms"`
	Diseases int64 `json:"diseases"`
	Rules    int64 `json:"rules"`
}

// Seed inserts kb in one transaction. Existing rows are left untouched.
func (r *KnowledgeRepository) Seed(ctx context.Context, kb *domain.KnowledgeBase) (SeedResult, error) {
	var result SeedResult

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, s := range kb.Symptoms {
			tag, err := tx.Exec(ctx, `
				INSERT INTO symptoms (id, code, name, description, category, mb, md)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO NOTHING`,
				s.ID, s.Code, s.Name, s.Description, s.Category, s.MB, s.MD)
			if err != nil {
				return fmt.Errorf("seeding symptom %s: %w", s.ID, err)
			}
			result.Symptoms += tag.RowsAffected()
		}

		for _, d := range kb.Diseases {
			prevention, treatment, statistics, err := marshalDiseaseJSON(d)
			if err != nil {
				return err
			}
			tag, err := tx.Exec(ctx, `
				INSERT INTO diseases (id, code, name, description, probability, severity, prevention, treatment, statistics)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (id) DO NOTHING`,
				d.ID, d.Code, d.Name, d.Description, d.Probability, string(d.Severity), prevention, treatment, statistics)
			if err != nil {
				return fmt.Errorf("seeding disease %s: %w", d.ID, err)
			}
			result.Diseases += tag.RowsAffected()
		}

		for _, rule := range kb.Rules {
			tag, err := tx.Exec(ctx, `
				INSERT INTO rules (id, symptom_id, disease_id, mb, md, weight)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT DO NOTHING`,
				rule.ID, rule.SymptomID, rule.DiseaseID, rule.MB, rule.MD, rule.Weight)
			if err != nil {
				return fmt.Errorf("seeding rule %s: %w", rule.ID, err)
			}
			result.Rules += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	r.log.WithFields(logrus.Fields{
		"symptoms": result.Symptoms,
		"diseases": result.Diseases,
		"rules":    result.Rules,
	}).Info("Knowledge base seeded")
	return result, nil
}

func marshalDiseaseJSON(d domain.Disease) (prevention, treatment, statistics []byte, err error) {
	if d.Prevention == nil {
		d.Prevention = []string{}
	}
	if d.Treatment == nil {
		d.Treatment = []string{}
	}
	if d.Statistics == nil {
		d.Statistics = map[string]string{}
	}
	if prevention, err = json.Marshal(d.Prevention); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling prevention: %w", err)
	}
	if treatment, err = json.Marshal(d.Treatment); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling treatment: %w", err)
	}
	if statistics, err = json.Marshal(d.Statistics); err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling statistics: %w", err)
	}
	return prevention, treatment, statistics, nil
}

func scanDisease(row pgx.Row) (*domain.Disease, error) {
	var d domain.Disease
	var severity string
	var prevention, treatment, statistics []byte

	if err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Description, &d.Probability, &severity,
		&prevention, &treatment, &statistics); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning disease: %w", err)
	}

	d.Severity = domain.Severity(severity)
	if err := json.Unmarshal(prevention, &d.Prevention); err != nil {
		return nil, fmt.Errorf("unmarshaling prevention: %w", err)
	}
	if err := json.Unmarshal(treatment, &d.Treatment); err != nil {
		return nil, fmt.Errorf("unmarshaling treatment: %w", err)
	}
	if err := json.Unmarshal(statistics, &d.Statistics); err != nil {
		return nil, fmt.Errorf("unmarshaling statistics: %w", err)
	}
	return &d, nil
}
