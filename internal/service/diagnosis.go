package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/history"
	"github.com/sidirok-cf-server/internal/logging"
	"github.com/sidirok-cf-server/internal/metrics"
	"github.com/sidirok-cf-server/pkg/certainty"
)

// DefaultStatisticsWindow applies when a statistics request has no start date.
const DefaultStatisticsWindow = 30 * 24 * time.Hour

// DiagnosisService runs diagnoses and manages their history.
type DiagnosisService struct {
	knowledge *KnowledgeService
	engine    *certainty.Engine
	history   history.Store
	metrics   *metrics.Metrics
	log       *logrus.Logger
	now       func() time.Time
}

// NewDiagnosisService creates a diagnosis service. store and m may be nil:
// without a store diagnoses are not persisted and history calls fail with
// domain.ErrHistoryDisabled.
func NewDiagnosisService(
	knowledge *KnowledgeService,
	engine *certainty.Engine,
	store history.Store,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *DiagnosisService {
	return &DiagnosisService{
		knowledge: knowledge,
		engine:    engine,
		history:   store,
		metrics:   m,
		log:       logger,
		now:       time.Now,
	}
}

// Engine returns the inference engine.
func (s *DiagnosisService) Engine() *certainty.Engine {
	return s.engine
}

// Diagnose validates req, runs the engine against the current knowledge base
// and, when userID is set and history is configured, persists the result.
func (s *DiagnosisService) Diagnose(ctx context.Context, req *domain.DiagnosisRequest, userID string) (*domain.DiagnosisOutcome, error) {
	start := s.now()

	if err := domain.ValidateDiagnosisRequest(req); err != nil {
		s.record(metrics.OutcomeInvalid, 0)
		return nil, err
	}

	kb, err := s.knowledge.Snapshot(ctx)
	if err != nil {
		s.record(metrics.OutcomeError, 0)
		return nil, err
	}

	assessment := s.engine.Assess(kb, req.SelectedSymptoms, req.UserData)

	outcome := &domain.DiagnosisOutcome{
		Results:    assessment.Results,
		Summary:    assessment.Summary,
		RiskFactor: assessment.RiskFactor,
		CreatedAt:  s.now().UTC(),
	}

	if userID != "" && s.history != nil {
		record := &domain.DiagnosisRecord{
			UserID:           userID,
			Profile:          req.UserData,
			SelectedSymptoms: req.SelectedSymptoms,
			Results:          assessment.Results,
			Summary:          assessment.Summary,
			CreatedAt:        outcome.CreatedAt,
		}
		if err := s.history.Save(ctx, record); err != nil {
			s.record(metrics.OutcomeError, 0)
			s.log.WithError(err).WithField("user", logging.HashIdentifier(userID)).Error("Failed to save diagnosis")
			return nil, err
		}
		outcome.ID = record.ID
		outcome.CreatedAt = record.CreatedAt
	}

	elapsed := s.now().Sub(start)
	outcome.ProcessingTimeMs = elapsed.Milliseconds()

	if len(outcome.Results) == 0 {
		s.record(metrics.OutcomeNoMatch, elapsed)
	} else {
		s.record(metrics.OutcomeSuccess, elapsed)
		if s.metrics != nil {
			s.metrics.RecordRiskLevel(string(outcome.Summary.RiskLevel))
		}
	}

	fields := logrus.Fields{
		"symptoms":      len(req.SelectedSymptoms),
		"matched":       len(outcome.Results),
		"risk_factor":   outcome.RiskFactor,
		"processing_ms": outcome.ProcessingTimeMs,
	}
	if p := outcome.Summary.PrimaryDiagnosis; p != nil {
		fields["primary"] = p.DiseaseID
		fields["percentage"] = p.Percentage
	}
	if userID != "" {
		fields["user"] = logging.HashIdentifier(userID)
	}
	s.log.WithFields(fields).Info("Diagnosis completed")

	return outcome, nil
}

// RiskFactor scores a profile with the engine's calibration and grades the
// score against that calibration's range.
func (s *DiagnosisService) RiskFactor(profile domain.RiskProfile) (float64, domain.RiskLevel) {
	risk := s.engine.RiskFactor(profile)
	return risk, s.engine.RiskLevel(risk)
}

func (s *DiagnosisService) record(outcome string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordDiagnosis(outcome, elapsed)
	}
}

// History returns one page of a user's diagnoses, newest first.
func (s *DiagnosisService) History(ctx context.Context, userID string, page domain.Page) (*domain.PagedResult[domain.DiagnosisRecord], error) {
	if s.history == nil {
		return nil, domain.ErrHistoryDisabled
	}

	total, err := s.history.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := s.history.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, err
	}

	return &domain.PagedResult[domain.DiagnosisRecord]{
		Data:       records,
		Pagination: page.Paginate(total),
	}, nil
}

// HistoryEntry returns one of a user's diagnoses.
func (s *DiagnosisService) HistoryEntry(ctx context.Context, id, userID string) (*domain.DiagnosisRecord, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return s.history.Get(ctx, id, userID)
}

// DeleteHistoryEntry removes one of a user's diagnoses.
func (s *DiagnosisService) DeleteHistoryEntry(ctx context.Context, id, userID string) error {
	if s.history == nil {
		return domain.ErrHistoryDisabled
	}
	if err := s.history.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"diagnosis_id": id,
		"user":         logging.HashIdentifier(userID),
	}).Info("Diagnosis deleted")
	return nil
}

// Statistics aggregates diagnoses in [from, to). A zero to means now; a zero
// from means DefaultStatisticsWindow before to.
func (s *DiagnosisService) Statistics(ctx context.Context, from, to time.Time) (*domain.DiagnosisStatistics, error) {
	if s.history == nil {
		return nil, domain.ErrHistoryDisabled
	}
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultStatisticsWindow)
	}
	if !from.Before(to) {
		return nil, domain.NewValidationError("start_date", "must be before end_date", from.Format(time.RFC3339))
	}

	stats, err := s.history.Statistics(ctx, from.UTC(), to.UTC())
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.WithError(err).Error("Failed to compute diagnosis statistics")
		}
		return nil, err
	}
	return stats, nil
}
