package certainty

import (
	"github.com/sidirok-cf-server/internal/domain"
)

// Engine runs the full pipeline with a fixed calibration.
type Engine struct {
	risk            RiskParams
	maxAlternatives int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRiskParams sets the risk score calibration.
func WithRiskParams(p RiskParams) Option {
	return func(e *Engine) {
		e.risk = p
	}
}

// WithMaxAlternatives caps the number of alternatives in a summary.
// Negative values are ignored.
func WithMaxAlternatives(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxAlternatives = n
		}
	}
}

// NewEngine returns an engine with default calibration adjusted by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		risk:            DefaultRiskParams(),
		maxAlternatives: DefaultMaxAlternatives,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assessment is the combined output of one pipeline run.
type Assessment struct {
	Results    []domain.DiagnosisResult `json:"results"`
	Summary    domain.DiagnosisSummary  `json:"summary"`
	RiskFactor float64                  `json:"risk_factor"`
}

// RiskParams returns the engine's risk calibration.
func (e *Engine) RiskParams() RiskParams {
	return e.risk
}

// RiskFactor scores profile with the engine's calibration.
func (e *Engine) RiskFactor(profile domain.RiskProfile) float64 {
	return e.risk.Score(profile)
}

// RiskLevel grades a score produced by RiskFactor.
func (e *Engine) RiskLevel(score float64) domain.RiskLevel {
	return e.risk.Level(score)
}

// Summarize builds a summary honoring the engine's alternatives cap.
func (e *Engine) Summarize(adjusted []domain.DiagnosisResult, profile domain.RiskProfile, riskScore float64) domain.DiagnosisSummary {
	return summarize(adjusted, profile, riskScore, e.maxAlternatives)
}

// Assess runs diagnose, risk scoring, adjustment and summarization against kb.
func (e *Engine) Assess(kb *domain.KnowledgeBase, selected []domain.SelectedSymptom, profile domain.RiskProfile) Assessment {
	// Step 1: aggregate evidence per disease
	raw := Diagnose(selected, kb.Diseases, kb.Rules, kb.Symptoms)

	// Step 2: behavioural risk runs independently of the evidence
	risk := e.RiskFactor(profile)

	// Step 3: blend and rank
	adjusted := AdjustDiagnosisWithRisk(raw, risk)

	// Step 4: summarize
	summary := e.Summarize(adjusted, profile, risk)

	return Assessment{
		Results:    adjusted,
		Summary:    summary,
		RiskFactor: risk,
	}
}
