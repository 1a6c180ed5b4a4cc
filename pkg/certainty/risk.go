package certainty

import (
	"math"

	"github.com/sidirok-cf-server/internal/domain"
)

// RiskParams are the constants of the behavioural risk score:
//
//	exposure  = smokingYears * cigarettesPerDay
//	intensity = 1 - exp(-exposure / IntensityScale)
//	age       = clamp((age - AgeOnset) / (AgeSaturation - AgeOnset), 0, 1)
//	risk      = clamp(IntensityWeight*intensity + AgeWeight*age, 0, 1)
type RiskParams struct {
	IntensityScale  float64 `json:"intensity_scale"`
	IntensityWeight float64 `json:"intensity_weight"`
	AgeWeight       float64 `json:"age_weight"`
	AgeOnset        float64 `json:"age_onset"`
	AgeSaturation   float64 `json:"age_saturation"`
}

// DefaultRiskParams returns the shipped calibration. With these values a
// 20 pack-year smoker (20 years at 20 a day) scores about 0.26.
func DefaultRiskParams() RiskParams {
	return RiskParams{
		IntensityScale:  200,
		IntensityWeight: 0.3,
		AgeWeight:       0.1,
		AgeOnset:        30,
		AgeSaturation:   70,
	}
}

// RiskParamsFromConfig overlays configured values on the defaults.
// Non-positive or inconsistent values keep their default.
func RiskParamsFromConfig(cfg domain.RiskConfig) RiskParams {
	p := DefaultRiskParams()
	if cfg.IntensityScale > 0 {
		p.IntensityScale = cfg.IntensityScale
	}
	if cfg.IntensityWeight > 0 {
		p.IntensityWeight = cfg.IntensityWeight
	}
	if cfg.AgeWeight > 0 {
		p.AgeWeight = cfg.AgeWeight
	}
	if cfg.AgeOnset > 0 && cfg.AgeSaturation > cfg.AgeOnset {
		p.AgeOnset = cfg.AgeOnset
		p.AgeSaturation = cfg.AgeSaturation
	}
	return p
}

// Score returns the risk factor of profile in [0, 1].
func (p RiskParams) Score(profile domain.RiskProfile) float64 {
	years := float64(profile.SmokingYears.Int())
	perDay := float64(profile.CigarettesPerDay.Int())
	age := float64(profile.Age.Int())

	var intensity float64
	if exposure := years * perDay; exposure > 0 && p.IntensityScale > 0 {
		intensity = 1 - math.Exp(-exposure/p.IntensityScale)
	}

	var ageScore float64
	if span := p.AgeSaturation - p.AgeOnset; age > p.AgeOnset && span > 0 {
		ageScore = math.Min(1, (age-p.AgeOnset)/span)
	}

	return clamp(p.IntensityWeight*intensity+p.AgeWeight*ageScore, 0, 1)
}

// A risk score is graded against the highest score the calibration can
// produce, IntensityWeight+AgeWeight.
const (
	RiskScoreHighFraction     = 0.7
	RiskScoreModerateFraction = 0.4
)

// Max returns the highest score the calibration can produce.
func (p RiskParams) Max() float64 {
	return clamp(p.IntensityWeight+p.AgeWeight, 0, 1)
}

// Level grades a behavioural risk score. It is not comparable with
// ClassifyRisk, which grades diagnosis certainty.
func (p RiskParams) Level(score float64) domain.RiskLevel {
	top := p.Max()
	if top <= 0 || score <= 0 {
		return domain.RiskLevelLow
	}
	switch fraction := score / top; {
	case fraction >= RiskScoreHighFraction:
		return domain.RiskLevelHigh
	case fraction >= RiskScoreModerateFraction:
		return domain.RiskLevelModerate
	default:
		return domain.RiskLevelLow
	}
}

// CalculateRiskFactor scores profile with DefaultRiskParams.
func CalculateRiskFactor(profile domain.RiskProfile) float64 {
	return DefaultRiskParams().Score(profile)
}
