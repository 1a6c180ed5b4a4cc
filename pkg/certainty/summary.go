package certainty

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sidirok-cf-server/internal/domain"
)

// Risk classification thresholds on the primary diagnosis' adjusted CF.
const (
	HighRiskThreshold     = 0.7
	ModerateRiskThreshold = 0.4
)

// DefaultMaxAlternatives caps the alternatives listed in a summary.
const DefaultMaxAlternatives = 5

// AdjustDiagnosisWithRisk blends each aggregate CF with the behavioural risk
// score and returns a ranked copy of results. Non-negative aggregates become
// aggregate + risk*(1-aggregate); negative aggregates are left as they are.
func AdjustDiagnosisWithRisk(results []domain.DiagnosisResult, riskScore float64) []domain.DiagnosisResult {
	risk := clamp(riskScore, 0, 1)

	adjusted := make([]domain.DiagnosisResult, len(results))
	for i, r := range results {
		cf := clamp(r.AggregateCF, -1, 1)
		if cf >= 0 {
			cf = clamp(cf+risk*(1-cf), -1, 1)
		}
		r.AdjustedCF = cf
		r.Percentage = Percentage(cf)
		adjusted[i] = r
	}
	return Rank(adjusted)
}

// Rank returns a copy of results ordered by adjusted CF (highest first), then
// severity (critical first), then disease id.
func Rank(results []domain.DiagnosisResult) []domain.DiagnosisResult {
	ranked := make([]domain.DiagnosisResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.AdjustedCF != b.AdjustedCF {
			return a.AdjustedCF > b.AdjustedCF
		}
		if ra, rb := a.Disease.Severity.Rank(), b.Disease.Severity.Rank(); ra != rb {
			return ra > rb
		}
		return a.DiseaseID < b.DiseaseID
	})
	return ranked
}

// ClassifyRisk maps the primary diagnosis' adjusted CF to a risk level.
func ClassifyRisk(cf float64) domain.RiskLevel {
	switch {
	case cf >= HighRiskThreshold:
		return domain.RiskLevelHigh
	case cf >= ModerateRiskThreshold:
		return domain.RiskLevelModerate
	default:
		return domain.RiskLevelLow
	}
}

// CreateDiagnosisSummary builds the summary of adjusted results using
// DefaultMaxAlternatives.
func CreateDiagnosisSummary(adjusted []domain.DiagnosisResult, profile domain.RiskProfile, riskScore float64) domain.DiagnosisSummary {
	return summarize(adjusted, profile, riskScore, DefaultMaxAlternatives)
}

func summarize(adjusted []domain.DiagnosisResult, profile domain.RiskProfile, riskScore float64, maxAlternatives int) domain.DiagnosisSummary {
	ranked := Rank(adjusted)
	risk := clamp(riskScore, 0, 1)

	summary := domain.DiagnosisSummary{
		Alternatives: []domain.DiagnosisResult{},
		RiskLevel:    domain.RiskLevelLow,
		RiskFactor:   risk,
		Profile:      profile,
		TotalMatched: len(ranked),
	}
	summary.RiskNarrative = riskNarrative(profile, risk)

	if len(ranked) == 0 {
		summary.Recommendations = recommendations(nil, summary.RiskLevel, risk)
		return summary
	}

	primary := ranked[0]
	summary.PrimaryDiagnosis = &primary
	summary.RiskLevel = ClassifyRisk(primary.AdjustedCF)

	rest := ranked[1:]
	if maxAlternatives >= 0 && len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	summary.Alternatives = append(summary.Alternatives, rest...)
	summary.Recommendations = recommendations(&primary, summary.RiskLevel, risk)

	return summary
}

func riskNarrative(profile domain.RiskProfile, risk float64) string {
	if risk == 0 {
		return "No behavioural risk factors were reported."
	}

	var parts []string
	if years, perDay := profile.SmokingYears.Int(), profile.CigarettesPerDay.Int(); years > 0 && perDay > 0 {
		parts = append(parts, fmt.Sprintf("%d years of smoking at %d cigarettes per day", years, perDay))
	}
	if age := profile.Age.Int(); age > 0 {
		parts = append(parts, fmt.Sprintf("age %d", age))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Behavioural risk factor of %.1f%% applied.", risk*100)
	}
	return fmt.Sprintf("Risk raised by %.1f%% from %s.", risk*100, strings.Join(parts, " and "))
}

func recommendations(primary *domain.DiagnosisResult, level domain.RiskLevel, risk float64) []string {
	var recs []string
	if primary == nil {
		recs = append(recs,
			"No matching disease was found for the selected symptoms.",
			"Consult a health professional if symptoms persist.",
		)
	} else {
		name := primary.Disease.Name
		switch level {
		case domain.RiskLevelHigh:
			recs = append(recs, fmt.Sprintf("Seek medical evaluation promptly for possible %s.", name))
		case domain.RiskLevelModerate:
			recs = append(recs, fmt.Sprintf("Schedule a medical check-up to discuss possible %s.", name))
		default:
			recs = append(recs, "Monitor your symptoms and consult a doctor if they persist or worsen.")
		}
		recs = append(recs, primary.Disease.Prevention...)
	}

	if risk > 0 {
		recs = append(recs, "Stopping smoking lowers the risk of every condition assessed.")
	}
	return dedupe(recs)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
