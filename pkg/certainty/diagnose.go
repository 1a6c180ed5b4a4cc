package certainty

import (
	"math"
	"sort"

	"github.com/sidirok-cf-server/internal/domain"
)

const (
	MinUserCertainty = 0.2
	MaxUserCertainty = 1.0
)

// Diagnose computes the aggregate certainty factor of every disease that has at
// least one rule matching a selected symptom.
//
// Selected symptom ids absent from symptoms are ignored. When a symptom is
// selected more than once the highest certainty wins. Evidences for a disease
// are folded in ascending rule id order (see CompareRuleIDs). Results follow
// the order of diseases and carry AdjustedCF equal to AggregateCF until
// AdjustDiagnosisWithRisk is applied.
func Diagnose(selected []domain.SelectedSymptom, diseases []domain.Disease, rules []domain.Rule, symptoms []domain.Symptom) []domain.DiagnosisResult {
	known := make(map[string]domain.Symptom, len(symptoms))
	for _, s := range symptoms {
		known[s.ID] = s
	}

	certainty := make(map[string]float64, len(selected))
	for _, sel := range selected {
		if _, ok := known[sel.SymptomID]; !ok {
			continue
		}
		if math.IsNaN(sel.Certainty) {
			continue
		}
		c := clamp(sel.Certainty, MinUserCertainty, MaxUserCertainty)
		if prev, ok := certainty[sel.SymptomID]; !ok || c > prev {
			certainty[sel.SymptomID] = c
		}
	}
	if len(certainty) == 0 {
		return []domain.DiagnosisResult{}
	}

	ordered := make([]domain.Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return CompareRuleIDs(ordered[i].ID, ordered[j].ID) < 0
	})

	evidences := make(map[string][]domain.Evidence)
	for _, rule := range ordered {
		c, ok := certainty[rule.SymptomID]
		if !ok {
			continue
		}
		ruleCF := RuleCF(rule)
		evidences[rule.DiseaseID] = append(evidences[rule.DiseaseID], domain.Evidence{
			RuleID:        rule.ID,
			SymptomID:     rule.SymptomID,
			SymptomName:   known[rule.SymptomID].Name,
			RuleCF:        ruleCF,
			UserCertainty: c,
			CF:            clamp(ruleCF*c, -1, 1),
		})
	}

	results := make([]domain.DiagnosisResult, 0, len(evidences))
	seen := make(map[string]bool, len(diseases))
	for _, disease := range diseases {
		evs, ok := evidences[disease.ID]
		if !ok || seen[disease.ID] {
			continue
		}
		seen[disease.ID] = true

		cfs := make([]float64, len(evs))
		for i, ev := range evs {
			cfs[i] = ev.CF
		}
		aggregate := CombineAll(cfs...)

		results = append(results, domain.DiagnosisResult{
			DiseaseID:   disease.ID,
			Disease:     disease,
			AggregateCF: aggregate,
			AdjustedCF:  aggregate,
			Percentage:  Percentage(aggregate),
			Evidences:   evs,
		})
	}
	return results
}

// Percentage converts an adjusted CF into a display percentage rounded to one
// decimal. Negative certainty shows as 0.
func Percentage(cf float64) float64 {
	return roundTo(math.Max(0, clamp(cf, -1, 1))*100, 1)
}
