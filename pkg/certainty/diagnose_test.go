package certainty

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidirok-cf-server/internal/catalog"
	"github.com/sidirok-cf-server/internal/domain"
)

func TestDiagnoseSingleRule(t *testing.T) {
	kb := catalog.Default()
	selected := []domain.SelectedSymptom{{SymptomID: "G07", Certainty: 1.0}}

	results := Diagnose(selected, kb.Diseases, kb.Rules, kb.Symptoms)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "P4", r.DiseaseID)
	assert.InDelta(t, 0.97, r.AggregateCF, 1e-9)
	require.Len(t, r.Evidences, 1)
	assert.Equal(t, "R27", r.Evidences[0].RuleID)
	assert.Equal(t, 1.0, r.Evidences[0].UserCertainty)

	adjusted := AdjustDiagnosisWithRisk(results, 0)
	require.Len(t, adjusted, 1)
	assert.InDelta(t, 0.97, adjusted[0].AdjustedCF, 1e-9)
	assert.Equal(t, 97.0, adjusted[0].Percentage)

	summary := CreateDiagnosisSummary(adjusted, domain.RiskProfile{}, 0)
	require.NotNil(t, summary.PrimaryDiagnosis)
	assert.Equal(t, "P4", summary.PrimaryDiagnosis.DiseaseID)
	assert.Equal(t, domain.RiskLevelHigh, summary.RiskLevel)
	assert.Empty(t, summary.Alternatives)
}

func TestDiagnoseTwoEvidences(t *testing.T) {
	diseases := []domain.Disease{{ID: "D1", Severity: domain.SeverityHigh}}
	symptoms := []domain.Symptom{{ID: "S1"}, {ID: "S2"}}
	rules := []domain.Rule{
		{ID: "R2", SymptomID: "S2", DiseaseID: "D1", MB: 0.3, MD: 0, Weight: 1},
		{ID: "R1", SymptomID: "S1", DiseaseID: "D1", MB: 0.5, MD: 0, Weight: 1},
	}
	selected := []domain.SelectedSymptom{
		{SymptomID: "S1", Certainty: 1},
		{SymptomID: "S2", Certainty: 1},
	}

	results := Diagnose(selected, diseases, rules, symptoms)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.65, results[0].AggregateCF, 1e-9)

	// evidences follow ascending rule id regardless of input order
	require.Len(t, results[0].Evidences, 2)
	assert.Equal(t, "R1", results[0].Evidences[0].RuleID)
	assert.Equal(t, "R2", results[0].Evidences[1].RuleID)
}

func TestDiagnoseSymptomWithoutRule(t *testing.T) {
	kb := catalog.Default()
	kb.Symptoms = append(kb.Symptoms, domain.Symptom{ID: "G99", Name: "Orphan"})

	results := Diagnose([]domain.SelectedSymptom{{SymptomID: "G99", Certainty: 1}}, kb.Diseases, kb.Rules, kb.Symptoms)
	assert.Empty(t, results)

	summary := CreateDiagnosisSummary(AdjustDiagnosisWithRisk(results, 0.3), domain.RiskProfile{}, 0.3)
	assert.Nil(t, summary.PrimaryDiagnosis)
	assert.Empty(t, summary.Alternatives)
	assert.Equal(t, domain.RiskLevelLow, summary.RiskLevel)
	assert.NotEmpty(t, summary.Recommendations)
}

func TestDiagnoseIgnoresUnknownSymptoms(t *testing.T) {
	kb := catalog.Default()

	withUnknown := Diagnose([]domain.SelectedSymptom{
		{SymptomID: "G07", Certainty: 1},
		{SymptomID: "NOPE", Certainty: 1},
	}, kb.Diseases, kb.Rules, kb.Symptoms)
	without := Diagnose([]domain.SelectedSymptom{{SymptomID: "G07", Certainty: 1}}, kb.Diseases, kb.Rules, kb.Symptoms)

	assert.Equal(t, without, withUnknown)

	none := Diagnose([]domain.SelectedSymptom{{SymptomID: "NOPE", Certainty: 1}}, kb.Diseases, kb.Rules, kb.Symptoms)
	assert.Empty(t, none)
}

func TestDiagnoseOnlyMatchedDiseases(t *testing.T) {
	kb := catalog.Default()
	selected := []domain.SelectedSymptom{
		{SymptomID: "G01", Certainty: 0.8},
		{SymptomID: "G29", Certainty: 0.6},
	}

	results := Diagnose(selected, kb.Diseases, kb.Rules, kb.Symptoms)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.DiseaseID)
		assert.NotEmpty(t, r.Evidences)
	}
	// G01 feeds P1, P5 and P7; G29 feeds P8
	assert.ElementsMatch(t, []string{"P1", "P5", "P7", "P8"}, ids)
}

func TestDiagnoseCertaintyHandling(t *testing.T) {
	kb := catalog.Default()

	t.Run("duplicate symptom keeps highest certainty", func(t *testing.T) {
		results := Diagnose([]domain.SelectedSymptom{
			{SymptomID: "G07", Certainty: 0.4},
			{SymptomID: "G07", Certainty: 0.9},
		}, kb.Diseases, kb.Rules, kb.Symptoms)
		require.Len(t, results, 1)
		assert.Equal(t, 0.9, results[0].Evidences[0].UserCertainty)
	})

	t.Run("certainty is clamped", func(t *testing.T) {
		results := Diagnose([]domain.SelectedSymptom{{SymptomID: "G07", Certainty: 0.05}}, kb.Diseases, kb.Rules, kb.Symptoms)
		require.Len(t, results, 1)
		assert.Equal(t, MinUserCertainty, results[0].Evidences[0].UserCertainty)
		assert.InDelta(t, 0.97*0.2, results[0].AggregateCF, 1e-9)
	})
}

func TestDiagnoseDoesNotMutateInputs(t *testing.T) {
	kb := catalog.Default()
	before := catalog.Default()
	before.LoadedAt = kb.LoadedAt

	Diagnose([]domain.SelectedSymptom{{SymptomID: "G03", Certainty: 0.7}}, kb.Diseases, kb.Rules, kb.Symptoms)

	assert.Equal(t, before, kb)
}

func TestDiagnoseRuleOrderIndependent(t *testing.T) {
	kb := catalog.Default()
	selected := []domain.SelectedSymptom{
		{SymptomID: "G01", Certainty: 0.8},
		{SymptomID: "G03", Certainty: 0.6},
		{SymptomID: "G12", Certainty: 1},
	}

	expected := Diagnose(selected, kb.Diseases, kb.Rules, kb.Symptoms)

	shuffled := append([]domain.Rule(nil), kb.Rules...)
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	assert.Equal(t, expected, Diagnose(selected, kb.Diseases, shuffled, kb.Symptoms))
}

func TestAssessIsDeterministic(t *testing.T) {
	kb := catalog.Default()
	engine := NewEngine()
	selected := []domain.SelectedSymptom{
		{SymptomID: "G01", Certainty: 0.8},
		{SymptomID: "G03", Certainty: 0.6},
		{SymptomID: "G06", Certainty: 0.4},
		{SymptomID: "G16", Certainty: 1},
	}
	profile := domain.RiskProfile{Age: 52, SmokingYears: 25, CigarettesPerDay: 16}

	first, err := json.Marshal(engine.Assess(kb, selected, profile))
	require.NoError(t, err)
	second, err := json.Marshal(engine.Assess(kb, selected, profile))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
