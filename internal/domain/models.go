package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Count is a non-negative integer read leniently from JSON. Numbers and numeric
// strings are accepted; anything else, including negative values, decodes to 0.
type Count int

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil
	}
	if v > math.MaxInt32 {
		v = math.MaxInt32
	}
	*c = Count(v)
	return nil
}

// Int returns the count as an int, never negative.
func (c Count) Int() int {
	if c < 0 {
		return 0
	}
	return int(c)
}

// RiskProfile carries the behavioural inputs of the risk factor calculation.
type RiskProfile struct {
	Name             string `json:"name,omitempty"`
	Age              Count  `json:"age"`
	SmokingYears     Count  `json:"smoking_years"`
	CigarettesPerDay Count  `json:"cigarettes_per_day"`
}

// SelectedSymptom is a symptom the user reports together with how sure they are.
type SelectedSymptom struct {
	SymptomID string  `json:"symptom_id" validate:"required"`
	Certainty float64 `json:"certainty" validate:"gte=0.2,lte=1"`
}

// Evidence is the contribution of one matched rule to a disease's certainty.
type Evidence struct {
	RuleID        string  `json:"rule_id"`
	SymptomID     string  `json:"symptom_id"`
	SymptomName   string  `json:"symptom_name,omitempty"`
	RuleCF        float64 `json:"rule_cf"`
	UserCertainty float64 `json:"user_certainty"`
	CF            float64 `json:"cf"`
}

// DiagnosisResult is the inferred certainty for one disease.
// Before risk adjustment AdjustedCF equals AggregateCF.
type DiagnosisResult struct {
	DiseaseID   string     `json:"disease_id"`
	Disease     Disease    `json:"disease"`
	AggregateCF float64    `json:"aggregate_cf"`
	AdjustedCF  float64    `json:"adjusted_cf"`
	Percentage  float64    `json:"percentage"`
	Evidences   []Evidence `json:"evidences"`
}

// DiagnosisSummary condenses a ranked result list for presentation.
type DiagnosisSummary struct {
	PrimaryDiagnosis *DiagnosisResult  `json:"primary_diagnosis"`
	Alternatives     []DiagnosisResult `json:"alternatives"`
	RiskLevel        RiskLevel         `json:"risk_level"`
	RiskFactor       float64           `json:"risk_factor"`
	RiskNarrative    string            `json:"risk_narrative"`
	Profile          RiskProfile       `json:"profile"`
	Recommendations  []string          `json:"recommendations"`
	TotalMatched     int               `json:"total_matched"`
}

// DiagnosisRequest is the inbound payload for one diagnosis.
type DiagnosisRequest struct {
	UserData         RiskProfile       `json:"user_data"`
	SelectedSymptoms []SelectedSymptom `json:"selected_symptoms" validate:"required,min=1,dive"`
}

// DiagnosisOutcome is what a diagnosis returns to the caller.
// ID is empty when the diagnosis was not persisted.
type DiagnosisOutcome struct {
	ID               string            `json:"id,omitempty"`
	Results          []DiagnosisResult `json:"results"`
	Summary          DiagnosisSummary  `json:"summary"`
	RiskFactor       float64           `json:"risk_factor"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	CreatedAt        time.Time         `json:"created_at"`
}

// DiagnosisRecord is a persisted diagnosis belonging to one user.
type DiagnosisRecord struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	Profile          RiskProfile       `json:"profile"`
	SelectedSymptoms []SelectedSymptom `json:"selected_symptoms"`
	Results          []DiagnosisResult `json:"results"`
	Summary          DiagnosisSummary  `json:"summary"`
	CreatedAt        time.Time         `json:"created_at"`
}

// PrimaryDiseaseName returns the name of the record's primary diagnosis, or "".
func (r *DiagnosisRecord) PrimaryDiseaseName() string {
	if r.Summary.PrimaryDiagnosis == nil {
		return ""
	}
	return r.Summary.PrimaryDiagnosis.Disease.Name
}

// DailyCount is the number of diagnoses made on one calendar day (UTC).
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DiseaseShare is how often a disease came out as the primary diagnosis.
type DiseaseShare struct {
	Disease    string  `json:"disease"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DiagnosisStatistics aggregates history over a time window.
type DiagnosisStatistics struct {
	From                    time.Time      `json:"from"`
	To                      time.Time      `json:"to"`
	Total                   int64          `json:"total"`
	Daily                   []DailyCount   `json:"daily"`
	Distribution            []DiseaseShare `json:"distribution"`
	MeanPrimaryPercentage   float64        `json:"mean_primary_percentage"`
	MedianPrimaryPercentage float64        `json:"median_primary_percentage"`
}
