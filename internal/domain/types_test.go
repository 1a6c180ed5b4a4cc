package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		name     string
		value    Severity
		expected int
	}{
		{"Critical", SeverityCritical, 4},
		{"High", SeverityHigh, 3},
		{"Moderate", SeverityModerate, 2},
		{"Low", SeverityLow, 1},
		{"Unknown", Severity("extreme"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Rank(); got != tt.expected {
				t.Errorf("Expected rank %d, got %d", tt.expected, got)
			}
			if tt.value.IsValid() != (tt.expected > 0) {
				t.Errorf("IsValid mismatch for %s", tt.value)
			}
		})
	}
}

func TestRiskLevelIsValid(t *testing.T) {
	for _, lvl := range []RiskLevel{RiskLevelHigh, RiskLevelModerate, RiskLevelLow} {
		if !lvl.IsValid() {
			t.Errorf("Expected %s to be valid", lvl)
		}
	}
	if RiskLevel("severe").IsValid() {
		t.Error("Expected unknown risk level to be invalid")
	}
}

func TestCountUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"Number", `45`, 45},
		{"Fractional number truncates", `12.9`, 12},
		{"Numeric string", `"20"`, 20},
		{"Padded numeric string", `" 7 "`, 7},
		{"Non numeric string", `"abc"`, 0},
		{"Negative", `-3`, 0},
		{"Null", `null`, 0},
		{"Boolean", `true`, 0},
		{"Empty string", `""`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Count
			if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c.Int() != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, c.Int())
			}
		})
	}
}

func TestRiskProfileMissingFields(t *testing.T) {
	var p RiskProfile
	if err := json.Unmarshal([]byte(`{"age":"40"}`), &p); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Age != 40 || p.SmokingYears != 0 || p.CigarettesPerDay != 0 {
		t.Errorf("Unexpected profile %+v", p)
	}
}

func TestRuleFilterMatches(t *testing.T) {
	rule := Rule{ID: "R27", SymptomID: "G07", DiseaseID: "P4"}

	tests := []struct {
		name     string
		filter   RuleFilter
		expected bool
	}{
		{"Empty filter", RuleFilter{}, true},
		{"Disease match", RuleFilter{DiseaseID: "P4"}, true},
		{"Disease mismatch", RuleFilter{DiseaseID: "P1"}, false},
		{"Both match", RuleFilter{DiseaseID: "P4", SymptomID: "G07"}, true},
		{"Symptom mismatch", RuleFilter{DiseaseID: "P4", SymptomID: "G01"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(rule); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name         string
		page, limit  int
		expectPage   int
		expectLimit  int
		expectOffset int
	}{
		{"Defaults", 0, 0, 1, DefaultPageLimit, 0},
		{"Second page", 2, 20, 2, 20, 20},
		{"Limit capped", 1, 500, 1, MaxPageLimit, 0},
		{"Negative page", -4, 5, 1, 5, 0},
		{"Huge page capped", math.MaxInt, 10, MaxPage, 10, (MaxPage - 1) * 10},
		{"Huge page at max limit", math.MaxInt, MaxPageLimit, MaxPage, MaxPageLimit, (MaxPage - 1) * MaxPageLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.page, tt.limit)
			if p.Page != tt.expectPage || p.Limit != tt.expectLimit || p.Offset() != tt.expectOffset {
				t.Errorf("Unexpected page %+v offset %d", p, p.Offset())
			}
		})
	}
}

func TestOffsetSaturates(t *testing.T) {
	p := Page{Page: math.MaxInt, Limit: MaxPageLimit}
	if got := p.Offset(); got != math.MaxInt {
		t.Errorf("Expected saturated offset, got %d", got)
	}
	if got := (Page{}).Offset(); got != 0 {
		t.Errorf("Expected zero offset for zero page, got %d", got)
	}
}

func TestPaginate(t *testing.T) {
	p := NewPage(2, 10)
	got := p.Paginate(25)

	if got.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", got.TotalPages)
	}
	if !got.HasNext || !got.HasPrev {
		t.Errorf("Expected next and prev on middle page, got %+v", got)
	}

	last := NewPage(3, 10).Paginate(25)
	if last.HasNext {
		t.Error("Last page should not have next")
	}

	empty := NewPage(1, 10).Paginate(0)
	if empty.TotalPages != 0 || empty.HasNext || empty.HasPrev {
		t.Errorf("Unexpected empty pagination %+v", empty)
	}
}
