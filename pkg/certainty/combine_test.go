package certainty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidirok-cf-server/internal/domain"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		cf1, cf2 float64
		expected float64
	}{
		{"Both positive", 0.5, 0.3, 0.65},
		{"Both negative", -0.5, -0.3, -0.65},
		{"Mixed sign", 0.6, -0.4, 0.2 / 0.6},
		{"Mixed sign negative dominant", -0.8, 0.2, -0.6 / 0.8},
		{"Zero is identity", 0, 0.42, 0.42},
		{"Certain belief", 1, 0.3, 1},
		{"Certain disbelief", -1, -0.3, -1},
		{"Full conflict", 1, -1, 0},
		{"Out of range inputs clamp", 1.5, 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Combine(tt.cf1, tt.cf2), 1e-12)
		})
	}
}

func TestCombineIsCommutative(t *testing.T) {
	for a := -1.0; a <= 1.0; a += 0.05 {
		for b := -1.0; b <= 1.0; b += 0.05 {
			if Combine(a, b) != Combine(b, a) {
				t.Fatalf("Combine(%v, %v)=%v but Combine(%v, %v)=%v", a, b, Combine(a, b), b, a, Combine(b, a))
			}
		}
	}
}

func TestCombineStaysInRange(t *testing.T) {
	for a := -1.0; a <= 1.0; a += 0.1 {
		for b := -1.0; b <= 1.0; b += 0.1 {
			got := Combine(a, b)
			if got < -1 || got > 1 || math.IsNaN(got) {
				t.Fatalf("Combine(%v, %v)=%v out of range", a, b, got)
			}
		}
	}
}

func TestCombineAll(t *testing.T) {
	assert.Equal(t, 0.0, CombineAll())
	assert.InDelta(t, 0.4, CombineAll(0.4), 1e-12)
	// 0.5 then 0.3 gives 0.65, then 0.2 gives 0.72
	assert.InDelta(t, 0.72, CombineAll(0.5, 0.3, 0.2), 1e-12)
}

func TestRuleCF(t *testing.T) {
	tests := []struct {
		name     string
		rule     domain.Rule
		expected float64
	}{
		{"Heart attack rule", domain.Rule{MB: 0.98, MD: 0.01, Weight: 1}, 0.97},
		{"Weighted", domain.Rule{MB: 0.8, MD: 0.1, Weight: 0.9}, 0.63},
		{"Disbelief dominates", domain.Rule{MB: 0.2, MD: 0.6, Weight: 0.5}, -0.2},
		{"Zero weight", domain.Rule{MB: 0.9, MD: 0.1, Weight: 0}, 0},
		{"Out of range values clamp", domain.Rule{MB: 1.4, MD: -0.2, Weight: 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RuleCF(tt.rule), 1e-12)
		})
	}
}

func TestRuleCFEqualBeliefIsZero(t *testing.T) {
	for _, weight := range []float64{0, 0.25, 0.5, 0.9, 1} {
		for _, v := range []float64{0, 0.3, 0.77, 1} {
			assert.Equal(t, 0.0, RuleCF(domain.Rule{MB: v, MD: v, Weight: weight}))
		}
	}
}

func TestCompareRuleIDs(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"R01", "R02", -1},
		{"R9", "R10", -1},
		{"R100", "R57", 1},
		{"R27", "R27", 0},
		{"A1", "R1", -1},
		{"custom", "R01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompareRuleIDs(tt.a, tt.b))
		})
	}
}
