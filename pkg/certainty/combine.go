// Package certainty implements the certainty factor inference used to rank
// smoking-related diseases from reported symptoms.
//
// Every function in this package is pure: inputs are never mutated and no
// state is shared between calls, so an Engine may be used concurrently.
package certainty

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/sidirok-cf-server/internal/domain"
)

// Combine merges two certainty factors in [-1, 1].
//
//	both >= 0:  cf1 + cf2*(1-cf1)
//	both <  0:  cf1 + cf2*(1+cf1)
//	mixed:      (cf1+cf2) / (1 - min(|cf1|, |cf2|))
//
// The first two cases are evaluated in their expanded symmetric form so that
// Combine(a, b) == Combine(b, a) holds bit for bit.
func Combine(cf1, cf2 float64) float64 {
	cf1, cf2 = clamp(cf1, -1, 1), clamp(cf2, -1, 1)

	var result float64
	switch {
	case cf1 >= 0 && cf2 >= 0:
		result = cf1 + cf2 - cf1*cf2
	case cf1 < 0 && cf2 < 0:
		result = cf1 + cf2 + cf1*cf2
	default:
		denom := 1 - math.Min(math.Abs(cf1), math.Abs(cf2))
		// total belief against total disbelief
		if denom == 0 {
			return 0
		}
		result = (cf1 + cf2) / denom
	}
	return clamp(result, -1, 1)
}

// RuleCF is (mb - md) * weight with every input bounded to [0, 1].
func RuleCF(rule domain.Rule) float64 {
	mb := clamp(rule.MB, 0, 1)
	md := clamp(rule.MD, 0, 1)
	weight := clamp(rule.Weight, 0, 1)
	return clamp((mb-md)*weight, -1, 1)
}

// CombineAll folds cfs left to right. An empty slice yields 0.
func CombineAll(cfs ...float64) float64 {
	if len(cfs) == 0 {
		return 0
	}
	acc := clamp(cfs[0], -1, 1)
	for _, cf := range cfs[1:] {
		acc = Combine(acc, cf)
	}
	return acc
}

// clamp bounds v to [lo, hi]. NaN maps to 0 when 0 is in range, otherwise lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		if lo <= 0 && hi >= 0 {
			return 0
		}
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundTo rounds v to the given number of decimals, halves away from zero.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// CompareRuleIDs orders rule ids so that ids sharing an alphabetic prefix
// compare by their numeric suffix ("R9" < "R10"). Other ids compare as strings.
func CompareRuleIDs(a, b string) int {
	pa, na, okA := splitID(a)
	pb, nb, okB := splitID(b)
	if okA && okB && pa == pb && na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func splitID(id string) (string, uint64, bool) {
	i := strings.IndexFunc(id, unicode.IsDigit)
	if i < 0 {
		return id, 0, false
	}
	n, err := strconv.ParseUint(id[i:], 10, 64)
	if err != nil {
		return id, 0, false
	}
	return id[:i], n, true
}
