package history

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/sidirok-cf-server/internal/domain"
)

const dayLayout = "2006-01-02"

// statEntry is the slice of a record that statistics need.
type statEntry struct {
	CreatedAt         time.Time
	PrimaryDisease    string
	PrimaryPercentage float64
}

// buildStatistics aggregates entries into per-day counts, the primary disease
// distribution and the mean/median primary percentage. Diagnoses without a
// primary disease count toward the total only.
func buildStatistics(from, to time.Time, entries []statEntry) *domain.DiagnosisStatistics {
	result := &domain.DiagnosisStatistics{
		From:         from.UTC(),
		To:           to.UTC(),
		Total:        int64(len(entries)),
		Daily:        []domain.DailyCount{},
		Distribution: []domain.DiseaseShare{},
	}
	if len(entries) == 0 {
		return result
	}

	perDay := map[string]int64{}
	perDisease := map[string]int64{}
	var percentages stats.Float64Data
	for _, e := range entries {
		perDay[e.CreatedAt.UTC().Format(dayLayout)]++
		if e.PrimaryDisease == "" {
			continue
		}
		perDisease[e.PrimaryDisease]++
		percentages = append(percentages, e.PrimaryPercentage)
	}

	for day, n := range perDay {
		result.Daily = append(result.Daily, domain.DailyCount{Date: day, Count: n})
	}
	sort.Slice(result.Daily, func(i, j int) bool { return result.Daily[i].Date < result.Daily[j].Date })

	for disease, n := range perDisease {
		result.Distribution = append(result.Distribution, domain.DiseaseShare{
			Disease:    disease,
			Count:      n,
			Percentage: round1(float64(n) / float64(result.Total) * 100),
		})
	}
	sort.Slice(result.Distribution, func(i, j int) bool {
		a, b := result.Distribution[i], result.Distribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Disease < b.Disease
	})

	// Both return an error only for empty input.
	if mean, err := stats.Mean(percentages); err == nil {
		result.MeanPrimaryPercentage = round1(mean)
	}
	if median, err := stats.Median(percentages); err == nil {
		result.MedianPrimaryPercentage = round1(median)
	}
	return result
}

func round1(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil || math.IsNaN(r) {
		return 0
	}
	return r
}
