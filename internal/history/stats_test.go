package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildStatistics_Empty(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	result := buildStatistics(from, from.AddDate(0, 1, 0), nil)

	assert.Zero(t, result.Total)
	assert.NotNil(t, result.Daily)
	assert.NotNil(t, result.Distribution)
	assert.Zero(t, result.MeanPrimaryPercentage)
	assert.Zero(t, result.MedianPrimaryPercentage)
}

func TestBuildStatistics_TiesSortByName(t *testing.T) {
	day := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	result := buildStatistics(day, day, []statEntry{
		{CreatedAt: day, PrimaryDisease: "PPOK", PrimaryPercentage: 30},
		{CreatedAt: day, PrimaryDisease: "Bronkitis", PrimaryPercentage: 70},
		{CreatedAt: day, PrimaryDisease: "", PrimaryPercentage: 0},
	})

	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, "Bronkitis", result.Distribution[0].Disease)
	assert.Equal(t, "PPOK", result.Distribution[1].Disease)
	assert.Equal(t, 33.3, result.Distribution[0].Percentage)
	assert.Equal(t, 50.0, result.MeanPrimaryPercentage)
	assert.Equal(t, 50.0, result.MedianPrimaryPercentage)
}
