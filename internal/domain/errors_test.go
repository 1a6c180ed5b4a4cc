package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(ErrConflict, "Rule already exists", "G07 -> P4", "req-456")

	assert.Equal(t, ErrConflict, err.Code)
	assert.Equal(t, "G07 -> P4", err.Details)
	assert.Equal(t, "req-456", err.RequestID)
	assert.WithinDuration(t, time.Now().UTC(), err.Timestamp, time.Minute)
	assert.Equal(t, "CONFLICT: Rule already exists", err.Error())
}

func TestValidationError_Unwrapping(t *testing.T) {
	wrapped := fmt.Errorf("creating rule: %w", NewValidationError("certainty", "must be between 0.2 and 1", 1.5))

	var verr *ValidationError
	require.True(t, errors.As(wrapped, &verr))
	assert.Equal(t, "certainty", verr.Field)
	assert.Equal(t, 1.5, verr.Value)
	assert.Equal(t, "validation error for field 'certainty': must be between 0.2 and 1", verr.Error())
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrNoSymptoms, ErrDuplicateRule, ErrUnknownReference,
		ErrInvalidSeverity, ErrUnavailable, ErrHistoryDisabled,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v matched %v", a, b)
			}
		}
	}
}
