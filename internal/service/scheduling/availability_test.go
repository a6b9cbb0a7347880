package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendly/scheduler-api/internal/model"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
)

func window(start, end string) *model.AvailabilityWindow {
	return &model.AvailabilityWindow{StartTime: start, EndTime: end}
}

func TestResolveAvailabilityNoWindows(t *testing.T) {
	err := ResolveAvailability(nil, 540, 600)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAvailability, apperrors.Code(err))
	assert.Contains(t, err.Error(), "no schedule configured for this date")
}

func TestResolveAvailabilityContained(t *testing.T) {
	windows := []*model.AvailabilityWindow{window("08:00", "12:00")}

	assert.NoError(t, ResolveAvailability(windows, 540, 600))
	// Ending exactly at close is fine.
	assert.NoError(t, ResolveAvailability(windows, 660, 720))
}

func TestResolveAvailabilityExceedsClose(t *testing.T) {
	windows := []*model.AvailabilityWindow{window("08:00", "12:00")}

	err := ResolveAvailability(windows, 690, 750)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds closing time at 12:00")
}

func TestResolveAvailabilityOutsideWindows(t *testing.T) {
	windows := []*model.AvailabilityWindow{window("08:00", "12:00")}

	err := ResolveAvailability(windows, 780, 840)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "professional unavailable at this time")
}

func TestResolveAvailabilityMergesOverlappingWindows(t *testing.T) {
	// 08:00-12:00 and 11:00-15:00 merge into one window; an interval
	// straddling 12:00 is fully covered.
	windows := []*model.AvailabilityWindow{
		window("11:00", "15:00"),
		window("08:00", "12:00"),
	}

	assert.NoError(t, ResolveAvailability(windows, 690, 780))
}

func TestResolveAvailabilityTouchingWindowsMerge(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		window("08:00", "12:00"),
		window("12:00", "16:00"),
	}

	assert.NoError(t, ResolveAvailability(windows, 700, 760))
}

func TestResolveAvailabilityGapBetweenWindows(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		window("08:00", "12:00"),
		window("14:00", "18:00"),
	}

	// Starts inside the morning window but runs past its close.
	err := ResolveAvailability(windows, 690, 870)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds closing time at 12:00")

	// Starts in the gap.
	err = ResolveAvailability(windows, 750, 810)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "professional unavailable at this time")
}

func TestResolveAvailabilityMalformedWindow(t *testing.T) {
	windows := []*model.AvailabilityWindow{window("junk", "12:00")}

	err := ResolveAvailability(windows, 540, 600)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation, apperrors.Code(err))
}
