package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendly/scheduler-api/internal/model"
)

func TestExpandRecurrenceByCount(t *testing.T) {
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) // a Monday
	spec := &model.RecurrenceSpec{
		Weekdays: []time.Weekday{first.Weekday()},
		EndType:  model.RecurrenceEndCount,
		Count:    4,
	}

	exp, err := ExpandRecurrence(first, time.Hour, spec, false)
	require.NoError(t, err)
	require.Len(t, exp.Occurrences, 4)
	assert.NotEqual(t, exp.GroupID.String(), "00000000-0000-0000-0000-000000000000")

	// Weekly cadence, one hour each.
	for i, occ := range exp.Occurrences {
		assert.Equal(t, first.AddDate(0, 0, 7*i), occ.Start)
		assert.Equal(t, time.Hour, occ.End.Sub(occ.Start))
	}
}

func TestExpandRecurrenceMultipleWeekdays(t *testing.T) {
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	spec := &model.RecurrenceSpec{
		Weekdays: []time.Weekday{first.Weekday(), first.AddDate(0, 0, 2).Weekday()},
		EndType:  model.RecurrenceEndCount,
		Count:    4,
	}

	exp, err := ExpandRecurrence(first, 30*time.Minute, spec, false)
	require.NoError(t, err)
	require.Len(t, exp.Occurrences, 4)

	// Mon, Wed, Mon, Wed.
	assert.Equal(t, first, exp.Occurrences[0].Start)
	assert.Equal(t, first.AddDate(0, 0, 2), exp.Occurrences[1].Start)
	assert.Equal(t, first.AddDate(0, 0, 7), exp.Occurrences[2].Start)
	assert.Equal(t, first.AddDate(0, 0, 9), exp.Occurrences[3].Start)
}

func TestExpandRecurrenceByEndDate(t *testing.T) {
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	spec := &model.RecurrenceSpec{
		Weekdays: []time.Weekday{first.Weekday()},
		EndType:  model.RecurrenceEndDate,
		EndDate:  "2026-03-23",
	}

	exp, err := ExpandRecurrence(first, time.Hour, spec, false)
	require.NoError(t, err)
	// Mar 2, 9, 16, 23: the end date itself is included.
	assert.Len(t, exp.Occurrences, 4)
}

func TestExpandRecurrenceSkipFirstDay(t *testing.T) {
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	spec := &model.RecurrenceSpec{
		Weekdays: []time.Weekday{first.Weekday()},
		EndType:  model.RecurrenceEndCount,
		Count:    2,
	}

	exp, err := ExpandRecurrence(first, time.Hour, spec, true)
	require.NoError(t, err)
	require.Len(t, exp.Occurrences, 2)
	assert.Equal(t, first.AddDate(0, 0, 7), exp.Occurrences[0].Start)
	assert.Equal(t, first.AddDate(0, 0, 14), exp.Occurrences[1].Start)
}

func TestExpandRecurrenceOccurrenceCap(t *testing.T) {
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	spec := &model.RecurrenceSpec{
		Weekdays: []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
		EndType: model.RecurrenceEndDate,
		EndDate: "2027-03-01",
	}

	exp, err := ExpandRecurrence(first, time.Hour, spec, false)
	require.NoError(t, err)
	assert.Len(t, exp.Occurrences, MaxOccurrences)
}

func TestExpandRecurrenceHorizonCap(t *testing.T) {
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	spec := &model.RecurrenceSpec{
		Weekdays: []time.Weekday{first.Weekday()},
		EndType:  model.RecurrenceEndCount,
		Count:    50,
	}

	exp, err := ExpandRecurrence(first, time.Hour, spec, false)
	require.NoError(t, err)
	assert.Len(t, exp.Occurrences, MaxOccurrences)
	for _, occ := range exp.Occurrences {
		assert.False(t, occ.Start.After(first.AddDate(0, 0, MaxHorizonDays)))
	}
}

func TestExpandRecurrenceValidation(t *testing.T) {
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := ExpandRecurrence(first, time.Hour, nil, false)
	assert.Error(t, err)

	_, err = ExpandRecurrence(first, time.Hour, &model.RecurrenceSpec{
		Weekdays: []time.Weekday{first.Weekday()},
		EndType:  model.RecurrenceEndCount,
		Count:    0,
	}, false)
	assert.Error(t, err)

	_, err = ExpandRecurrence(first, time.Hour, &model.RecurrenceSpec{
		Weekdays: []time.Weekday{first.Weekday()},
		EndType:  model.RecurrenceEndDate,
		EndDate:  "not-a-date",
	}, false)
	assert.Error(t, err)

	// End date before the first occurrence produces nothing.
	_, err = ExpandRecurrence(first, time.Hour, &model.RecurrenceSpec{
		Weekdays: []time.Weekday{first.Weekday()},
		EndType:  model.RecurrenceEndDate,
		EndDate:  "2026-02-01",
	}, false)
	assert.Error(t, err)
}
