package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/pkg/errors"
)

// Expansion safety caps: a runaway spec can never schedule more than 50
// occurrences or look further than a year ahead.
const (
	MaxOccurrences = 50
	MaxHorizonDays = 365
)

// Occurrence is one concrete dated instance of a recurring booking.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Expansion is the bounded occurrence list; all members share one group
// identity so the series can be edited or deleted as a whole.
type Expansion struct {
	GroupID     uuid.UUID
	Occurrences []Occurrence
}

// ExpandRecurrence walks day by day from first's date, emitting an
// occurrence whenever the weekday is in the target set. skipFirstDay
// starts the day after first, used when regenerating a series from an
// already-edited occurrence.
func ExpandRecurrence(first time.Time, duration time.Duration, spec *model.RecurrenceSpec, skipFirstDay bool) (*Expansion, error) {
	if spec == nil || len(spec.Weekdays) == 0 {
		return nil, errors.NewValidation("select at least one weekday for the recurrence")
	}

	target := make(map[time.Weekday]bool, len(spec.Weekdays))
	for _, wd := range spec.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, errors.NewValidation("recurrence weekdays must be between 0 and 6")
		}
		target[wd] = true
	}

	var hardEnd time.Time
	switch spec.EndType {
	case model.RecurrenceEndCount:
		if spec.Count < 1 {
			return nil, errors.NewValidation("recurrence count must be at least 1")
		}
	case model.RecurrenceEndDate:
		parsed, err := time.ParseInLocation("2006-01-02", spec.EndDate, first.Location())
		if err != nil {
			return nil, errors.NewValidation("invalid recurrence end date, expected YYYY-MM-DD")
		}
		hardEnd = parsed
	default:
		return nil, errors.NewValidation("recurrence end type must be count or date")
	}

	horizon := first.AddDate(0, 0, MaxHorizonDays)
	current := first
	if skipFirstDay {
		current = current.AddDate(0, 0, 1)
	}

	exp := &Expansion{GroupID: uuid.New()}
	for {
		if target[current.Weekday()] {
			if spec.EndType == model.RecurrenceEndCount && len(exp.Occurrences) >= spec.Count {
				break
			}
			if !hardEnd.IsZero() && dayOf(current).After(hardEnd) {
				break
			}
			exp.Occurrences = append(exp.Occurrences, Occurrence{Start: current, End: current.Add(duration)})
		}

		current = current.AddDate(0, 0, 1)

		if len(exp.Occurrences) >= MaxOccurrences {
			break
		}
		if current.After(horizon) {
			break
		}
	}

	if len(exp.Occurrences) == 0 {
		return nil, errors.NewValidation("recurrence produced no occurrences")
	}
	return exp, nil
}
