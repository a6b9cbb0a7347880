package scheduling

import (
	"fmt"
	"time"

	"github.com/agendly/scheduler-api/pkg/errors"
)

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses open-interval semantics: ranges that merely touch at an
// endpoint do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

// MinutesOfDay parses "HH:MM" into minutes since midnight.
func MinutesOfDay(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, errors.NewValidation(fmt.Sprintf("invalid time %q, expected HH:MM", clock))
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, errors.NewValidation(fmt.Sprintf("invalid time %q, expected HH:MM", clock))
	}
	return h*60 + m, nil
}

// ClockOfMinutes renders minutes since midnight back as "HH:MM".
func ClockOfMinutes(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
