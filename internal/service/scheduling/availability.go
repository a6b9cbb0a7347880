package scheduling

import (
	"fmt"
	"sort"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/pkg/errors"
)

// mergedWindow is a working interval in minutes of day, after merging.
type mergedWindow struct {
	start int
	end   int
}

// mergeWindows sorts the configured windows by start time and folds
// overlapping or touching ones together. Windows with malformed times are
// rejected outright.
func mergeWindows(windows []*model.AvailabilityWindow) ([]mergedWindow, error) {
	raw := make([]mergedWindow, 0, len(windows))
	for _, w := range windows {
		start, err := MinutesOfDay(w.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := MinutesOfDay(w.EndTime)
		if err != nil {
			return nil, err
		}
		raw = append(raw, mergedWindow{start: start, end: end})
	}

	sort.Slice(raw, func(i, j int) bool { return raw[i].start < raw[j].start })

	var merged []mergedWindow
	for _, w := range raw {
		if n := len(merged); n > 0 && w.start <= merged[n-1].end {
			if w.end > merged[n-1].end {
				merged[n-1].end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged, nil
}

// ResolveAvailability classifies a candidate interval (minutes of day)
// against the professional's windows for that weekday. The three distinct
// rejections are deliberate: each tells the caller something different.
func ResolveAvailability(windows []*model.AvailabilityWindow, startMins, endMins int) error {
	merged, err := mergeWindows(windows)
	if err != nil {
		return err
	}

	if len(merged) == 0 {
		return errors.NewAvailability("no schedule configured for this date")
	}

	for _, w := range merged {
		if startMins >= w.start && startMins < w.end {
			if endMins <= w.end {
				return nil
			}
			return errors.NewAvailability(fmt.Sprintf("exceeds closing time at %s", ClockOfMinutes(w.end)))
		}
	}

	return errors.NewAvailability("professional unavailable at this time")
}
