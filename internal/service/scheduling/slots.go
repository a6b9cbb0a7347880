package scheduling

import (
	"github.com/agendly/scheduler-api/internal/model"
)

// SlotStepMinutes is the fixed probe step. Stepping by the requested
// duration would skip openings that start off-grid, e.g. a 45-minute gap
// starting at :15 right after a booking ends.
const SlotStepMinutes = 15

// FreeSlots enumerates open start times ("HH:MM") for a duration within
// the professional's merged windows, skipping probes that overlap a
// non-cancelled booking. Results come out sorted because windows are
// merged in start order.
func FreeSlots(windows []*model.AvailabilityWindow, existing []*model.Appointment, durationMinutes int) ([]string, error) {
	merged, err := mergeWindows(windows)
	if err != nil {
		return nil, err
	}

	type busyRange struct{ start, end int }
	var busy []busyRange
	for _, e := range existing {
		if !e.Occupies() {
			continue
		}
		start := e.StartTime.Hour()*60 + e.StartTime.Minute()
		end := e.EndTime.Hour()*60 + e.EndTime.Minute()
		busy = append(busy, busyRange{start: start, end: end})
	}

	slots := []string{}
	for _, w := range merged {
		for probe := w.start; probe+durationMinutes <= w.end; probe += SlotStepMinutes {
			probeEnd := probe + durationMinutes
			collides := false
			for _, b := range busy {
				if probe < b.end && probeEnd > b.start {
					collides = true
					break
				}
			}
			if !collides {
				slots = append(slots, ClockOfMinutes(probe))
			}
		}
	}
	return slots, nil
}
