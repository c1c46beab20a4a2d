// Package pricing turns a booking request and resolved resource rates into a
// price breakdown. Nothing here performs I/O.
package pricing

import (
	"fmt"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/calendar"
)

// Duration is the billable length of an interval.
type Duration struct {
	Minutes int
	Hours   float64
}

// CalculateDuration returns the duration of [start, end). 90 minutes is 1.5h.
func CalculateDuration(start, end calendar.TimeOfDay) (Duration, error) {
	if end <= start {
		return Duration{}, apperr.WithMetadata(
			apperr.CodeInvalidInterval,
			fmt.Sprintf("end time %s must be after start time %s", end, start),
			map[string]string{"start_time": start.String(), "end_time": end.String()},
		)
	}
	minutes := end.Minutes() - start.Minutes()
	return Duration{Minutes: minutes, Hours: float64(minutes) / 60}, nil
}
