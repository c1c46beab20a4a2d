package pricing

import (
	"errors"
	"testing"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/calendar"
)

func TestCalculateDuration(t *testing.T) {
	cases := []struct {
		start, end string
		minutes    int
		hours      float64
	}{
		{"09:00", "11:00", 120, 2},
		{"10:00", "11:30", 90, 1.5},
		{"00:00", "24:00", 1440, 24},
		{"06:15", "06:30", 15, 0.25},
	}
	for _, tc := range cases {
		d, err := CalculateDuration(calendar.MustTimeOfDay(tc.start), calendar.MustTimeOfDay(tc.end))
		if err != nil {
			t.Fatalf("%s-%s: unexpected error: %v", tc.start, tc.end, err)
		}
		if d.Minutes != tc.minutes || d.Hours != tc.hours {
			t.Fatalf("%s-%s: got %+v, want %d min / %v h", tc.start, tc.end, d, tc.minutes, tc.hours)
		}
	}
}

func TestCalculateDuration_MinutesMatchDifference(t *testing.T) {
	for start := 0; start < 24*60; start += 37 {
		for end := start + 1; end <= 24*60; end += 53 {
			d, err := CalculateDuration(calendar.TimeOfDay(start), calendar.TimeOfDay(end))
			if err != nil {
				t.Fatalf("[%d,%d): %v", start, end, err)
			}
			if d.Minutes != end-start {
				t.Fatalf("[%d,%d): minutes = %d", start, end, d.Minutes)
			}
		}
	}
}

func TestCalculateDuration_RejectsNonPositive(t *testing.T) {
	for _, tc := range [][2]string{{"09:00", "09:00"}, {"11:00", "09:00"}} {
		_, err := CalculateDuration(calendar.MustTimeOfDay(tc[0]), calendar.MustTimeOfDay(tc[1]))
		if !errors.Is(err, apperr.ErrInvalidInterval) {
			t.Fatalf("%v: expected InvalidInterval, got %v", tc, err)
		}
	}
}
