package pricing

import (
	"encoding/json"
	"testing"
)

func TestRatesResolve(t *testing.T) {
	r := Rates{
		HourlyRate: 1000,
		SportPricing: map[string]any{
			"Cricket":   1200.0,
			"Football":  json.Number("900"),
			"Tennis":    "750",
			"Badminton": -50.0,
			"Squash":    "free",
			"Hockey":    nil,
		},
	}
	cases := map[string]float64{
		"Cricket":   1200,
		"cricket":   1200,
		"Football":  900,
		"Tennis":    750,
		"Badminton": 1000,
		"Squash":    1000,
		"Hockey":    1000,
		"Polo":      1000,
	}
	for sport, want := range cases {
		if got := r.Resolve(sport); got != want {
			t.Fatalf("Resolve(%q) = %v, want %v", sport, got, want)
		}
	}
}

func TestRatesResolve_NoOverrides(t *testing.T) {
	if got := (Rates{HourlyRate: 500}).Resolve("Cricket"); got != 500 {
		t.Fatalf("got %v, want 500", got)
	}
}

func TestRatesResolve_ZeroOverrideIsValid(t *testing.T) {
	r := Rates{HourlyRate: 500, SportPricing: map[string]any{"Yoga": 0.0}}
	if got := r.Resolve("Yoga"); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestRatesResolve_CaseVariants(t *testing.T) {
	r := Rates{
		HourlyRate: 1000,
		SportPricing: map[string]any{
			"cricket": 1100.0,
			"CRICKET": 1300.0,
			"Tennis":  700.0,
		},
	}
	cases := map[string]float64{
		"cricket": 1100,
		"CRICKET": 1300,
		"Cricket": 1000, // ambiguous
		"tennis":  700,
	}
	for sport, want := range cases {
		for i := 0; i < 200; i++ {
			if got := r.Resolve(sport); got != want {
				t.Fatalf("Resolve(%q) = %v, want %v (iteration %d)", sport, got, want, i)
			}
		}
	}
}
