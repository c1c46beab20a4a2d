package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Rates is what the catalog knows about a venue or coach price list.
type Rates struct {
	HourlyRate float64
	// SportPricing maps a sport name to an hourly override. Values come from
	// a JSON column, so anything may show up here.
	SportPricing map[string]any
}

// Resolve returns the hourly rate for sport. A sport override wins only if it
// is a valid non-negative number; otherwise the default rate applies.
func (r Rates) Resolve(sport string) float64 {
	if v, ok := r.lookup(sport); ok {
		if rate, ok := asRate(v); ok {
			return rate
		}
	}
	return r.HourlyRate
}

// lookup prefers the exact key. A case-insensitive match is used only when
// it is unique; keys differing only by case make the override ambiguous and
// the default rate applies.
func (r Rates) lookup(sport string) (any, bool) {
	if len(r.SportPricing) == 0 {
		return nil, false
	}
	if v, ok := r.SportPricing[sport]; ok {
		return v, true
	}
	want := strings.TrimSpace(sport)
	var (
		found any
		n     int
	)
	for k, v := range r.SportPricing {
		if strings.EqualFold(strings.TrimSpace(k), want) {
			found = v
			n++
		}
	}
	if n != 1 {
		return nil, false
	}
	return found, true
}

func asRate(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
