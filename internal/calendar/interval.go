package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout: формат календарной даты в запросах и в хранилище.
const DateLayout = "2006-01-02"

const minutesPerDay = 24 * 60

var (
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidDate      = errors.New("invalid date")
)

// TimeOfDay — время суток в минутах от полуночи (локальное время площадки).
type TimeOfDay int

// ParseTimeOfDay разбирает "HH:MM" или "HH:MM:SS".
// "24:00" допускается как конец дня.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, okH := digits(parts[0], 1, 2)
	m, okM := digits(parts[1], 2, 2)
	if !okH || !okM {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	if len(parts) == 3 {
		// секунды игнорируем, но только нулевые
		if sec, ok := digits(parts[2], 2, 2); !ok || sec != 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay(h*60 + m), nil
}

// digits разбирает поле из одних цифр длиной от minLen до maxLen; знаки и
// пробелы не допускаются.
func digits(s string, minLen, maxLen int) (int, bool) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// MustTimeOfDay для констант в тестах и CLI.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Interval — полуоткрытый интервал [Start, End) внутри одного дня.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewInterval создаёт интервал; пустые и перевёрнутые интервалы запрещены.
func NewInterval(start, end TimeOfDay) (Interval, error) {
	if start < 0 || end > minutesPerDay || end <= start {
		return Interval{}, ErrInvalidTimeRange
	}
	return Interval{Start: start, End: end}, nil
}

func (i Interval) Minutes() int { return int(i.End - i.Start) }

func (i Interval) String() string { return i.Start.String() + "-" + i.End.String() }

// Overlaps проверяет пересечение полуоткрытых интервалов; касание концами не считается.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// HasOverlap проверяет, пересекается ли candidate с existing,
// и возвращает конфликтующие интервалы.
func HasOverlap(candidate Interval, existing []Interval) (bool, []Interval) {
	var conflicts []Interval
	for _, iv := range existing {
		if candidate.Overlaps(iv) {
			conflicts = append(conflicts, iv)
		}
	}
	return len(conflicts) > 0, conflicts
}

// ParseDate разбирает календарную дату "YYYY-MM-DD" в полночь UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// DateOnly отбрасывает время, оставляя дату в UTC.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }
