package timewindow

import (
	"fmt"
	"time"
)

// Clock lets gate logic run against a controlled time in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Window is an inclusive-exclusive [Start:00, End:00) hour-of-day range
// evaluated in a fixed reference timezone.
type Window struct {
	loc   *time.Location
	start int
	end   int
}

func New(timezone string, startHour, endHour int) (Window, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Window{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 24 || startHour >= endHour {
		return Window{}, fmt.Errorf("invalid window bounds [%d, %d)", startHour, endHour)
	}
	return Window{loc: loc, start: startHour, end: endHour}, nil
}

func (w Window) Contains(t time.Time) bool {
	h := t.In(w.loc).Hour()
	return h >= w.start && h < w.end
}

// Describe renders the window for user-facing restriction messages,
// e.g. "10:00 and 13:00 IST".
func (w Window) Describe() string {
	ref := time.Date(2000, 1, 1, 12, 0, 0, 0, w.loc)
	zone, _ := ref.Zone()
	return fmt.Sprintf("%02d:00 and %02d:00 %s", w.start, w.end, zone)
}
