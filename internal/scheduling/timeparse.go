package scheduling

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// naive layouts are read as clinic wall-clock time.
var naiveBoundaryLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var zonedBoundaryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

var clockOnlyLayouts = []string{
	"15:04:05",
	"15:04",
}

// Normalizer turns caller-supplied date and time text into instants in the
// clinic timezone.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// NewNormalizer builds a normalizer for loc. A nil now uses time.Now.
func NewNormalizer(loc *time.Location, now func() time.Time) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{loc: loc, now: now}
}

// Location returns the clinic timezone.
func (n *Normalizer) Location() *time.Location { return n.loc }

// Now returns the current instant in the clinic timezone.
func (n *Normalizer) Now() time.Time { return n.now().In(n.loc) }

// Parse combines a YYYY-MM-DD (or MM-DD) date and an HH:MM clock into an
// instant in the clinic timezone. The result must be strictly in the future.
func (n *Normalizer) Parse(date, clock string) (time.Time, error) {
	now := n.Now()

	day, err := n.parseDate(strings.TrimSpace(date), now)
	if err != nil {
		return time.Time{}, newError(ErrInvalidFormat, msgInvalidFormat, err)
	}
	hm, err := parseClock(strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, newError(ErrInvalidFormat, msgInvalidFormat, err)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, n.loc)
	if !start.After(now) {
		return time.Time{}, newError(ErrInThePast, msgInThePast, fmt.Errorf("%s is not after %s", start.Format(time.RFC3339), now.Format(time.RFC3339)))
	}
	return start, nil
}

// parseDate accepts YYYY-MM-DD or MM-DD. A bare MM-DD takes the current clinic
// year, or next year when that day has already gone by and exists next year.
func (n *Normalizer) parseDate(raw string, now time.Time) (time.Time, error) {
	switch len(raw) {
	case len(dateLayout):
		return time.ParseInLocation(dateLayout, raw, n.loc)
	case len("01-02"):
		day, err := time.ParseInLocation(dateLayout, fmt.Sprintf("%04d-%s", now.Year(), raw), n.loc)
		if err != nil {
			return time.Time{}, err
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, n.loc)
		if !day.Before(today) {
			return day, nil
		}
		// 02-29 has no next-year counterpart; the past date is reported as such.
		next, err := time.ParseInLocation(dateLayout, fmt.Sprintf("%04d-%s", now.Year()+1, raw), n.loc)
		if err != nil {
			return day, nil
		}
		return next, nil
	}
	return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD or MM-DD", raw)
}

// parseClock accepts strict 24-hour HH:MM.
func parseClock(raw string) (time.Time, error) {
	if len(raw) != len(clockLayout) {
		return time.Time{}, fmt.Errorf("time %q: want HH:MM", raw)
	}
	return time.Parse(clockLayout, raw)
}

// ParseBoundary parses an availability window boundary. Zoned values are
// converted to the clinic timezone; naive values are read as clinic wall
// clock; a bare time of day falls on the current clinic date. No
// past-time check is applied.
func (n *Normalizer) ParseBoundary(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, newError(ErrInvalidFormat, msgInvalidFormat, fmt.Errorf("empty boundary"))
	}
	for _, layout := range zonedBoundaryLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(n.loc), nil
		}
	}
	for _, layout := range naiveBoundaryLayouts {
		if t, err := time.ParseInLocation(layout, raw, n.loc); err == nil {
			return t, nil
		}
	}
	for _, layout := range clockOnlyLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			today := n.Now()
			return time.Date(today.Year(), today.Month(), today.Day(), t.Hour(), t.Minute(), t.Second(), 0, n.loc), nil
		}
	}
	return time.Time{}, newError(ErrInvalidFormat, "Invalid time format. Please use YYYY-MM-DDTHH:MM:SS.", fmt.Errorf("boundary %q not recognised", raw))
}
