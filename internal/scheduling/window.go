package scheduling

import (
	"fmt"
	"time"
)

// TimeWindow is a half-open interval [Start, End) in the clinic timezone.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow validates start < end.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, newError(ErrInvalidFormat, "The end time must be after the start time.",
			fmt.Errorf("window start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	return TimeWindow{Start: start, End: end}, nil
}

func (w TimeWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// Overlaps reports whether the two windows share any instant. Touching
// windows do not overlap.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

func (w TimeWindow) String() string {
	return w.Start.Format(time.RFC3339) + "/" + w.End.Format(time.RFC3339)
}
