package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadTime      = errors.New("malformed time string")
	ErrBadDuration  = errors.New("malformed duration string")
	ErrInvalidRange = errors.New("window end must be after start")
)

// Layout is the fixed, locale-naive format reservation times arrive in.
const Layout = "2006-01-02 15:04"

// PresentationOffset shifts "now" for user-facing reservation views.
// Stored instants are local-naive, one hour ahead of the server clock.
const PresentationOffset = time.Hour

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseTime parses a single "YYYY-MM-DD HH:MM" string in UTC.
func ParseTime(raw string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrBadTime
	}
	return t, nil
}

// ParseWindow parses a from/to pair and validates the range.
func ParseWindow(from, to string) (Window, error) {
	start, err := ParseTime(from)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseTime(to)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(start, end)
}

// NewWindow validates end > start.
func NewWindow(start, end time.Time) (Window, error) {
	if !end.After(start) {
		return Window{}, ErrInvalidRange
	}
	return Window{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open windows conflict. Touching
// boundaries (w.End == other.Start) are not a conflict.
func (w Window) Overlaps(other Window) bool {
	return w.End.After(other.Start) && w.Start.Before(other.End)
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// EndAfter adds an "HH:MM" duration expression to a start instant.
// start + duration == end exactly.
func EndAfter(start time.Time, duration string) (time.Time, error) {
	d, err := ParseDuration(duration)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(d), nil
}

// ParseDuration parses an "HH:MM" duration expression.
func ParseDuration(raw string) (time.Duration, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, ErrBadDuration
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, ErrBadDuration
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, ErrBadDuration
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// FormatDate renders an instant as "2 Jan 2006" for display only.
func FormatDate(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// FormatClock renders an instant as "15h04" for display only.
func FormatClock(t time.Time) string {
	return fmt.Sprintf("%dh%02d", t.Hour(), t.Minute())
}

// FormatSlot renders a window as "9h00 - 11h30".
func FormatSlot(w Window) string {
	return FormatClock(w.Start) + " - " + FormatClock(w.End)
}

// RemainingSeconds returns whole seconds from now until end, corrected by
// the presentation offset carried by stored instants.
func RemainingSeconds(now, end time.Time) int64 {
	return int64(end.Sub(now)/time.Second) - int64(PresentationOffset/time.Second)
}

// TotalSeconds returns the whole-second length of [start, end).
func TotalSeconds(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}
