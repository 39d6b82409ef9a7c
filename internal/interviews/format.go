package interviews

import (
	"fmt"
	"time"
)

const (
	msPerSecond      = 1000
	secondsPerMinute = 60
	secondsPerHour   = 3600
)

// Formatter renders interview timestamps and durations for display.
type Formatter struct {
	// Location is the time zone timestamps are shown in. Nil means time.Local.
	Location *time.Location
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

// Date renders t like "Jan 2".
func (f Formatter) Date(t time.Time) string {
	return t.In(f.location()).Format("Jan 2")
}

// Time renders t like "03:04 PM".
func (f Formatter) Time(t time.Time) string {
	return t.In(f.location()).Format("03:04 PM")
}

// DateTime renders t like "Jan 2, 03:04 PM".
func (f Formatter) DateTime(t time.Time) string {
	return t.In(f.location()).Format("Jan 2, 03:04 PM")
}

// Seconds rounds milliseconds to whole seconds with halves rounding up. Negative input counts as zero.
func (f Formatter) Seconds(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	return (ms + msPerSecond/2) / msPerSecond
}

// SecondsLabel renders the rounded seconds like "42s".
func (f Formatter) SecondsLabel(ms int64) string {
	return fmt.Sprintf("%ds", f.Seconds(ms))
}

// Duration renders milliseconds like "5s", "1m 5s" or "1h 2m 3s".
func (f Formatter) Duration(ms int64) string {
	total := f.Seconds(ms)
	hours := total / secondsPerHour
	minutes := total / secondsPerMinute % secondsPerMinute
	seconds := total % secondsPerMinute
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
