package interviews_test

import (
	"github.com/myrjola/interviewdash/internal/interviews"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestFormatter_Duration(t *testing.T) {
	f := interviews.Formatter{}
	tests := []struct {
		ms   int64
		want string
	}{
		{ms: 0, want: "0s"},
		{ms: 499, want: "0s"},
		{ms: 500, want: "1s"},
		{ms: 5000, want: "5s"},
		{ms: 59_499, want: "59s"},
		{ms: 59_500, want: "1m 0s"},
		{ms: 65_000, want: "1m 5s"},
		{ms: 42_400, want: "42s"},
		{ms: 3_723_000, want: "1h 2m 3s"},
		{ms: -1500, want: "0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Duration(tt.ms), "duration of %dms", tt.ms)
	}
}

func TestFormatter_Seconds(t *testing.T) {
	f := interviews.Formatter{}
	assert.Equal(t, int64(0), f.Seconds(0))
	assert.Equal(t, int64(12), f.Seconds(12_345))
	assert.Equal(t, int64(13), f.Seconds(12_500))
	assert.Equal(t, int64(0), f.Seconds(-10))
	assert.Equal(t, "65s", f.SecondsLabel(65_000))
}

func TestFormatter_timestamps(t *testing.T) {
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Skip("time zone database unavailable")
	}
	ts := time.UnixMilli(1760000000000).UTC() // 2025-10-09 08:53:20 UTC

	utc := interviews.Formatter{Location: time.UTC}
	assert.Equal(t, "Oct 9", utc.Date(ts))
	assert.Equal(t, "08:53 AM", utc.Time(ts))
	assert.Equal(t, "Oct 9, 08:53 AM", utc.DateTime(ts))

	local := interviews.Formatter{Location: helsinki}
	assert.Equal(t, "11:53 AM", local.Time(ts))

	late := time.Date(2025, time.December, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "Dec 31, 11:30 PM", utc.DateTime(late))
	assert.Equal(t, "Jan 1", local.Date(late))
}
