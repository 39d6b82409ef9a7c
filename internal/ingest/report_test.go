package ingest_test

import (
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/myrjola/interviewdash/internal/ingest"
	"github.com/myrjola/interviewdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		reports   []ingest.Report
		wantField []string
	}{
		{
			name: "valid",
			reports: []ingest.Report{
				{CallID: "a"},
				{CallID: "b", CreatedAt: "2025-10-09T10:00:00.123Z", Status: models.CompletionStatusFailed},
			},
		},
		{name: "missing call id", reports: []ingest.Report{{}}, wantField: []string{"'call_id' failed on the 'required' tag"}},
		{
			name: "all violations together",
			reports: []ingest.Report{
				{CallID: "a", DurationMS: -1},
				{
					CallID:     "b",
					CreatedAt:  "yesterday",
					Status:     "archived",
					Transcript: []models.TranscriptMessage{{Speaker: "user"}},
				},
				{CallID: "c", ParticipantID: ptr("")},
			},
			wantField: []string{
				"report 0 (a): field 'duration_ms' failed on the 'gte' tag (0)",
				"report 1 (b): field 'created_at' failed on the 'datetime' tag",
				"'status' failed on the 'oneof' tag",
				"'transcript[0].text' failed on the 'required' tag",
				"report 2 (c): field 'participant_id' failed on the 'min' tag (1)",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ingest.Validate(tt.reports)
			if len(tt.wantField) == 0 {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ingest.ErrInvalidReport)
			logged := errors.SlogError(err).Value.String()
			for _, want := range tt.wantField {
				assert.Contains(t, logged, want)
			}
		})
	}
}

func TestReport_Interview(t *testing.T) {
	now := time.Date(2025, time.October, 14, 12, 0, 0, 0, time.UTC)

	got, err := ingest.Report{CallID: "a", DurationMS: 65000}.Interview(now)
	require.NoError(t, err)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, 65*time.Second, got.Duration)
	assert.Equal(t, models.CompletionStatusCompleted, got.CompletionStatus)

	got, err = ingest.Report{CallID: "b", CreatedAt: "2025-10-09T11:30:00+03:00"}.Interview(now)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(time.Date(2025, time.October, 9, 8, 30, 0, 0, time.UTC)))
}
