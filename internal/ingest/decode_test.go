package ingest_test

import (
	"github.com/myrjola/interviewdash/internal/ingest"
	"github.com/myrjola/interviewdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"strings"
	"testing"
)

func ptr[T any](v T) *T {
	return &v
}

func TestDecode_yaml(t *testing.T) {
	f, err := os.Open("testdata/reports.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	reports, err := ingest.Decode(f.Name(), f)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, ingest.Report{
		CallID:        "yaml-1",
		ParticipantID: ptr("P-100"),
		CreatedAt:     "2025-10-09T10:00:00Z",
		DurationMS:    61000,
		Status:        models.CompletionStatusCompleted,
		Transcript: []models.TranscriptMessage{
			{Speaker: "assistant", Text: "Are you a woman?"},
			{Speaker: "user", Text: "Yes."},
		},
		ExtractedVariables: &models.ExtractedVariables{IsWoman: ptr(true)},
	}, reports[0])
	assert.Equal(t, "yaml-2", reports[1].CallID)
	assert.Equal(t, models.CompletionStatusInProgress, reports[1].Status)
}

func TestDecode_jsonSingleReport(t *testing.T) {
	f, err := os.Open("testdata/report.json")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	reports, err := ingest.Decode(f.Name(), f)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "json-1", reports[0].CallID)
	assert.Len(t, reports[0].Transcript, 2)
	assert.Nil(t, reports[0].ExtractedVariables)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "json list", file: "a.JSON", input: `[{"call_id":"a"},{"call_id":"b"}]`, want: 2},
		{name: "yml single", file: "a.yml", input: "call_id: a\n", want: 1},
		{name: "empty yaml", file: "a.yaml", input: "", want: 0},
		{name: "unsupported extension", file: "a.csv", input: "call_id\na\n", wantErr: true},
		{name: "malformed json", file: "a.json", input: `[{"call_id":}]`, wantErr: true},
		{name: "wrong json type", file: "a.json", input: `[{"duration_ms":"long"}]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ingest.Decode(tt.file, strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
