package ai_test

import (
	"context"
	"encoding/json"
	"github.com/myrjola/interviewdash/internal/ai"
	"github.com/myrjola/interviewdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCompletionServer(t *testing.T, content string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var request map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &request
}

func TestClient_ExtractVariables(t *testing.T) {
	srv, request := newCompletionServer(t, `{"is_woman":false,"favorite_food":"sushi"}`)
	client := ai.NewClient("test-key", srv.URL)

	got, err := client.ExtractVariables(context.Background(), []models.TranscriptMessage{
		{Speaker: "assistant", Text: "Are you a woman?"},
		{Speaker: "user", Text: "No. I love sushi."},
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.IsWoman)
	assert.False(t, *got.IsWoman)
	require.NotNil(t, got.FavoriteFood)
	assert.Equal(t, "sushi", *got.FavoriteFood)
	assert.Nil(t, got.FoodReason)

	assert.Equal(t, map[string]any{"type": "json_object"}, (*request)["response_format"])
	messages, ok := (*request)["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1].(map[string]any)["content"], "user: No. I love sushi.")
}

func TestClient_ExtractVariables_nothingExtracted(t *testing.T) {
	srv, _ := newCompletionServer(t, `{}`)
	got, err := ai.NewClient("test-key", srv.URL).ExtractVariables(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_ExtractVariables_malformedReply(t *testing.T) {
	srv, _ := newCompletionServer(t, `not json`)
	_, err := ai.NewClient("test-key", srv.URL).ExtractVariables(context.Background(), nil)
	require.Error(t, err)
}
