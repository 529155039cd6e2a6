package assist

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depositguard/pkg/money"
	"depositguard/pkg/platform/sentinel"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		var req openai.ChatCompletionRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Description: carpet dirty")

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: openai.GPT4oMini,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIImprover_Improve(t *testing.T) {
	in := DeductionContext{Description: "carpet dirty", Category: "CLEANING", Amount: money.MustParse("125"), StateCode: "CA"}

	t.Run("returns the parsed suggestion", func(t *testing.T) {
		srv := chatServer(t, `{"description":"Professional cleaning of pet stains on bedroom carpet","rationale":"Names the location and remedy"}`, http.StatusOK)
		imp, err := NewOpenAI("test-key", WithBaseURL(srv.URL), WithRateLimit(100, 10))
		require.NoError(t, err)

		got, err := imp.Improve(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "Professional cleaning of pet stains on bedroom carpet", got.Description)
		assert.NotEmpty(t, got.Rationale)
	})

	t.Run("non-json reply is unavailable", func(t *testing.T) {
		srv := chatServer(t, "Sure! Here is a better description.", http.StatusOK)
		imp, err := NewOpenAI("test-key", WithBaseURL(srv.URL), WithRateLimit(100, 10))
		require.NoError(t, err)

		_, err = imp.Improve(context.Background(), in)
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("api error is unavailable", func(t *testing.T) {
		srv := chatServer(t, "", http.StatusInternalServerError)
		imp, err := NewOpenAI("test-key", WithBaseURL(srv.URL), WithRateLimit(100, 10))
		require.NoError(t, err)

		_, err = imp.Improve(context.Background(), in)
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI("")
	assert.Error(t, err)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Improve(context.Background(), DeductionContext{})
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
