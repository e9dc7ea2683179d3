package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gait/gait/internal/pkg/errors"
)

const testAPIKey = "sk-test-key-that-is-long-enough-for-validation"

// fakeAPI is an httptest server speaking the subset of the OpenAI API gait uses.
type fakeAPI struct {
	srv  *httptest.Server
	hits atomic.Int32

	mu       sync.Mutex
	lastReq  openai.ChatCompletionRequest
	lastAuth string
}

func newFakeAPI(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		if r.URL.Path == "/v1/chat/completions" {
			_ = json.NewDecoder(r.Body).Decode(&f.lastReq)
		}
		f.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) request() (openai.ChatCompletionRequest, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq, f.lastAuth
}

func (f *fakeAPI) provider(apiKey string) *OpenAIProvider {
	return NewOpenAIProvider(ProviderConfig{
		APIKey:   apiKey,
		Endpoint: f.srv.URL + "/v1",
		Timeout:  2 * time.Second,
	})
}

func writeCompletion(w http.ResponseWriter, contents ...string) {
	choices := make([]map[string]any, 0, len(contents))
	for i, c := range contents {
		choices = append(choices, map[string]any{
			"index":         i,
			"message":       map[string]any{"role": "assistant", "content": c},
			"finish_reason": "stop",
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   DefaultOpenAIModel,
		"choices": choices,
	})
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":{"message":%q,"type":"invalid_request_error"}}`, message)
}

func TestNewOpenAIProvider_DefaultValues(t *testing.T) {
	provider := NewOpenAIProvider(ProviderConfig{APIKey: testAPIKey})

	assert.Equal(t, "openai", provider.Name())
	assert.Equal(t, DefaultOpenAIModel, provider.Model())
	assert.Equal(t, DefaultMaxTokens, provider.config.MaxTokens)
	assert.Equal(t, DefaultTimeout, provider.config.Timeout)
}

func TestNewOpenAIProvider_CustomValues(t *testing.T) {
	provider := NewOpenAIProvider(ProviderConfig{
		APIKey:    testAPIKey,
		Model:     "gpt-4",
		MaxTokens: 1000,
		Timeout:   5 * time.Second,
	})

	assert.Equal(t, "gpt-4", provider.Model())
	assert.Equal(t, 1000, provider.config.MaxTokens)
	assert.Equal(t, 5*time.Second, provider.config.Timeout)
}

func TestGenerateCommitMessage_Success(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "  feat: add feature X \n")
	})

	msg, err := api.provider(testAPIKey).GenerateCommitMessage(context.Background(), "diff --git a/x b/x\n+x")

	require.NoError(t, err)
	assert.Equal(t, "feat: add feature X", msg)
	assert.Equal(t, int32(1), api.hits.Load())
	req, auth := api.request()
	assert.Equal(t, "Bearer "+testAPIKey, auth)
	assert.Equal(t, DefaultOpenAIModel, req.Model)
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
	assert.Greater(t, req.Temperature, float32(0))
	assert.Less(t, req.Temperature, float32(1e-6))
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, CommitSystemPrompt, req.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "diff --git a/x b/x\n+x")
	assert.Contains(t, req.Messages[1].Content, "Max 50 characters")
}

func TestGenerateCommitMessage_UsesFirstChoice(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "fix: first", "fix: second")
	})

	msg, err := api.provider(testAPIKey).GenerateCommitMessage(context.Background(), "diff")

	require.NoError(t, err)
	assert.Equal(t, "fix: first", msg)
}

func TestGenerateCommitMessage_MissingKeySendsNoRequest(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "should not be reached")
	})

	_, err := api.provider("").GenerateCommitMessage(context.Background(), "diff")

	assert.True(t, apperrors.HasCode(err, apperrors.ErrAuthenticationMissing), "got %v", err)
	assert.Equal(t, int32(0), api.hits.Load())
}

func TestGenerateCommitMessage_MalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
	}{
		{"no choices", nil},
		{"empty content", []string{""}},
		{"whitespace content", []string{" \n\t "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				writeCompletion(w, tt.contents...)
			})

			_, err := api.provider(testAPIKey).GenerateCommitMessage(context.Background(), "diff")

			assert.True(t, apperrors.HasCode(err, apperrors.ErrMalformedAPIResponse), "got %v", err)
		})
	}
}

func TestGenerateCommitMessage_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   apperrors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, apperrors.ErrAuthenticationFailed},
		{"forbidden", http.StatusForbidden, apperrors.ErrAuthenticationFailed},
		{"bad request", http.StatusBadRequest, apperrors.ErrAIProviderFailed},
		{"rate limited", http.StatusTooManyRequests, apperrors.ErrAIProviderFailed},
		{"server error", http.StatusInternalServerError, apperrors.ErrAIProviderFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(w, tt.status, "boom")
			})

			_, err := api.provider(testAPIKey).GenerateCommitMessage(context.Background(), "diff")

			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
			assert.Equal(t, int32(1), api.hits.Load(), "exactly one attempt")
		})
	}
}

func TestGenerateCommitMessage_NonJSONErrorBody(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := api.provider(testAPIKey).GenerateCommitMessage(context.Background(), "diff")

	assert.True(t, apperrors.HasCode(err, apperrors.ErrAIProviderFailed), "got %v", err)
}

func TestGenerateCommitMessage_Timeout(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	provider := NewOpenAIProvider(ProviderConfig{
		APIKey:   testAPIKey,
		Endpoint: api.srv.URL + "/v1",
		Timeout:  50 * time.Millisecond,
	})

	_, err := provider.GenerateCommitMessage(context.Background(), "diff")

	assert.True(t, apperrors.HasCode(err, apperrors.ErrNetworkFailure), "got %v", err)
}

func TestGenerateCommitMessage_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	provider := NewOpenAIProvider(ProviderConfig{APIKey: testAPIKey, Endpoint: url + "/v1"})

	_, err := provider.GenerateCommitMessage(context.Background(), "diff")

	assert.True(t, apperrors.HasCode(err, apperrors.ErrNetworkFailure), "got %v", err)
}

func TestGenerateCommitMessage_CancelledContext(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := api.provider(testAPIKey).GenerateCommitMessage(ctx, "diff")

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCancelled), "got %v", err)
}

func TestGeneratePullRequest_Success(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "TITLE: Add login flow\nBODY:\n## Summary\n- adds login")
	})

	pr, err := api.provider(testAPIKey).GeneratePullRequest(context.Background(), "diff --git a/login.go", "feat: add login")

	require.NoError(t, err)
	assert.Equal(t, "Add login flow", pr.Title)
	assert.Equal(t, "## Summary\n- adds login", pr.Body)
	req, _ := api.request()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, PullRequestSystemPrompt, req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "feat: add login")
	assert.Contains(t, req.Messages[1].Content, "diff --git a/login.go")
	assert.Zero(t, req.MaxTokens)
}

func TestGeneratePullRequest_Malformed(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "Here is your pull request!")
	})

	_, err := api.provider(testAPIKey).GeneratePullRequest(context.Background(), "diff", "log")

	assert.True(t, apperrors.HasCode(err, apperrors.ErrMalformedAPIResponse), "got %v", err)
}

func TestPing(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model","created":0,"owned_by":"openai"}]}`))
	})

	err := api.provider(testAPIKey).Ping(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestPing_Errors(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "Incorrect API key provided")
	})

	err := api.provider(testAPIKey).Ping(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrAuthenticationFailed), "got %v", err)

	err = api.provider("").Ping(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrAuthenticationMissing), "got %v", err)
	assert.Equal(t, int32(1), api.hits.Load())
}

func TestSetCommitPromptTemplate(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "chore: tidy")
	})
	provider := api.provider(testAPIKey)
	provider.SetCommitPromptTemplate(NewPromptTemplateWithCustom(NewCommitPromptTemplate(), "custom system", "Summarise: {{.Diff}}"))
	provider.SetCommitPromptTemplate(nil)

	_, err := provider.GenerateCommitMessage(context.Background(), "the diff")

	require.NoError(t, err)
	req, _ := api.request()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "custom system", req.Messages[0].Content)
	assert.Equal(t, "Summarise: the diff", req.Messages[1].Content)
}
