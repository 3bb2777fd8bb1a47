package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aretw0/boardgen/pkg/adapters/openai"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/retry"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []goopenai.ChatCompletionRequest
	status   int
	content  string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/v1/models":
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
		return
	case "/v1/chat/completions":
	default:
		http.NotFound(w, r)
		return
	}

	var req goopenai.ChatCompletionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.status != 0 && f.status != http.StatusOK {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": f.content},
		}},
	})
}

func newProvider(t *testing.T, api *fakeAPI) *openai.Provider {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	p, err := openai.New("test-key", openai.WithBaseURL(srv.URL+"/v1"), openai.WithModel("test-model"))
	require.NoError(t, err)
	return p
}

func TestProvider_Generate(t *testing.T) {
	api := &fakeAPI{content: `{"cell":{"promptText":"q","revealedText":"a"}}`}
	p := newProvider(t, api)

	raw, err := p.Generate(context.Background(), domain.GenerationRequest{
		Scope:  domain.CellScope(0, 1),
		Prompt: domain.PromptContext{Topic: "Rivers", SectionCount: 1, CellsPerSection: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, api.content, raw)

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[1].Content, "Rivers")
	assert.Nil(t, req.ResponseFormat, "first attempt leaves output format to the model")
}

func TestProvider_RetryRequestsStrictJSON(t *testing.T) {
	api := &fakeAPI{content: `{"cells":[]}`}
	p := newProvider(t, api)

	_, err := p.Generate(context.Background(), domain.GenerationRequest{Scope: domain.SectionScope(0), Attempt: 1})
	require.NoError(t, err)

	require.Len(t, api.requests, 1)
	require.NotNil(t, api.requests[0].ResponseFormat)
	assert.Equal(t, goopenai.ChatCompletionResponseFormatTypeJSONObject, api.requests[0].ResponseFormat.Type)
}

func TestProvider_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		want   retry.Class
	}{
		{http.StatusUnauthorized, retry.Terminal},
		{http.StatusBadRequest, retry.Terminal},
		{http.StatusTooManyRequests, retry.Transient},
		{http.StatusInternalServerError, retry.Transient},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			p := newProvider(t, &fakeAPI{status: tt.status})
			_, err := p.Generate(context.Background(), domain.GenerationRequest{Scope: domain.BoardScope()})
			require.Error(t, err)
			assert.Equal(t, tt.want, retry.Classify(err))
		})
	}
}

func TestProvider_EmptyContentIsMalformed(t *testing.T) {
	p := newProvider(t, &fakeAPI{content: "  "})
	_, err := p.Generate(context.Background(), domain.GenerationRequest{Scope: domain.BoardScope()})
	var malformed *domain.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestProvider_Online(t *testing.T) {
	p := newProvider(t, &fakeAPI{})
	assert.NoError(t, p.Online(context.Background()))
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := openai.New("")
	assert.Error(t, err)
}
