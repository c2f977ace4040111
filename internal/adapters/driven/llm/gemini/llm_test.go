package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

func TestNewLLMService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		svc, err := NewLLMService(context.Background(), Config{APIKey: "  "})
		require.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("applies defaults", func(t *testing.T) {
		svc, err := NewLLMService(context.Background(), Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
		assert.Equal(t, DefaultTimeout, svc.timeout)
		assert.NoError(t, svc.Close())
	})
}

func TestResponseText(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		_, err := responseText(nil)
		assert.Error(t, err)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := responseText(&genai.GenerateContentResponse{})
		assert.Error(t, err)
	})

	t.Run("nil content", func(t *testing.T) {
		_, err := responseText(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		})
		assert.Error(t, err)
	})

	t.Run("joins parts", func(t *testing.T) {
		out, err := responseText(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "foo "}, nil, {Text: "bar"}}},
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, "foo bar", out)
	})
}

func TestLLMService_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"distilled"}]}}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(context.Background(), Config{APIKey: "k", BaseURL: server.URL, Model: "gemini-test"})
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), "question", driven.GenerateOptions{MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "distilled", out)
}

func TestLLMService_Generate_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(context.Background(), Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "question", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini")
}
