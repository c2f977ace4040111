// Package anthropic provides the summarization backend over the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-haiku-20241022"
	DefaultTimeout   = 60 * time.Second
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-haiku-20241022).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// LLMService generates text through the Anthropic API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature *float64          `json:"temperature,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate sends prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := opts.Temperature

	reqBody := messagesRequest{
		Model:       s.model,
		Messages:    []messagesMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("decode response: %w", err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("anthropic: no response content returned")
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	return result.String(), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key against the /v1/models endpoint without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("anthropic: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func (s *LLMService) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}
