// Package gemini provides the summarization backend over the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel     = "gemini-2.0-flash"
	DefaultTimeout   = 60 * time.Second
	DefaultMaxTokens = 1024
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string

	// Model is the model to use (default: gemini-2.0-flash).
	Model string

	// Timeout bounds each request (default: 60s).
	Timeout time.Duration
}

// LLMService generates text through the genai client.
type LLMService struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	cc := genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, &cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &LLMService{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Generate sends prompt as a single user turn and returns the text of the first candidate.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temp := float32(opts.Temperature)
	cfg := genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(maxTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: no response content returned")
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			result.WriteString(part.Text)
		}
	}
	return result.String(), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the key by fetching the model's metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
