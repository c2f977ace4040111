// Package ai provides factory functions for creating summarization backends.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/llm"
	anthropicllm "github.com/custodia-labs/kbrag/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/kbrag/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateLLMService creates the backend selected by settings.
// Returns nil if distillation is disabled or no API key is set.
// A positive RequestsPerSecond wraps the backend in a rate limiter.
func CreateLLMService(settings domain.DistillSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.ProviderAnthropic, "":
		svc, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.ProviderGemini:
		svc, err = geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerSecond > 0 {
		svc = llm.NewRateLimited(svc, settings.RequestsPerSecond, llm.DefaultBurst)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates a backend and validates connectivity.
// Returns nil without error when nothing is configured.
func CreateAndValidateLLMService(settings domain.DistillSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Check the [distill] section of your settings",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check the [distill] section of your settings",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateLLMConfig creates a backend from settings and pings it.
// Unconfigured settings are valid: answers simply degrade to raw chunks.
func ValidateLLMConfig(settings domain.DistillSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
