package ai

import (
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.LLMConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates summarization backend configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateLLM validates a configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(settings domain.DistillSettings) error {
	return ValidateLLMConfig(settings)
}
