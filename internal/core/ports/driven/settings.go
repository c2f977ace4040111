package driven

import "github.com/custodia-labs/kbrag/internal/core/domain"

// SettingsSource overlays configuration values onto settings.
// Sources are applied in precedence order: defaults, file, environment, flags.
type SettingsSource interface {
	// Name identifies the source in error messages (e.g. a file path).
	Name() string

	// Apply overwrites the fields of s that this source sets.
	// Fields the source does not mention are left untouched.
	Apply(s *domain.Settings) error
}
