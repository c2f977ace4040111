// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - SettingsFile: TOML settings (kbrag.toml in the workspace or ~/.kbrag/config.toml)
//   - PromptStore: user-editable distillation prompts in ~/.kbrag/prompts
package file
