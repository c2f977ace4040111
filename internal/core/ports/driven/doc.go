// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// At least one must be available for the application to function:
//
//   - SearchTool: Runs a line-oriented text search (ripgrep, grep)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Summarization backend. Without it, answers are raw chunk listings.
//   - ResponseCache: Distilled answer cache. Without it, every question calls the LLM.
//   - PromptStore: User-editable prompt instructions. Without it, built-in defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
