package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or cache backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoKnowledgeBase indicates neither the root rules file nor the
	// documentation folder exists in the workspace.
	ErrNoKnowledgeBase = errors.New("no knowledge base found")

	// ErrSearchToolUnavailable indicates no text search tool (ripgrep or grep)
	// is installed. No results are possible without one.
	ErrSearchToolUnavailable = errors.New("neither ripgrep nor grep is available")

	// ErrToolNotFound indicates a search tool binary disappeared between the
	// availability check and the invocation.
	ErrToolNotFound = errors.New("search tool not found")

	// ErrLLMUnavailable indicates the summarization backend is not configured.
	// Distillation falls back to raw chunk rendering.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
