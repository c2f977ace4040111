package domain

import "time"

// DistillationResult is the answer produced from ranked chunks.
type DistillationResult struct {
	// Content is the answer text.
	Content string

	// Intent is the classified query intent.
	Intent Intent

	// TokenBudget is the token budget selected for the intent.
	TokenBudget int

	// Cached is true if the content came from the response cache.
	Cached bool

	// Degraded is true if the summarization backend was unavailable or failed
	// and Content is the raw-chunk fallback rendering.
	Degraded bool

	// Reason describes why the result is degraded. Empty otherwise.
	Reason string
}

// CacheEntry is a stored summarization response.
type CacheEntry struct {
	// Response is the cached answer text.
	Response string

	// CreatedAt is when the response was stored.
	CreatedAt time.Time
}

// Expired reports whether the entry is older than ttl at the given time.
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) >= ttl
}

// AskOptions configures a knowledge base question.
type AskOptions struct {
	// Context is optional extra text (current file, topic) appended to the
	// query for keyword extraction.
	Context string

	// Raw skips distillation and returns every ranked chunk verbatim.
	Raw bool
}

// Answer is the caller-facing result of a question.
type Answer struct {
	// Text is the rendered answer.
	Text string

	// Intent is the classified query intent. Empty when no chunks were found.
	Intent Intent

	// TokenBudget is the budget used for distillation.
	TokenBudget int

	// Cached is true if the distilled text came from the cache.
	Cached bool

	// Degraded is true if the fallback rendering was used.
	Degraded bool

	// Partial is true if the search stopped early on a timeout.
	Partial bool

	// Sources lists the distinct files of the ranked chunks, in rank order.
	Sources []string
}

// Fixed user-facing messages.
const (
	// MsgNoRelevantInformation is returned when no ranked chunks exist.
	MsgNoRelevantInformation = "No relevant information found in knowledge base."

	// MsgNothingExtracted replaces an empty summarization response.
	MsgNothingExtracted = "No relevant information extracted from knowledge base."
)
