package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// Ensure Distiller accepts custom prompts.
var _ driven.PromptStoreAware = (*Distiller)(nil)

// Rendering and cache key limits.
const (
	fallbackChunks     = 5
	fallbackRunes      = 500
	cacheKeyRunes      = 100
	chunkSeparator     = "\n\n---\n\n"
	fallbackBanner     = "*[Summarizer unavailable - showing raw search results]*\n"
	distillTemperature = 0.0
)

// defaultDistillPrompt is the fallback frame when no PromptStore is configured.
// Placeholders: query, instructions, context, token budget.
const defaultDistillPrompt = `You are a knowledge base assistant for a software development project.
Extract relevant information to answer the query based on the provided context.

Query: %s

%s

Context from knowledge base:
%s

Provide a helpful response in up to %d tokens.
If the context doesn't contain relevant information, say so clearly.
Always include source file references when citing specific information.`

const defaultCodeExampleInstructions = `Instructions for code examples:
- Include COMPLETE, working code snippets that can be used directly
- Show the full function or section, not just fragments
- Include necessary imports or dependencies
- Add brief comments explaining key parts
- Reference the source file paths`

const defaultComplexInstructions = `Instructions for detailed explanations:
- Provide comprehensive coverage of the topic
- Explain the reasoning and context
- Include relevant code examples where helpful
- Describe any gotchas or important considerations
- Reference source files for further reading`

const defaultSimpleInstructions = `Instructions for quick answers:
- Be concise and direct
- Focus on the most important information
- Include specific details (file paths, function names, values)
- Highlight any critical warnings or gotchas`

// Distiller turns ranked chunks into an answer through the summarization
// backend. Responses are cached; any backend failure degrades to a raw
// rendering of the best chunks instead of an error.
type Distiller struct {
	llm         driven.LLMService
	cache       driven.ResponseCache
	settings    domain.DistillSettings
	promptStore driven.PromptStore
}

// NewDistiller creates a distiller. llm and cache may be nil: without an
// LLM every answer is the fallback rendering, without a cache nothing is
// remembered between calls.
func NewDistiller(llm driven.LLMService, cache driven.ResponseCache, settings domain.DistillSettings) *Distiller {
	return &Distiller{
		llm:      llm,
		cache:    cache,
		settings: settings,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (d *Distiller) SetPromptStore(store driven.PromptStore) {
	d.promptStore = store
}

// Distill answers query from ranked chunks.
func (d *Distiller) Distill(ctx context.Context, query string, ranked []domain.RankedChunk) domain.DistillationResult {
	logger.Section("Distillation")

	if len(ranked) == 0 {
		return domain.DistillationResult{
			Content: domain.MsgNoRelevantInformation,
			Intent:  domain.IntentSimple,
		}
	}

	intent := domain.ClassifyQuery(query)
	budget := d.settings.TokenBudget(intent)
	logger.Debug("Intent: %s, token budget: %d", intent, budget)

	result := domain.DistillationResult{Intent: intent, TokenBudget: budget}

	key := CacheKey(query, ranked)
	if cached, ok := d.lookup(ctx, key); ok {
		logger.Debug("Cache hit for %s", key)
		result.Content = cached
		result.Cached = true
		return result
	}

	if d.llm == nil {
		return d.fallback(result, ranked, domain.ErrLLMUnavailable)
	}

	prompt := d.BuildPrompt(query, intent, budget, ranked)
	response, err := d.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   budget,
		Temperature: distillTemperature,
	})
	if err != nil {
		logger.Error("Summarization failed: %v", err)
		return d.fallback(result, ranked, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		response = domain.MsgNothingExtracted
	}
	if d.cache != nil {
		if err := d.cache.Put(ctx, key, response); err != nil {
			logger.Warn("Failed to cache response: %v", err)
		}
	}

	result.Content = response
	return result
}

func (d *Distiller) lookup(ctx context.Context, key string) (string, bool) {
	if d.cache == nil {
		return "", false
	}
	response, ok, err := d.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache lookup failed: %v", err)
		return "", false
	}
	return response, ok && response != ""
}

func (d *Distiller) fallback(result domain.DistillationResult, ranked []domain.RankedChunk, cause error) domain.DistillationResult {
	logger.Debug("Falling back to raw chunks: %v", cause)
	result.Content = FormatFallback(ranked)
	result.Degraded = true
	result.Reason = cause.Error()
	return result
}

// BuildPrompt renders the summarization prompt for a query.
func (d *Distiller) BuildPrompt(query string, intent domain.Intent, budget int, ranked []domain.RankedChunk) string {
	frame := d.loadPrompt(driven.PromptDistill, defaultDistillPrompt)
	instructions := d.instructions(intent)
	chunkContext := FormatContext(ranked)

	if !validFrame(frame) {
		logger.Warn("Prompt %q has invalid placeholders, using default", driven.PromptDistill)
		frame = defaultDistillPrompt
	}
	return fmt.Sprintf(frame, query, instructions, chunkContext, budget)
}

// validFrame reports whether a distill frame takes exactly the query,
// instructions, context and budget arguments.
func validFrame(frame string) bool {
	return !strings.Contains(fmt.Sprintf(frame, "", "", "", 0), "%!")
}

func (d *Distiller) instructions(intent domain.Intent) string {
	switch intent {
	case domain.IntentCodeExample:
		return d.loadPrompt(driven.PromptInstructionsCodeExample, defaultCodeExampleInstructions)
	case domain.IntentComplex:
		return d.loadPrompt(driven.PromptInstructionsComplex, defaultComplexInstructions)
	default:
		return d.loadPrompt(driven.PromptInstructionsSimple, defaultSimpleInstructions)
	}
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (d *Distiller) loadPrompt(name, fallback string) string {
	if d.promptStore == nil {
		return fallback
	}
	prompt, err := d.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

// CacheKey identifies a response by the query and a fingerprint of the
// first 100 characters of every chunk, in ranked order.
func CacheKey(query string, ranked []domain.RankedChunk) string {
	h := xxhash.New()
	for _, rc := range ranked {
		_, _ = h.WriteString(prefixRunes(rc.Chunk.Content, cacheKeyRunes))
	}
	return fmt.Sprintf("%016x:%016x", xxhash.Sum64String(query), h.Sum64())
}

// FormatContext renders chunks for the prompt, each with its source index,
// path, header and line range.
func FormatContext(ranked []domain.RankedChunk) string {
	parts := make([]string, len(ranked))
	for i, rc := range ranked {
		c := rc.Chunk
		var b strings.Builder
		fmt.Fprintf(&b, "[Source %d: %s", i+1, c.FilePath)
		if c.Header != "" {
			fmt.Fprintf(&b, " - %s", c.Header)
		}
		fmt.Fprintf(&b, ", lines %d-%d]\n%s", c.StartLine, c.EndLine, c.Content)
		parts[i] = b.String()
	}
	return strings.Join(parts, chunkSeparator)
}

// FormatFallback renders the top chunks without summarization, each
// truncated to 500 characters.
func FormatFallback(ranked []domain.RankedChunk) string {
	if len(ranked) > fallbackChunks {
		ranked = ranked[:fallbackChunks]
	}

	parts := make([]string, 0, len(ranked)+1)
	parts = append(parts, fallbackBanner)
	for i, rc := range ranked {
		c := rc.Chunk
		header := fmt.Sprintf("**Source %d:** `%s`", i+1, c.FilePath)
		if c.Header != "" {
			header += " - " + c.Header
		}

		content := prefixRunes(c.Content, fallbackRunes)
		if len(content) < len(c.Content) {
			content += "..."
		}
		parts = append(parts, header+"\n"+content)
	}
	return strings.Join(parts, chunkSeparator)
}

// FormatChunksForResponse renders every ranked chunk in full with its line
// range and matched keywords. Used when distillation is skipped.
func FormatChunksForResponse(ranked []domain.RankedChunk) string {
	if len(ranked) == 0 {
		return domain.MsgNoRelevantInformation
	}

	parts := make([]string, len(ranked))
	for i, rc := range ranked {
		c := rc.Chunk
		header := fmt.Sprintf("**Source %d:** `%s`", i+1, c.FilePath)
		if c.Header != "" {
			header += " - " + c.Header
		}
		header += fmt.Sprintf(" (lines %d-%d)", c.StartLine, c.EndLine)
		if len(rc.MatchedKeywords) > 0 {
			header += "\n*Matched: " + strings.Join(rc.MatchedKeywords, ", ") + "*"
		}
		parts[i] = header + "\n\n" + c.Content
	}
	return strings.Join(parts, chunkSeparator)
}
