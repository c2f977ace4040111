package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptDistill is the frame of the distillation prompt.
	// The template expects, in order: %s query, %s instructions, %s context, %d token budget.
	PromptDistill = "distill"

	// PromptInstructionsSimple asks for a concise, fact-dense answer. No placeholders.
	PromptInstructionsSimple = "instructions_simple"

	// PromptInstructionsCodeExample asks for complete runnable snippets. No placeholders.
	PromptInstructionsCodeExample = "instructions_code_example"

	// PromptInstructionsComplex asks for a comprehensive explanation. No placeholders.
	PromptInstructionsComplex = "instructions_complex"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
