package driven

import "context"

// SearchTool runs an external line-oriented text search over one root.
// Tools are tried in order; the first available one serves each root.
type SearchTool interface {
	// Name identifies the tool in logs (e.g. "ripgrep").
	Name() string

	// Available reports whether the tool can be invoked on this host.
	Available(ctx context.Context) bool

	// Search runs the tool over root and returns the raw output lines.
	// A missing binary is reported as domain.ErrToolNotFound.
	// A timeout is reported as context.DeadlineExceeded.
	Search(ctx context.Context, req SearchRequest) ([]string, error)
}

// SearchRequest describes one tool invocation.
type SearchRequest struct {
	// Pattern is an alternation regular expression of escaped keywords.
	Pattern string

	// Root is the file or directory to search.
	Root string

	// Workspace is the working directory for the tool.
	Workspace string

	// Include are file globs to search.
	Include []string

	// Exclude are file and directory globs to skip.
	Exclude []string

	// MaxCount caps the number of matches reported.
	MaxCount int
}
