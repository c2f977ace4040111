package domain

import "fmt"

// SearchResult represents a single line matched by a search tool.
// Results are reported in the order the tool emits them.
type SearchResult struct {
	// FilePath is the path of the file containing the match, as printed by the tool.
	FilePath string

	// LineNumber is the 1-indexed line of the match.
	LineNumber int

	// LineContent is the matched line with surrounding whitespace removed.
	LineContent string

	// MatchedKeyword is the first query keyword found in the line.
	MatchedKeyword string
}

// String returns the result in path:line: content form.
func (r SearchResult) String() string {
	return fmt.Sprintf("%s:%d: %s", r.FilePath, r.LineNumber, r.LineContent)
}

// SearchOutcome is the result of scanning all knowledge base roots.
// A partial outcome is still usable; it only signals that a tool
// invocation timed out and later roots were not scanned.
type SearchOutcome struct {
	// Results holds the matched lines in root order.
	Results []SearchResult

	// Tool is the name of the last search tool that ran.
	Tool string

	// Partial is true if scanning stopped early because of a timeout.
	Partial bool
}
