package domain

import "fmt"

// Chunk is a contiguous line range of one file, used as the retrieval unit.
// Content is exactly the joined source lines StartLine..EndLine (inclusive).
type Chunk struct {
	// FilePath is the file the chunk was cut from.
	FilePath string

	// StartLine is the first line of the chunk (1-indexed).
	StartLine int

	// EndLine is the last line of the chunk (1-indexed, inclusive).
	EndLine int

	// Content is the text of the chunk.
	Content string

	// Header is the section heading or "function <name>" label, if any.
	Header string
}

// LineCount returns the number of lines in the chunk.
func (c Chunk) LineCount() int {
	return c.EndLine - c.StartLine + 1
}

// Contains reports whether the given 1-indexed line falls inside the chunk.
func (c Chunk) Contains(line int) bool {
	return line >= c.StartLine && line <= c.EndLine
}

// String returns path:start-end with the header in parentheses when present.
func (c Chunk) String() string {
	if c.Header != "" {
		return fmt.Sprintf("%s:%d-%d (%s)", c.FilePath, c.StartLine, c.EndLine, c.Header)
	}
	return fmt.Sprintf("%s:%d-%d", c.FilePath, c.StartLine, c.EndLine)
}

// RankedChunk is a chunk with its relevance score for one query.
type RankedChunk struct {
	// Chunk is the scored chunk.
	Chunk Chunk

	// Score is the relevance score. Ranked output only contains scores above zero.
	Score float64

	// MatchedKeywords lists the query keywords found in the chunk, in query order.
	MatchedKeywords []string
}

// String returns the chunk description followed by its score.
func (r RankedChunk) String() string {
	return fmt.Sprintf("%s (score: %.3f)", r.Chunk, r.Score)
}
