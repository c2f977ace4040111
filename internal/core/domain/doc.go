// Package domain defines the core business entities for kbrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchResult: One matching line reported by a text search tool
//   - Chunk: A contiguous, structurally meaningful line range of one file
//   - RankedChunk: A chunk scored against the query keywords
//   - DistillationResult: The final answer text and how it was produced
//   - Settings: The immutable configuration the core reads
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
