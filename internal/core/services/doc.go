// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The question-answering pipeline runs in this order:
//
//   - ExtractKeywords: query text to search keywords
//   - Searcher: keywords to matched lines, through a SearchTool
//   - Chunker: matched files to structural chunks
//   - Ranker: chunks scored, deduplicated and cut to the top N
//   - Distiller: ranked chunks to an answer, cached, through an LLMService
//
// KnowledgeService ties the stages together. Services are pure Go with
// no CGO; every I/O concern goes through a driven port.
package services
