// Package mcp provides an MCP (Model Context Protocol) server adapter for kbrag.
// It lets coding agents query the workspace knowledge base while they work.
package mcp

import "errors"

// ErrMissingKnowledgeService is returned when the knowledge service is not provided.
var ErrMissingKnowledgeService = errors.New("mcp: knowledge service is required")
