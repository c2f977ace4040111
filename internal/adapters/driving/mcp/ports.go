package mcp

import (
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Knowledge answers questions and lists the knowledge base.
	Knowledge driving.KnowledgeService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	return nil
}
