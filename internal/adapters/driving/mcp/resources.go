package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for kbrag resources.
	uriScheme = "kbrag://"

	// StructureURI is the resource holding the knowledge base listing.
	StructureURI = uriScheme + "structure"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         StructureURI,
		Name:        "structure",
		Description: "Files that make up the project knowledge base",
		MIMEType:    "text/markdown",
	}, s.handleStructureResource)
}

// handleStructureResource serves the same listing as the list tool.
func (s *Server) handleStructureResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != StructureURI {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	structure, err := s.ports.Knowledge.ListStructure(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge base: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     structure,
		}},
	}, nil
}
