package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStructureResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns listing as markdown", func(t *testing.T) {
		knowledge := &mockKnowledgeService{structure: "# Knowledge Base Structure\n\n- **CLAUDE.md** (root): 12 bytes - Main rules file"}
		server := newTestServer(t, knowledge)

		result, err := server.handleStructureResource(ctx, makeReadResourceRequest(StructureURI))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, StructureURI, result.Contents[0].URI)
		assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "CLAUDE.md")
	})

	t.Run("unknown URI", func(t *testing.T) {
		server := newTestServer(t, &mockKnowledgeService{})
		_, err := server.handleStructureResource(ctx, makeReadResourceRequest("kbrag://other"))
		assert.Error(t, err)
	})

	t.Run("service error", func(t *testing.T) {
		server := newTestServer(t, &mockKnowledgeService{err: assert.AnError})
		_, err := server.handleStructureResource(ctx, makeReadResourceRequest(StructureURI))
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
