package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// Tool names exposed to clients.
const (
	ToolAsk  = "ask_knowledge_base"
	ToolList = "list_knowledge_base"
)

const askDescription = `Search the project knowledge base for relevant information.

Use this for questions about codebase patterns, conventions, gotchas,
examples, and documentation. The knowledge base is the root rules file
(CLAUDE.md by default) plus the documentation folder (.claude/ by default).`

const listDescription = `List the structure of the project knowledge base.

Returns the available documentation files with their sizes.`

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query   string `json:"query" jsonschema:"natural language question about the codebase or development patterns"`
	Context string `json:"context,omitempty" jsonschema:"optional current file or topic for additional context"`
	Raw     bool   `json:"raw,omitempty" jsonschema:"return every matching excerpt verbatim instead of a distilled answer"`
}

// AskOutput is the structured result of the ask tool.
type AskOutput struct {
	Answer      string   `json:"answer"`
	Intent      string   `json:"intent,omitempty"`
	TokenBudget int      `json:"token_budget,omitempty"`
	Cached      bool     `json:"cached"`
	Degraded    bool     `json:"degraded"`
	Partial     bool     `json:"partial"`
	Sources     []string `json:"sources,omitempty"`
}

// ListInput is the (empty) input schema for the list tool.
type ListInput struct{}

// ListOutput is the structured result of the list tool.
type ListOutput struct {
	Structure string `json:"structure"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolAsk,
		Description: askDescription,
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolList,
		Description: listDescription,
	}, s.handleList)
}

// handleAsk answers a question. The answer text is the tool content;
// the metadata is carried in the structured output.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Knowledge.Ask(ctx, input.Query, domain.AskOptions{
		Context: input.Context,
		Raw:     input.Raw,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:      answer.Text,
		Intent:      string(answer.Intent),
		TokenBudget: answer.TokenBudget,
		Cached:      answer.Cached,
		Degraded:    answer.Degraded,
		Partial:     answer.Partial,
		Sources:     answer.Sources,
	}
	return textResult(answer.Text), output, nil
}

// handleList returns the knowledge base structure listing.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	structure, err := s.ports.Knowledge.ListStructure(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}
	return textResult(structure), ListOutput{Structure: structure}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
