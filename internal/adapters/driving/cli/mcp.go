package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/kbrag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/kbrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/kbrag/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes two tools, ask_knowledge_base and list_knowledge_base,
and the kbrag://structure resource.

By default, the server communicates over stdio using JSON-RPC and can be
used with any MCP-compatible assistant.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Use --watch to clear the response cache and reload prompts whenever a
knowledge base file or prompt file changes.

Examples:
  # Stdio mode (default)
  kbrag mcp serve --path /path/to/project

  # HTTP mode (for MCP Inspector, remote access)
  kbrag mcp serve --port 8080 --watch

Client configuration:
  {
    "mcpServers": {
      "kbrag": {
        "command": "/path/to/kbrag",
        "args": ["mcp", "serve", "--path", "/path/to/project"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("watch", false, "clear the cache when knowledge base files change")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	watchFiles, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	a, err := requireApp()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Knowledge: a.Knowledge})
	if err != nil {
		return err
	}

	serve := func(ctx context.Context) error {
		if port > 0 {
			addr := fmt.Sprintf(":%d", port)
			fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
			return server.RunHTTP(ctx, addr)
		}
		return server.Run(ctx)
	}

	if !watchFiles {
		return serve(cmd.Context())
	}

	watcher, err := newKnowledgeWatcher(a)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return serve(gctx)
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	return g.Wait()
}

// newKnowledgeWatcher watches the root file, the docs folder and the
// prompt directory. A change clears the response cache and reloads prompts.
func newKnowledgeWatcher(a *App) (*watch.Watcher, error) {
	handler := func(ctx context.Context, paths []string) {
		logger.Info("Knowledge base changed (%d paths), invalidating cache", len(paths))
		for _, p := range paths {
			logger.Debug("Changed: %s", p)
		}
		if a.Cache != nil {
			n, err := a.Cache.Clear(ctx)
			if err != nil {
				logger.Warn("Failed to clear response cache: %v", err)
			} else {
				logger.Debug("Cleared %d cached answers", n)
			}
		}
		if a.Prompts != nil {
			a.Prompts.Reload()
		}
	}

	w, err := watch.New(handler)
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	var roots []string
	if a.Settings.KnowledgeBase.RootFile != "" {
		roots = append(roots, a.Settings.RootFilePath())
	}
	if a.Settings.KnowledgeBase.DocsFolder != "" {
		roots = append(roots, a.Settings.DocsFolderPath())
	}
	if a.PromptDir != "" {
		roots = append(roots, a.PromptDir)
	}
	for _, root := range roots {
		if err := w.Add(root); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	logger.Info("Watching %d knowledge base locations for changes", len(roots))
	return w, nil
}
