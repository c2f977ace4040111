package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kbrag/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// ServerName is announced to clients during initialisation.
const ServerName = "kbrag"

// Server is the MCP server for kbrag.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    ServerName,
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("Serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over streamable HTTP on addr.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	logger.Info("Serving MCP over HTTP on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
