package searchtool

import (
	"context"
	"strconv"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Ripgrep implements the interface.
var _ driven.SearchTool = (*Ripgrep)(nil)

// Ripgrep searches with rg. It honours the configured include and exclude globs.
type Ripgrep struct {
	cmd command
}

// NewRipgrep creates a ripgrep tool for the given workspace.
func NewRipgrep(workspace string, opts ...Option) *Ripgrep {
	return &Ripgrep{cmd: newCommand("rg", workspace, opts...)}
}

// Name returns the tool name.
func (r *Ripgrep) Name() string {
	return "ripgrep"
}

// Available reports whether rg can be run.
func (r *Ripgrep) Available(ctx context.Context) bool {
	return r.cmd.available(ctx)
}

// Search runs rg over one root.
func (r *Ripgrep) Search(ctx context.Context, req driven.SearchRequest) ([]string, error) {
	return r.cmd.exec(ctx, req.Workspace, req.Root, ripgrepArgs(req))
}

func ripgrepArgs(req driven.SearchRequest) []string {
	args := []string{
		"--ignore-case",
		"--line-number",
		"--with-filename",
		"--no-heading",
		"--color=never",
	}
	for _, glob := range req.Include {
		args = append(args, "--glob", glob)
	}
	for _, glob := range req.Exclude {
		args = append(args, "--glob", "!"+glob)
	}
	if req.MaxCount > 0 {
		args = append(args, "--max-count", strconv.Itoa(req.MaxCount))
	}
	// -e keeps a pattern that starts with a dash from being read as a flag.
	return append(args, "-e", req.Pattern)
}
