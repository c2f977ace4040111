package searchtool

import (
	"context"
	"path"
	"strconv"
	"strings"

	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure Grep implements the interface.
var _ driven.SearchTool = (*Grep)(nil)

// grepIncludes is the fixed, smaller extension set searched by the fallback.
var grepIncludes = []string{"*.md", "*.prg", "*.c", "*.py"}

// Grep searches with grep -r. It is the fallback when ripgrep is missing
// and only looks at a fixed set of extensions.
type Grep struct {
	cmd command
}

// NewGrep creates a grep tool for the given workspace.
func NewGrep(workspace string, opts ...Option) *Grep {
	return &Grep{cmd: newCommand("grep", workspace, opts...)}
}

// Name returns the tool name.
func (g *Grep) Name() string {
	return "grep"
}

// Available reports whether grep can be run.
func (g *Grep) Available(ctx context.Context) bool {
	return g.cmd.available(ctx)
}

// Search runs grep over one root. Include globs from the request are
// ignored in favour of the fixed fallback set.
func (g *Grep) Search(ctx context.Context, req driven.SearchRequest) ([]string, error) {
	return g.cmd.exec(ctx, req.Workspace, req.Root, grepArgs(req))
}

func grepArgs(req driven.SearchRequest) []string {
	args := []string{"-r", "-i", "-n", "-H", "-E"}
	for _, glob := range grepIncludes {
		args = append(args, "--include="+glob)
	}
	for _, glob := range req.Exclude {
		// Globs with an extension exclude files; bare names exclude directories.
		if strings.Contains(glob, "*") || (path.Ext(glob) != "" && !strings.HasPrefix(glob, ".")) {
			args = append(args, "--exclude="+glob)
		} else {
			args = append(args, "--exclude-dir="+glob)
		}
	}
	if req.MaxCount > 0 {
		args = append(args, "-m", strconv.Itoa(req.MaxCount))
	}
	return append(args, "-e", req.Pattern)
}
