// Package searchtool provides driven.SearchTool adapters backed by external
// text search executables: ripgrep as the primary tool and grep as a
// narrower fallback.
package searchtool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// versionTimeout bounds the availability probe.
const versionTimeout = 5 * time.Second

// wslBinary runs commands inside the default WSL distribution.
const wslBinary = "wsl.exe"

// RunFunc executes a command and returns its standard output.
type RunFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// LookPathFunc resolves a binary name to a path.
type LookPathFunc func(name string) (string, error)

// Option configures a tool.
type Option func(*command)

// WithRunner replaces the command runner. Used by tests.
func WithRunner(run RunFunc) Option {
	return func(c *command) {
		c.run = run
	}
}

// WithLookPath replaces the binary lookup. Used by tests.
func WithLookPath(lookPath LookPathFunc) Option {
	return func(c *command) {
		c.lookPath = lookPath
	}
}

// WithGOOS overrides the host operating system. Used by tests.
func WithGOOS(goos string) Option {
	return func(c *command) {
		c.goos = goos
	}
}

// command holds what ripgrep and grep share: binary lookup, the WSL
// bridge for UNC workspaces, execution and output decoding.
type command struct {
	binary    string
	workspace string
	goos      string
	wsl       bool
	run       RunFunc
	lookPath  LookPathFunc
}

func newCommand(binary, workspace string, opts ...Option) command {
	c := command{
		binary:    binary,
		workspace: workspace,
		goos:      runtime.GOOS,
		run:       runCommand,
		lookPath:  exec.LookPath,
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.wsl = c.goos == "windows" && IsUNCPath(workspace)
	return c
}

// available checks the binary can be found, probing through wsl.exe
// when the workspace lives inside a WSL distribution.
func (c command) available(ctx context.Context) bool {
	if !c.wsl {
		_, err := c.lookPath(c.binary)
		return err == nil
	}

	if _, err := c.lookPath(wslBinary); err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	_, err := c.run(ctx, "", wslBinary, c.binary, "--version")
	return err == nil
}

// exec runs the tool with args followed by root and returns output lines.
func (c command) exec(ctx context.Context, workspace, root string, args []string) ([]string, error) {
	name := c.binary
	dir := workspace
	target := root
	if c.wsl {
		// UNC paths cannot be a working directory on Windows.
		name = wslBinary
		args = append([]string{c.binary}, args...)
		dir = ""
		target = NormalizePath(root)
	}
	args = append(args, target)

	logger.Debug("%s: %s %s", c.binary, name, strings.Join(args, " "))

	out, err := c.run(ctx, dir, name, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", c.binary, domain.ErrToolNotFound)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", c.binary, err)
		}
		// Exit 1 means no matches. Higher codes report problems such as
		// unreadable files while still printing the matches it found.
		if exitErr.ExitCode() > 1 {
			logger.Warn("%s exited with code %d: %s",
				c.binary, exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
		}
	}

	lines := splitLines(out)
	if c.wsl {
		for i, line := range lines {
			lines[i] = c.toHostPath(line)
		}
	}
	return lines, nil
}

// toHostPath maps the Linux path at the start of an output line back
// under the UNC workspace so the file can be opened from Windows.
func (c command) toHostPath(line string) string {
	linuxRoot := strings.TrimSuffix(NormalizePath(c.workspace), "/") + "/"
	pathPart, rest, found := strings.Cut(line, ":")
	if !found || !strings.HasPrefix(pathPart, linuxRoot) {
		return line
	}
	rel := strings.TrimPrefix(pathPart, linuxRoot)
	host := strings.TrimSuffix(c.workspace, `\`) + `\` + strings.ReplaceAll(rel, "/", `\`)
	return host + ":" + rest
}

func isNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *fs.PathError
	return errors.As(err, &pathErr) && errors.Is(pathErr.Err, fs.ErrNotExist)
}

func splitLines(out []byte) []string {
	text := strings.TrimSpace(filesystem.Decode(out))
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// runCommand is the default RunFunc.
func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitErr.Stderr = stderr.Bytes()
	}
	return out, err
}
