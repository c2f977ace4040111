package searchtool

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// recordedRun captures one invocation of a fake runner.
type recordedRun struct {
	dir  string
	name string
	args []string
}

func fakeRunner(out string, err error, calls *[]recordedRun) RunFunc {
	return func(_ context.Context, dir, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedRun{dir: dir, name: name, args: args})
		return []byte(out), err
	}
}

func foundAll(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func foundNone(string) (string, error) {
	return "", exec.ErrNotFound
}

func TestRipgrep_Args(t *testing.T) {
	var calls []recordedRun
	rg := NewRipgrep("/ws", WithRunner(fakeRunner("", nil, &calls)), WithGOOS("linux"))

	_, err := rg.Search(context.Background(), driven.SearchRequest{
		Pattern:   "alpha|beta",
		Root:      "/ws/.claude",
		Workspace: "/ws",
		Include:   []string{"*.md", "*.py"},
		Exclude:   []string{".git"},
		MaxCount:  7,
	})
	require.NoError(t, err)
	require.Len(t, calls, 1)

	call := calls[0]
	assert.Equal(t, "rg", call.name)
	assert.Equal(t, "/ws", call.dir)
	assert.Equal(t, []string{
		"--ignore-case", "--line-number", "--with-filename", "--no-heading", "--color=never",
		"--glob", "*.md", "--glob", "*.py",
		"--glob", "!.git",
		"--max-count", "7",
		"-e", "alpha|beta",
		"/ws/.claude",
	}, call.args)
	assert.Equal(t, "ripgrep", rg.Name())
}

func TestGrep_Args(t *testing.T) {
	var calls []recordedRun
	g := NewGrep("/ws", WithRunner(fakeRunner("", nil, &calls)), WithGOOS("linux"))

	_, err := g.Search(context.Background(), driven.SearchRequest{
		Pattern:   "alpha",
		Root:      "/ws/CLAUDE.md",
		Workspace: "/ws",
		Include:   []string{"*.ts"},
		Exclude:   []string{"*.pyc", "node_modules", ".git"},
		MaxCount:  3,
	})
	require.NoError(t, err)
	require.Len(t, calls, 1)

	assert.Equal(t, "grep", calls[0].name)
	assert.Equal(t, []string{
		"-r", "-i", "-n", "-H", "-E",
		"--include=*.md", "--include=*.prg", "--include=*.c", "--include=*.py",
		"--exclude=*.pyc", "--exclude-dir=node_modules", "--exclude-dir=.git",
		"-m", "3",
		"-e", "alpha",
		"/ws/CLAUDE.md",
	}, calls[0].args)
	assert.Equal(t, "grep", g.Name())
}

func TestTool_OutputLines(t *testing.T) {
	var calls []recordedRun
	out := "/ws/CLAUDE.md:3:alpha rule\r\n/ws/CLAUDE.md:9:beta rule\n"
	rg := NewRipgrep("/ws", WithRunner(fakeRunner(out, nil, &calls)), WithGOOS("linux"))

	lines, err := rg.Search(context.Background(), driven.SearchRequest{Pattern: "alpha", Root: "/ws/CLAUDE.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws/CLAUDE.md:3:alpha rule", "/ws/CLAUDE.md:9:beta rule"}, lines)
}

func TestTool_ExitCodes(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	run := func(script string) RunFunc {
		return func(ctx context.Context, dir, _ string, _ ...string) ([]byte, error) {
			return runCommand(ctx, dir, sh, "-c", script)
		}
	}

	t.Run("exit 1 is no match", func(t *testing.T) {
		rg := NewRipgrep("", WithRunner(run("exit 1")), WithGOOS("linux"))
		lines, err := rg.Search(context.Background(), driven.SearchRequest{Pattern: "x", Root: "."})
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("exit 2 keeps partial output", func(t *testing.T) {
		rg := NewRipgrep("", WithRunner(run("echo 'a.md:1:hit'; echo oops >&2; exit 2")), WithGOOS("linux"))
		lines, err := rg.Search(context.Background(), driven.SearchRequest{Pattern: "x", Root: "."})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.md:1:hit"}, lines)
	})
}

func TestTool_NotFound(t *testing.T) {
	var calls []recordedRun
	g := NewGrep("/ws", WithRunner(fakeRunner("", exec.ErrNotFound, &calls)), WithGOOS("linux"))

	_, err := g.Search(context.Background(), driven.SearchRequest{Pattern: "x", Root: "/ws"})
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestTool_OtherRunError(t *testing.T) {
	var calls []recordedRun
	boom := errors.New("boom")
	g := NewGrep("/ws", WithRunner(fakeRunner("", boom, &calls)), WithGOOS("linux"))

	_, err := g.Search(context.Background(), driven.SearchRequest{Pattern: "x", Root: "/ws"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrToolNotFound)
}

func TestTool_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := func(ctx context.Context, _, _ string, _ ...string) ([]byte, error) {
		return nil, errors.New("signal: killed")
	}
	rg := NewRipgrep("/ws", WithRunner(run), WithGOOS("linux"))

	_, err := rg.Search(ctx, driven.SearchRequest{Pattern: "x", Root: "/ws"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTool_Available(t *testing.T) {
	var calls []recordedRun

	t.Run("binary on path", func(t *testing.T) {
		rg := NewRipgrep("/ws", WithLookPath(foundAll), WithRunner(fakeRunner("", nil, &calls)), WithGOOS("linux"))
		assert.True(t, rg.Available(context.Background()))
	})

	t.Run("binary missing", func(t *testing.T) {
		rg := NewRipgrep("/ws", WithLookPath(foundNone), WithGOOS("linux"))
		assert.False(t, rg.Available(context.Background()))
	})
}

func TestTool_WSLBridge(t *testing.T) {
	workspace := `\\wsl.localhost\Ubuntu\home\dev\proj`

	t.Run("probe runs inside wsl", func(t *testing.T) {
		var calls []recordedRun
		rg := NewRipgrep(workspace,
			WithLookPath(foundAll),
			WithRunner(fakeRunner("ripgrep 14.0.0", nil, &calls)),
			WithGOOS("windows"),
		)
		assert.True(t, rg.Available(context.Background()))
		require.Len(t, calls, 1)
		assert.Equal(t, "wsl.exe", calls[0].name)
		assert.Equal(t, []string{"rg", "--version"}, calls[0].args)
	})

	t.Run("probe fails when tool missing in distro", func(t *testing.T) {
		var calls []recordedRun
		g := NewGrep(workspace,
			WithLookPath(foundAll),
			WithRunner(fakeRunner("", errors.New("exit status 127"), &calls)),
			WithGOOS("windows"),
		)
		assert.False(t, g.Available(context.Background()))
	})

	t.Run("search uses normalized root and no working dir", func(t *testing.T) {
		var calls []recordedRun
		rg := NewRipgrep(workspace, WithRunner(fakeRunner("", nil, &calls)), WithGOOS("windows"))

		_, err := rg.Search(context.Background(), driven.SearchRequest{
			Pattern:   "x",
			Root:      workspace + `\CLAUDE.md`,
			Workspace: workspace,
		})
		require.NoError(t, err)
		require.Len(t, calls, 1)
		assert.Equal(t, "wsl.exe", calls[0].name)
		assert.Empty(t, calls[0].dir)
		assert.Equal(t, "rg", calls[0].args[0])
		assert.Equal(t, "/home/dev/proj/CLAUDE.md", calls[0].args[len(calls[0].args)-1])
	})

	t.Run("output paths map back to the share", func(t *testing.T) {
		var calls []recordedRun
		out := "/home/dev/proj/.claude/guide.md:4:hit: yes\n"
		rg := NewRipgrep(workspace, WithRunner(fakeRunner(out, nil, &calls)), WithGOOS("windows"))

		lines, err := rg.Search(context.Background(), driven.SearchRequest{Pattern: "hit", Root: workspace})
		require.NoError(t, err)
		assert.Equal(t, []string{workspace + `\.claude\guide.md:4:hit: yes`}, lines)
	})

	t.Run("unc path on linux is not bridged", func(t *testing.T) {
		var calls []recordedRun
		rg := NewRipgrep(workspace, WithRunner(fakeRunner("", nil, &calls)), WithGOOS("linux"))
		_, err := rg.Search(context.Background(), driven.SearchRequest{Pattern: "x", Root: "/tmp"})
		require.NoError(t, err)
		assert.Equal(t, "rg", calls[0].name)
	})
}

func TestRipgrep_Real(t *testing.T) {
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("rg not installed")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")
	require.NoError(t, os.WriteFile(path, []byte("intro\nUse FastAPI here\n"), 0o600))

	rg := NewRipgrep(dir)
	require.True(t, rg.Available(context.Background()))

	lines, err := rg.Search(context.Background(), driven.SearchRequest{
		Pattern:   "fastapi",
		Root:      path,
		Workspace: dir,
		MaxCount:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{path + ":2:Use FastAPI here"}, lines)
}

func TestGrep_Real(t *testing.T) {
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not installed")
	}

	dir := t.TempDir()
	docs := filepath.Join(dir, ".claude")
	require.NoError(t, os.Mkdir(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "guide.md"), []byte("alpha\nbeta\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "skip.txt"), []byte("beta\n"), 0o600))

	g := NewGrep(dir)
	lines, err := g.Search(context.Background(), driven.SearchRequest{
		Pattern:   "BETA",
		Root:      docs,
		Workspace: dir,
		MaxCount:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(docs, "guide.md") + ":2:beta"}, lines)
}
