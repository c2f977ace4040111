package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(cacheCmd.Commands()))
	for _, c := range cacheCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "clear")
	assert.Contains(t, names, "stats")
}

func TestCacheClearCmd_ClearsCache(t *testing.T) {
	ta := setupTestApp(t)

	out, err := executeCommand(t, "cache", "clear")

	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 3 cached answers.")
	assert.Equal(t, 1, ta.cache.clearCount())
}

func TestCacheClearCmd_Singular(t *testing.T) {
	ta := setupTestApp(t)
	ta.cache.entries = 1

	out, err := executeCommand(t, "cache", "clear")

	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 cached answer.")
}

func TestCacheClearCmd_Error(t *testing.T) {
	ta := setupTestApp(t)
	ta.cache.err = errors.New("disk full")

	_, err := executeCommand(t, "cache", "clear")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear cache")
}

func TestCacheClearCmd_NoCache(t *testing.T) {
	ta := setupTestApp(t)
	ta.app.Cache = nil

	_, err := executeCommand(t, "cache", "clear")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "response cache not configured")
}

func TestCacheStatsCmd(t *testing.T) {
	setupTestApp(t)

	out, err := executeCommand(t, "cache", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Backend: memory")
	assert.Contains(t, out, "TTL: 1h0m0s")
	assert.Contains(t, out, "Entries: 3")
}
