package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyles_PlainWhenNotTerminal(t *testing.T) {
	st := newStyles(new(bytes.Buffer))

	assert.False(t, st.enabled)
	assert.Equal(t, "title", st.Title("title"))
	assert.Equal(t, "warn", st.Warn("warn"))
	assert.Equal(t, "OK", st.OK("OK"))
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, isTerminal(f))
}
