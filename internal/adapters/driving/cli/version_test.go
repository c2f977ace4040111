package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Short(t *testing.T) {
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	SetVersion("test-version-1.0.0")
	defer func() { version = originalVersion }()

	out, err := executeCommand(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "kbrag version test-version-1.0.0")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	originalVersion := version
	version = "dev"
	defer func() { version = originalVersion }()

	out, err := executeCommand(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "kbrag version dev")
}

func TestVersionCmd_SkipsBootstrap(t *testing.T) {
	old := app
	app = nil
	defer func() {
		app = old
		flagPath = ""
	}()

	_, err := executeCommand(t, "version", "--path", "/does/not/exist")

	require.NoError(t, err)
	assert.Nil(t, app)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()

	version = "1.2.3"
	SetVersion("")
	assert.Equal(t, "1.2.3", version)
}
