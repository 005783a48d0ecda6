package commands

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/contactbook/internal/config"
)

func TestInit(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := executeCommand(t, "init", "--force=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Created contactbook.yml")
	assert.FileExists(t, config.DefaultPath)

	_, stderr, err := executeCommand(t, "init", "--force=false")
	require.Error(t, err)
	assert.Equal(t, "project already initialized", err.Error())
	assert.Contains(t, stderr, "--force")

	require.NoError(t, os.WriteFile(config.DefaultPath, []byte("stale"), 0644))
	_, _, err = executeCommand(t, "init", "--force")
	require.NoError(t, err)

	content, err := os.ReadFile(config.DefaultPath)
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(content))
}
