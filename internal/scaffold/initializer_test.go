package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/contactbook/internal/config"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		force     bool
		setupFunc func(t *testing.T, dir string)
		wantErr   bool
	}{
		{
			name:      "fresh initialization",
			setupFunc: func(t *testing.T, dir string) {},
		},
		{
			name: "existing file without force fails",
			setupFunc: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte("old content"), 0644))
			},
			wantErr: true,
		},
		{
			name:  "force overwrites existing file",
			force: true,
			setupFunc: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte("old content"), 0644))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setupFunc(t, dir)

			path, err := Initialize(dir, tt.force)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "already exists")

				content, readErr := os.ReadFile(filepath.Join(dir, config.DefaultPath))
				require.NoError(t, readErr)
				assert.Equal(t, "old content", string(content), "existing file must be left alone")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, config.DefaultPath), path)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(content), "sqlite://contactbook.db")
			assert.NotContains(t, string(content), "old content")
		})
	}
}

func TestInitialize_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "project")

	path, err := Initialize(dir, false)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestTemplateLoadsAsDefaults(t *testing.T) {
	for _, key := range []string{
		config.EnvUsername, config.EnvPassword, config.EnvAddr, config.EnvDatabaseURL,
		config.EnvRedisURL, config.EnvInstance, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}

	path, err := Initialize(t.TempDir(), false)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestCheckExisting(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckExisting(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte("x"), 0644))
	assert.Error(t, CheckExisting(dir))
}
