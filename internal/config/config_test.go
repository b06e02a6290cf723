package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "chat_agent", cfg.Operator.Role)
	assert.True(t, cfg.Operator.CanManageLayout)
	assert.Equal(t, "console-layout", cfg.Storage.Key)
	assert.Equal(t, "neutral", cfg.Customer.Personality)
	assert.NotEmpty(t, cfg.Endpoints.Search)
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default().Operator.Role, cfg.Operator.Role)
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default().Storage.Key, cfg.Storage.Key)
	})

	t.Run("file overlays defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "agentdesk.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
operator:
  role: supervisor
  department: Premier Banking
customer:
  personality: impatient
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "supervisor", cfg.Operator.Role)
		assert.Equal(t, "Premier Banking", cfg.Operator.Department)
		assert.Equal(t, "impatient", cfg.Customer.Personality)
		// Untouched sections keep their defaults.
		assert.Equal(t, "console-layout", cfg.Storage.Key)
	})

	t.Run("malformed yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("operator: ["), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
