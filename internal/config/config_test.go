package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultDBName), cfg.DBPath)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.Equal(t, "a", cfg.Keys.Add)
	assert.Equal(t, "tab", cfg.Keys.Focus)
	assert.Equal(t, "C", cfg.Keys.Clear)

	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreate_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
tick = "500ms"

[keys]
quit = "x"

[assistant]
model = "gpt-4o"
timeout = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, "x", cfg.Keys.Quit)
	assert.Equal(t, "j", cfg.Keys.Down)
	assert.Equal(t, "gpt-4o", cfg.Assistant.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Assistant.APIKeyEnv)
	assert.Equal(t, 5*time.Second, cfg.AssistantTimeout())
	assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultDBName), cfg.DBPath)
}

func TestLoadOrCreate_RejectsBadTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`tick = "soon"`), 0o644))

	_, err := LoadOrCreate(path)
	assert.Error(t, err)
}

func TestResolveConfigPath_Env(t *testing.T) {
	t.Setenv(ConfigEnv, "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ResolveConfigPath())
}
