package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppConfig_Defaults(t *testing.T) {
	t.Setenv("RAGWAY_RUNTIME_PATH", "/tmp/ragway-test")

	c, err := ParseAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ragway-test", c.RuntimePath)
	assert.Equal(t, StoreSQLite, c.Store)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 5, c.ContextLimit)
	assert.Equal(t, 2000, c.ContextMaxChars)
	assert.Equal(t, 50, c.HistoryLimit)
	assert.Equal(t, 60*time.Second, c.RequestTimeout)
	assert.False(t, c.IsTelegramSelected())
	assert.Equal(t, "/tmp/ragway-test/ragway.db", c.GetDatabasePath())
	assert.Equal(t, "/tmp/ragway-test/.env", c.GetEnvPath())
}

func TestParseAppConfig_Overrides(t *testing.T) {
	t.Setenv("RAGWAY_RUNTIME_PATH", "/tmp/ragway-test")
	t.Setenv("RAGWAY_STORE", "memory")
	t.Setenv("RAGWAY_CONTEXT_LIMIT", "3")
	t.Setenv("RAGWAY_REQUEST_TIMEOUT", "15s")
	t.Setenv("ENABLE_TELEGRAM", "true")

	c, err := ParseAppConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, c.Store)
	assert.Equal(t, 3, c.ContextLimit)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.True(t, c.IsTelegramSelected())
}

func TestResolveRuntimePath_Relative(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ragway"), resolveRuntimePath(""))
	assert.Equal(t, filepath.Join(home, "custom"), resolveRuntimePath("custom"))
}

func TestProviderDefaults(t *testing.T) {
	t.Setenv("RAGWAY_PROVIDER", "anthropic")
	t.Setenv("RAGWAY_MODEL", "claude-3-haiku")
	t.Setenv("RAGWAY_API_KEY", "ant-key")

	c, err := ParseProviderDefaults()
	require.NoError(t, err)

	assert.Equal(t, core.ProviderConfig{
		Provider:   core.ProviderAnthropic,
		Model:      "claude-3-haiku",
		Credential: "ant-key",
	}, c.ToProviderConfig())
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, LoadEnv(ctx, dir))

	t.Setenv("RAGWAY_MODEL", "")
	os.Unsetenv("RAGWAY_MODEL")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RAGWAY_MODEL=from-dotenv\n"), 0600))
	require.NoError(t, LoadEnv(ctx, dir))
	assert.Equal(t, "from-dotenv", os.Getenv("RAGWAY_MODEL"))
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()

	p, err := LoadProfiles(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Empty(t, p.Names())

	path := filepath.Join(dir, "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[profiles.work]
provider = "openai"
model = "gpt-4o-mini"
api_key = "sk-work"

[profiles.local]
provider = "custom"
model = "mistral"
api_url = "http://localhost:8000/v1/chat/completions"
`), 0600))

	p, err = LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "work"}, p.Names())

	cfg, err := p.Get("local")
	require.NoError(t, err)
	assert.Equal(t, core.ProviderCustom, cfg.Provider)
	assert.Equal(t, "http://localhost:8000/v1/chat/completions", cfg.Endpoint)

	_, err = p.Get("nope")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLoadProfiles_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte("[profiles.work\n"), 0600))

	_, err := LoadProfiles(path)
	assert.Error(t, err)
}

func TestTransportConfigs(t *testing.T) {
	t.Setenv("RAGWAY_POSTGRES_DSN", "postgres://localhost/ragway")
	t.Setenv("RAGWAY_POSTGRES_CONNECT_RETRIES", "2")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_OWNER_ID", "42")

	pg := NewPostgresConfig(context.Background())
	assert.Equal(t, "postgres://localhost/ragway", pg.DSN)
	assert.Equal(t, int32(10), pg.MaxConns)
	assert.Equal(t, 2, pg.ConnectRetries)

	tg := NewTelegramConfig(context.Background())
	assert.Equal(t, int64(42), tg.OwnerID)
	assert.Equal(t, "telegram-", tg.SessionPrefix)
}
