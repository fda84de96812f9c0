package inits

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestConfig(t *testing.T) {
	unsetenv(t, "MODE")
	unsetenv(t, "LISTEN")
	unsetenv(t, "COOKIE_SECURE")
	t.Setenv("DB_CONN", "host=localhost dbname=stix")
	t.Setenv("REDIS_CONN", "redis://localhost:6379/0")
	t.Setenv("SIGNATURE_SECRET_KEY", "secret")

	cfg, err := Config()
	require.NoError(t, err)
	assert.False(t, cfg.System.IsProd)
	assert.Equal(t, ":1323", cfg.System.Listen)
	assert.Equal(t, "host=localhost dbname=stix", cfg.System.DBConnectionString)
	assert.Equal(t, "redis://localhost:6379/0", cfg.System.RedisConnectionString)
	assert.Equal(t, "secret", cfg.Security.SignatureSecretKey)
	assert.False(t, cfg.Security.CookieSecure)

	t.Setenv("MODE", "prod")
	t.Setenv("LISTEN", ":8080")
	cfg, err = Config()
	require.NoError(t, err)
	assert.True(t, cfg.System.IsProd)
	assert.Equal(t, ":8080", cfg.System.Listen)
	assert.True(t, cfg.Security.CookieSecure)

	t.Setenv("COOKIE_SECURE", "false")
	cfg, err = Config()
	require.NoError(t, err)
	assert.False(t, cfg.Security.CookieSecure)
}

func TestConfigRequiresSecrets(t *testing.T) {
	t.Setenv("DB_CONN", "host=localhost")
	t.Setenv("REDIS_CONN", "redis://localhost:6379/0")
	unsetenv(t, "SIGNATURE_SECRET_KEY")

	_, err := Config()
	assert.ErrorContains(t, err, "SIGNATURE_SECRET_KEY")
}
