package inits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Setenv("MODE", "production")
	t.Setenv("SERVER_ENDPOINT", "http://panel:1323")
	t.Setenv("API_TOKEN", "token")
	t.Setenv("BUNDLE_PATH", "/data/bundle.json")

	cfg, err := Config()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd)
	assert.Equal(t, "http://panel:1323", cfg.ServerEndpoint)
	assert.Equal(t, "token", cfg.APIToken)
	assert.Equal(t, time.Minute, cfg.HeartbeatInterval)
	assert.Equal(t, "/data/bundle.json", cfg.BundlePath)

	t.Setenv("HEARTBEAT_INTERVAL", "15s")
	cfg, err = Config()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.HeartbeatInterval)

	t.Setenv("HEARTBEAT_INTERVAL", "soon")
	_, err = Config()
	assert.Error(t, err)
}
