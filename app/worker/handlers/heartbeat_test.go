package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stix-ui/app/server/types"
	"stix-ui/app/worker/config"
)

type fakeServer struct {
	updatedAt atomic.Int64
	bundles   atomic.Int32
	bundleID  atomic.Value
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/export/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(&types.Heartbeat{UpdatedAt: f.updatedAt.Load()})
	})
	mux.HandleFunc("/api/export/bundle", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.bundles.Add(1)
		_ = json.NewEncoder(w).Encode(&types.Bundle{
			Type:    types.StixTypeBundle,
			ID:      f.bundleID.Load().(string),
			Objects: []any{},
		})
	})
	return mux
}

func newTestApp(t *testing.T, token string) (*App, *fakeServer) {
	fake := &fakeServer{}
	fake.updatedAt.Store(100)
	fake.bundleID.Store("bundle--1")

	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ServerEndpoint:    srv.URL,
		APIToken:          token,
		HeartbeatInterval: time.Hour,
		BundlePath:        filepath.Join(t.TempDir(), "out", "bundle.json"),
	}
	return NewApp(cfg, zap.NewNop()), fake
}

func readBundle(t *testing.T, path string) types.Bundle {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var bundle types.Bundle
	require.NoError(t, json.Unmarshal(data, &bundle))
	return bundle
}

func TestHeartbeatDownloadsOnlyWhenChanged(t *testing.T) {
	app, fake := newTestApp(t, "secret")
	ctx := context.Background()

	// First run: no file yet
	require.NoError(t, app.heartbeat(ctx))
	assert.EqualValues(t, 1, fake.bundles.Load())
	assert.Equal(t, "bundle--1", readBundle(t, app.cfg.BundlePath).ID)

	// Nothing changed
	require.NoError(t, app.heartbeat(ctx))
	assert.EqualValues(t, 1, fake.bundles.Load())

	// Server reports a newer change
	fake.updatedAt.Store(200)
	fake.bundleID.Store("bundle--2")
	require.NoError(t, app.heartbeat(ctx))
	assert.EqualValues(t, 2, fake.bundles.Load())
	assert.Equal(t, "bundle--2", readBundle(t, app.cfg.BundlePath).ID)

	// File removed behind our back
	require.NoError(t, os.Remove(app.cfg.BundlePath))
	require.NoError(t, app.heartbeat(ctx))
	assert.EqualValues(t, 3, fake.bundles.Load())
	assert.FileExists(t, app.cfg.BundlePath)

	// No temp files left over
	entries, err := os.ReadDir(filepath.Dir(app.cfg.BundlePath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHeartbeatRejectedToken(t *testing.T) {
	app, fake := newTestApp(t, "wrong")

	err := app.heartbeat(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.EqualValues(t, 0, fake.bundles.Load())
	assert.NoFileExists(t, app.cfg.BundlePath)
}

func TestHeartbeatSkipsWhileBusy(t *testing.T) {
	app, fake := newTestApp(t, "secret")

	app.lock.Lock()
	err := app.heartbeat(context.Background())
	app.lock.Unlock()

	assert.ErrorIs(t, err, errBusy)
	assert.EqualValues(t, 0, fake.bundles.Load())
}

func TestStartStop(t *testing.T) {
	app, fake := newTestApp(t, "secret")

	app.Start()
	assert.Eventually(t, func() bool {
		_, err := os.Stat(app.cfg.BundlePath)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	app.Stop()

	assert.GreaterOrEqual(t, fake.bundles.Load(), int32(1))
}
