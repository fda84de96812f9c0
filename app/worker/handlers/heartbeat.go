package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"stix-ui/app/server/types"
)

var errBusy = errors.New("previous sync still running")

// heartbeat asks the server when STIX data last changed and downloads the bundle when ours is older or missing.
func (a *App) heartbeat(ctx context.Context) error {
	// Only one sync at a time
	if !a.lock.TryLock() {
		// The previous round is still working, skip this one
		a.l.Debug("skipping heartbeat, previous one still running")
		return errBusy
	}
	defer a.lock.Unlock()

	var hb types.Heartbeat
	if err := a.getJSON(ctx, "/api/export/heartbeat", &hb); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}

	if _, err := os.Stat(a.cfg.BundlePath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat bundle: %w", err)
		}
		// File is gone, fetch again whatever we think we have
	} else if hb.UpdatedAt <= a.lastSync {
		// Up to date
		return nil
	}

	if err := a.updateBundle(ctx); err != nil {
		return fmt.Errorf("update bundle: %w", err)
	}
	a.lastSync = hb.UpdatedAt
	a.l.Info("bundle updated", zap.String("path", a.cfg.BundlePath), zap.Int64("updatedAt", hb.UpdatedAt))

	return nil
}

func (a *App) request(ctx context.Context, path string) (*http.Response, error) {
	// Prepare the request
	reqUrl, err := url.JoinPath(a.cfg.ServerEndpoint, path)
	if err != nil {
		return nil, fmt.Errorf("join request url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("prepare request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	// Send it
	res, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("unexpected status %d from %s", res.StatusCode, path)
	}

	return res, nil
}

func (a *App) getJSON(ctx context.Context, path string, v any) error {
	res, err := a.request(ctx, path)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// updateBundle replaces the bundle file in one rename, so readers never see half a file.
func (a *App) updateBundle(ctx context.Context) error {
	res, err := a.request(ctx, "/api/export/bundle")
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}

	// Make sure it is a bundle before replacing a good file with it
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decode bundle: %w", err)
	} else if head.Type != types.StixTypeBundle {
		return fmt.Errorf("unexpected object type %q", head.Type)
	}

	dir := filepath.Dir(a.cfg.BundlePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".bundle-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, a.cfg.BundlePath); err != nil {
		return fmt.Errorf("rename bundle: %w", err)
	}

	return nil
}
