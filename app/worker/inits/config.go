package inits

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"io/fs"
	"os"
	"stix-ui/app/worker/config"
	"strings"
	"time"
)

func Config() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg config.Config
	{
		mode, exist := os.LookupEnv("MODE")
		cfg.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if serverEp, exist := os.LookupEnv("SERVER_ENDPOINT"); !exist {
		return nil, fmt.Errorf("SERVER_ENDPOINT environment variable not set")
	} else {
		cfg.ServerEndpoint = serverEp
	}

	if apiToken, exist := os.LookupEnv("API_TOKEN"); !exist {
		return nil, fmt.Errorf("API_TOKEN environment variable not set")
	} else {
		cfg.APIToken = apiToken
	}

	if heartbeatIntervalStr, exist := os.LookupEnv("HEARTBEAT_INTERVAL"); !exist {
		cfg.HeartbeatInterval = 1 * time.Minute // once a minute by default
	} else if interval, err := time.ParseDuration(heartbeatIntervalStr); err != nil || interval <= 0 {
		return nil, fmt.Errorf("HEARTBEAT_INTERVAL should be a positive duration")
	} else {
		cfg.HeartbeatInterval = interval
	}

	if bundlePath, exist := os.LookupEnv("BUNDLE_PATH"); !exist {
		return nil, fmt.Errorf("BUNDLE_PATH environment variable not set")
	} else {
		cfg.BundlePath = bundlePath
	}

	return &cfg, nil
}
