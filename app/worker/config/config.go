package config

import (
	"time"
)

type Config struct {
	// Basics
	IsProd bool

	// Talking to the server
	ServerEndpoint    string
	APIToken          string
	HeartbeatInterval time.Duration

	// Where the mirrored bundle goes
	BundlePath string
}
