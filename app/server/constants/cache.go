package constants

import "time"

const (
	CacheKeyUserInfo        = "stix:user:info:%d"
	CacheKeyExportBundle    = "stix:export:bundle:%d" // Per heartbeat
	CacheKeyExportHeartbeat = "stix:export:heartbeat"
)

const (
	CacheExpireUserInfo     = 1 * time.Hour
	CacheExpireExportBundle = 12 * time.Hour
	// The heartbeat never expires, losing it only forces mirrors to resync
)
