package handlers

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"stix-ui/app/server/constants"
	"time"
)

const msgNameInUse = "Name is already in use!"

// stixMessage builds "The <entity> has been <verb> successfully!".
func stixMessage(entity string, verb string) string {
	return fmt.Sprintf("The %s has been %s successfully!", entity, verb)
}

// bumpHeartbeat moves the heartbeat to ARGV[1], or one past its current value when
// that is not later. Returns the previous and the new value.
var bumpHeartbeat = redis.NewScript(`
local prev = tonumber(redis.call("GET", KEYS[1]) or "0")
local now = tonumber(ARGV[1])
if now <= prev then
	now = prev + 1
end
redis.call("SET", KEYS[1], now)
return {prev, now}
`)

// stixChanged moves the heartbeat forward and drops the bundle cached for the old one.
func (a *App) stixChanged(ctx context.Context) {
	values, err := bumpHeartbeat.Run(ctx, a.rdb, []string{constants.CacheKeyExportHeartbeat}, time.Now().UnixMilli()).Int64Slice()
	if err != nil {
		a.l.Error("failed to update heartbeat", zap.Error(err))
		return
	}

	if err := a.rdb.Del(ctx, fmt.Sprintf(constants.CacheKeyExportBundle, values[0])).Err(); err != nil {
		a.l.Error("failed to drop cached bundle", zap.Error(err))
	}
}
