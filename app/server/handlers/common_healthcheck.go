package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
)

// HealthCheck answers 200 while both the database and redis respond.
func (a *App) HealthCheck(c echo.Context) error {
	rctx := c.Request().Context()

	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(rctx)
	}
	if err != nil {
		a.l.Warn("health check: database unreachable", zap.Error(err))
		return c.NoContent(http.StatusServiceUnavailable)
	}

	if err := a.rdb.Ping(rctx).Err(); err != nil {
		a.l.Warn("health check: redis unreachable", zap.Error(err))
		return c.NoContent(http.StatusServiceUnavailable)
	}

	return c.NoContent(http.StatusOK)
}
