package handlers

import (
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"stix-ui/app/server/types"
	"strconv"
	"strings"
)

func (a *App) er(c echo.Context, statusCode int) error {
	return echo.NewHTTPError(statusCode)
}

// HTTPErrorHandler renders error pages for the panel and JSON messages for the API.
func (a *App) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	statusCode := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		statusCode = he.Code
		if he.Internal != nil {
			a.l.Debug("request failed", zap.Int("status", statusCode), zap.Error(he.Internal))
		}
	} else {
		a.l.Error("unhandled error", zap.String("URI", c.Request().RequestURI), zap.Error(err))
	}

	switch {
	case c.Request().Method == http.MethodHead:
		err = c.NoContent(statusCode)
	case strings.HasPrefix(c.Request().URL.Path, "/api/"):
		err = c.JSON(statusCode, &types.ErrorMessage{
			Message: http.StatusText(statusCode),
		})
	default:
		page := fmt.Sprintf("errors/%d.html", statusCode)
		if !a.renderer.Has(page) {
			page = "errors/other.html"
		}
		err = a.render(c, statusCode, page, strconv.Itoa(statusCode)+" "+http.StatusText(statusCode), &ErrorView{
			Code: statusCode,
			Text: http.StatusText(statusCode),
		})
	}
	if err != nil {
		a.l.Error("failed to send error response", zap.Int("status", statusCode), zap.Error(err))
	}
}

// parseID reads the :id path parameter. Anything that is not a positive integer cannot match a row.
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return uint(id), nil
}
