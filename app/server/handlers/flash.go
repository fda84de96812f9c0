package handlers

import (
	"encoding/base64"
	"encoding/json"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"stix-ui/app/server/constants"
)

const contextKeyFlashes = "flashes"

// flash queues a message for the next rendered page, which may be this request's or the one after a redirect.
func (a *App) flash(c echo.Context, message string) {
	messages := append(a.pendingFlashes(c), message)
	c.Set(contextKeyFlashes, messages)

	value, err := json.Marshal(messages)
	if err != nil {
		a.l.Error("failed to marshal flashes", zap.Strings("messages", messages), zap.Error(err))
		return
	}

	c.SetCookie(&http.Cookie{
		Name:     constants.FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(value),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) pendingFlashes(c echo.Context) []string {
	if messages, ok := c.Get(contextKeyFlashes).([]string); ok {
		return messages
	}

	var messages []string
	if cookie, err := c.Cookie(constants.FlashCookieName); err == nil && cookie.Value != "" {
		if raw, err := base64.RawURLEncoding.DecodeString(cookie.Value); err != nil {
			a.l.Debug("dropping undecodable flash cookie", zap.Error(err))
		} else if err = json.Unmarshal(raw, &messages); err != nil {
			a.l.Debug("dropping malformed flash cookie", zap.Error(err))
		}
	}

	c.Set(contextKeyFlashes, messages)
	return messages
}

// takeFlashes returns the queued messages and forgets them.
func (a *App) takeFlashes(c echo.Context) []string {
	messages := a.pendingFlashes(c)
	c.Set(contextKeyFlashes, []string{})

	if _, err := c.Cookie(constants.FlashCookieName); err == nil || len(messages) > 0 {
		c.SetCookie(&http.Cookie{
			Name:     constants.FlashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return messages
}
