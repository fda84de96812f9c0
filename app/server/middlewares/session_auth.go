package middlewares

import (
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"net/url"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/models"
)

const contextKeyUser = "user"

// SessionAuth attaches the signed-in user (if any) to the context. It never rejects a request.
func SessionAuth(s *Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			user, err := s.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, ErrNoSuchUser) {
					s.l.Debug("dropping invalid session", zap.Error(err))
				}
				// Expired, forged or orphaned cookie
				s.End(c)
				return next(c)
			}

			c.Set(contextKeyUser, user)
			return next(c)
		}
	}
}

// LoginRequired sends anonymous visitors to the login page, remembering where they wanted to go.
func LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				target := constants.RouteLogin + "?" + url.Values{"next": {c.Request().URL.RequestURI()}}.Encode()
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}

// AdminRequired rejects signed-in users without the admin flag. Use after LoginRequired.
func AdminRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user := CurrentUser(c); user == nil || !user.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden)
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(contextKeyUser).(*models.User)
	return user
}
