package handlers

import (
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/jwt"
	"stix-ui/app/server/types"
	"time"
)

func (a *App) APILogin(c echo.Context) error {
	rctx := c.Request().Context()

	// Bind the request body
	var req types.LoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// Missing username or password
	if req.Username == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	user, err := a.checkCredentials(rctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			return a.er(c, http.StatusUnauthorized)
		} else {
			a.l.Error("failed to check credentials", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// Sign the token
	expires := time.Now().Add(constants.APITokenDuration)
	token, err := a.jwt.SignToken(&jwt.User{
		ID:      user.ID,
		Expires: expires.Unix(),
	})
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, &types.LoginToken{
		Token:   token,
		Expires: expires.Unix(),
	})
}
