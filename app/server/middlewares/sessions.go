package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/jwt"
	"stix-ui/app/server/models"
	"time"
)

var ErrNoSuchUser = errors.New("no such user")

// Sessions issues and resolves the signed session cookie.
type Sessions struct {
	db     *gorm.DB
	rdb    *redis.Client
	jwt    *jwt.JWT
	l      *zap.Logger
	secure bool // Secure flag on cookies
}

func NewSessions(db *gorm.DB, rdb *redis.Client, j *jwt.JWT, l *zap.Logger, secure bool) *Sessions {
	return &Sessions{
		db:     db,
		rdb:    rdb,
		jwt:    j,
		l:      l,
		secure: secure,
	}
}

// LoadUser resolves a user by id, cache first.
func (s *Sessions) LoadUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	// Check the cache
	cacheKey := fmt.Sprintf(constants.CacheKeyUserInfo, id)
	if cacheBytes, err := s.rdb.Get(ctx, cacheKey).Bytes(); err != nil {
		if !errors.Is(err, redis.Nil) {
			s.l.Error("failed to query cache for user info", zap.Uint("id", id), zap.Error(err))
		}
	} else if err = json.Unmarshal(cacheBytes, &user); err != nil {
		s.l.Error("failed to unmarshal user info", zap.Uint("id", id), zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
		// Probably a broken entry, drop it
		s.rdb.Del(ctx, cacheKey)
	} else {
		return &user, nil
	}

	// Query the database
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("error query user: %w", err)
	}

	// Cache it for the next request
	if cacheBytes, err := json.Marshal(&user); err != nil {
		s.l.Error("failed to marshal user info", zap.Uint("id", id), zap.Error(err))
	} else {
		s.rdb.Set(ctx, cacheKey, cacheBytes, constants.CacheExpireUserInfo)
	}

	return &user, nil
}

// Forget drops the cached copy of a user after it was changed or removed.
func (s *Sessions) Forget(ctx context.Context, id uint) {
	s.rdb.Del(ctx, fmt.Sprintf(constants.CacheKeyUserInfo, id))
}

// Start signs the user in by setting the session cookie.
func (s *Sessions) Start(c echo.Context, user *models.User) error {
	expires := time.Now().Add(constants.SessionDuration)
	token, err := s.jwt.SignToken(&jwt.User{
		ID:      user.ID,
		Expires: expires.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// End signs the user out.
func (s *Sessions) End(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticate resolves a raw session or API token into its user.
func (s *Sessions) Authenticate(ctx context.Context, token string) (*models.User, error) {
	jwtUser, err := s.jwt.ParseUser(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return s.LoadUser(ctx, jwtUser.ID)
}
