package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"stix-ui/app/server/jwt"
	"stix-ui/app/server/middlewares"
	"stix-ui/app/server/templates"
)

type App struct {
	l        *zap.Logger           // Logger
	db       *gorm.DB              // Database
	rdb      *redis.Client         // Redis
	jwt      *jwt.JWT              // JWT, for API tokens
	sessions *middlewares.Sessions // Cookie sessions
	renderer *templates.Renderer   // HTML pages
	validate *validator.Validate   // Form validation
	policy   *bluemonday.Policy    // Strips HTML from free text
}

func NewApp(l *zap.Logger, db *gorm.DB, rdb *redis.Client, j *jwt.JWT, cookieSecure bool) (*App, error) {
	renderer, err := templates.New()
	if err != nil {
		return nil, err
	}

	return &App{
		l:        l,
		db:       db,
		rdb:      rdb,
		jwt:      j,
		sessions: middlewares.NewSessions(db, rdb, j, l, cookieSecure),
		renderer: renderer,
		validate: newFormValidator(),
		policy:   bluemonday.StrictPolicy(),
	}, nil
}
