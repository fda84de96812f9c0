package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stix-ui/app/server/inits"
	"stix-ui/app/server/jwt"
	"stix-ui/app/server/models"
)

const testCSRF = "test-csrf-token"

// testEnv is a full panel on an in-memory database with a cookie keeping client.
type testEnv struct {
	t      *testing.T
	app    *App
	db     *gorm.DB
	rdb    *redis.Client
	mr     *miniredis.Miniredis
	jwt    *jwt.JWT
	e      *echo.Echo
	srv    *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, inits.Prepare(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	j, err := jwt.New("test-signing-key")
	require.NoError(t, err)

	app, err := NewApp(zap.NewNop(), db, rdb, j, false)
	require.NoError(t, err)

	e := echo.New()
	RegisterHandlers(e, app)
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "_csrf", Value: testCSRF, Path: "/"}})

	return &testEnv{
		t:   t,
		app: app,
		db:  db,
		rdb: rdb,
		mr:  mr,
		jwt: j,
		e:   e,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (env *testEnv) do(req *http.Request) (*http.Response, string) {
	env.t.Helper()

	res, err := env.client.Do(req)
	require.NoError(env.t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(env.t, err)
	return res, string(body)
}

func (env *testEnv) get(path string) (*http.Response, string) {
	env.t.Helper()

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+path, nil)
	require.NoError(env.t, err)
	return env.do(req)
}

// post submits a form the way the browser would, CSRF token included.
func (env *testEnv) post(path string, form url.Values) (*http.Response, string) {
	env.t.Helper()

	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", testCSRF)

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(env.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return env.do(req)
}

func (env *testEnv) login(username string, password string) {
	env.t.Helper()

	res, _ := env.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(env.t, http.StatusFound, res.StatusCode, "login as %s", username)
}

// loginAdmin signs in as the seeded administrator.
func (env *testEnv) loginAdmin() {
	env.login("admin", "password")
}

func (env *testEnv) createUser(username string, password string, admin bool) *models.User {
	env.t.Helper()

	hash, err := argon2id.CreateHash(password, &argon2id.Params{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	require.NoError(env.t, err)

	user := models.User{
		Email:    username + "@example.com",
		Username: username,
		Name:     strings.ToUpper(username[:1]) + username[1:],
		IsAdmin:  admin,
		Password: hash,
	}
	require.NoError(env.t, env.db.Create(&user).Error)
	return &user
}

func location(res *http.Response) string {
	return res.Header.Get("Location")
}
