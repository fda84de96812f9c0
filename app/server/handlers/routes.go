package handlers

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/middlewares"
	"strings"
)

// RegisterHandlers mounts the panel, the API and their middlewares on e.
func RegisterHandlers(e *echo.Echo, a *App) {
	e.Renderer = a.renderer
	e.Validator = &formValidator{v: a.validate}
	e.HTTPErrorHandler = a.HTTPErrorHandler

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		TokenLookup:    "form:" + constants.CSRFFormField,
		CookieName:     constants.CSRFCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	e.Use(middlewares.SessionAuth(a.sessions))

	loginRequired := middlewares.LoginRequired()
	adminRequired := middlewares.AdminRequired()

	// Common
	e.GET("/healthz", a.HealthCheck)
	e.GET(constants.RouteHome, a.Index)

	// Auth
	e.GET("/register", a.RegisterPage)
	e.POST("/register", a.Register)
	e.GET(constants.RouteLogin, a.LoginPage)
	e.POST(constants.RouteLogin, a.Login)
	e.GET("/logout", a.Logout, loginRequired)

	// Home
	e.GET(constants.RouteDashboard, a.Dashboard, loginRequired)
	e.GET(constants.RouteAdminDashboard, a.AdminDashboard, loginRequired, adminRequired)

	// Admin
	users := e.Group(constants.RouteUsers, loginRequired)
	users.GET("", a.UserList)
	crud(users, adminRequired, a.UserAddPage, a.UserAdd, a.UserEditPage, a.UserEdit, a.UserDeletePage, a.UserDelete)

	roles := e.Group(constants.RouteRoles, loginRequired)
	roles.GET("", a.RoleList)
	crud(roles, adminRequired, a.RoleAddPage, a.RoleAdd, a.RoleEditPage, a.RoleEdit, a.RoleDeletePage, a.RoleDelete)

	// STIX
	userAccounts := e.Group(constants.RouteUserAccounts, loginRequired)
	userAccounts.GET("", a.UserAccountList)
	crud(userAccounts, adminRequired, a.UserAccountAddPage, a.UserAccountAdd, a.UserAccountEditPage, a.UserAccountEdit, a.UserAccountDeletePage, a.UserAccountDelete)

	identities := e.Group(constants.RouteIdentities, loginRequired)
	identities.GET("", a.IdentityList)
	crud(identities, adminRequired, a.IdentityAddPage, a.IdentityAdd, a.IdentityEditPage, a.IdentityEdit, a.IdentityDeletePage, a.IdentityDelete)

	threatActors := e.Group(constants.RouteThreatActors, loginRequired)
	threatActors.GET("", a.ThreatActorList)
	crud(threatActors, adminRequired, a.ThreatActorAddPage, a.ThreatActorAdd, a.ThreatActorEditPage, a.ThreatActorEdit, a.ThreatActorDeletePage, a.ThreatActorDelete)

	posts := e.Group(constants.RoutePosts, loginRequired)
	posts.GET("", a.PostList)
	crud(posts, adminRequired, a.PostAddPage, a.PostAdd, a.PostEditPage, a.PostEdit, a.PostDeletePage, a.PostDelete)

	vocabularies := e.Group(constants.RouteVocabularies, loginRequired)
	vocabularies.GET("", a.VocabularyIndex)
	kinds := vocabularies.Group("/:kind")
	kinds.GET("", a.VocabularyList)
	crud(kinds, adminRequired, a.VocabularyAddPage, a.VocabularyAdd, a.VocabularyEditPage, a.VocabularyEdit, a.VocabularyDeletePage, a.VocabularyDelete)

	// API
	e.POST("/api/auth/login", a.APILogin)

	export := e.Group("/api/export", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return a.sessions.Authenticate(c.Request().Context(), auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized).SetInternal(err)
		},
	}))
	export.GET("/heartbeat", a.ExportHeartbeat)
	export.GET("/bundle", a.ExportBundle)
}

// crud mounts the add/edit/delete form pairs of one entity behind the admin check.
func crud(g *echo.Group, adminRequired echo.MiddlewareFunc, addPage, add, editPage, edit, deletePage, del echo.HandlerFunc) {
	g.GET("/add", addPage, adminRequired)
	g.POST("/add", add, adminRequired)
	g.GET("/edit/:id", editPage, adminRequired)
	g.POST("/edit/:id", edit, adminRequired)
	g.GET("/delete/:id", deletePage, adminRequired)
	g.POST("/delete/:id", del, adminRequired)
}
