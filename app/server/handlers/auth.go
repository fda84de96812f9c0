package handlers

import (
	"context"
	"errors"
	"fmt"
	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/middlewares"
	"stix-ui/app/server/models"
	"strings"
)

const (
	msgUserCreated    = "The user have been created successfully!"
	msgBadCredentials = "Username or password is not correct!"
	msgLoggedOut      = "You have been logged out successfully!"
	msgEmailInUse     = "Email is already in use!"
	msgUsernameInUse  = "Username is already in use!"
)

var errBadCredentials = errors.New("bad credentials")

// checkCredentials returns the user when the password matches.
func (a *App) checkCredentials(ctx context.Context, username string, password string) (*models.User, error) {
	var user models.User
	if err := a.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		} else {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
	}

	// Verify the password hash
	if match, _, err := argon2id.CheckHash(password, user.Password); err != nil {
		return nil, fmt.Errorf("failed to check password: %w", err)
	} else if !match {
		return nil, errBadCredentials
	}

	return &user, nil
}

// safeNext only accepts local absolute paths, so ?next cannot send people off site.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") &&
		!strings.HasPrefix(next, "//") &&
		!strings.ContainsAny(next, "\\\r\n")
}

func landingPage(user *models.User, next string) string {
	if safeNext(next) {
		return next
	}
	if user.IsAdmin {
		return constants.RouteAdminDashboard
	}
	return constants.RouteDashboard
}

func loginFormView(form *LoginForm, errs FormErrors) *FormView {
	return &FormView{
		Heading: "Login",
		Action:  constants.RouteLogin,
		Submit:  "Login",
		Fields: []FormField{
			textField("username", "Username", form.Username, errs),
			typedField("password", "password", "Password", "", errs),
			typedField("hidden", "next", "", form.Next, errs),
		},
		Links: []Link{{Text: "New here? Create an account", URL: "/register"}},
	}
}

func (a *App) LoginPage(c echo.Context) error {
	form := LoginForm{
		Next: c.QueryParam("next"),
	}
	if user := middlewares.CurrentUser(c); user != nil {
		return c.Redirect(http.StatusFound, landingPage(user, form.Next))
	}

	return a.renderForm(c, "Login", loginFormView(&form, nil))
}

func (a *App) Login(c echo.Context) error {
	rctx := c.Request().Context()

	// Bind the form
	var form LoginForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, "Login", loginFormView(&form, errs))
	}

	user, err := a.checkCredentials(rctx, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			a.flash(c, msgBadCredentials)
			return a.renderForm(c, "Login", loginFormView(&form, nil))
		} else {
			a.l.Error("failed to check credentials", zap.String("username", form.Username), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// Start the session
	if err := a.sessions.Start(c, user); err != nil {
		a.l.Error("failed to start session", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.Redirect(http.StatusFound, landingPage(user, form.Next))
}

func (a *App) Logout(c echo.Context) error {
	a.sessions.End(c)
	a.flash(c, msgLoggedOut)
	return c.Redirect(http.StatusFound, constants.RouteLogin)
}

func registerFormView(form *RegistrationForm, errs FormErrors) *FormView {
	return &FormView{
		Heading: "Register",
		Action:  "/register",
		Submit:  "Register",
		Fields: []FormField{
			typedField("email", "email", "Email", form.Email, errs),
			textField("username", "Username", form.Username, errs),
			textField("name", "Name", form.Name, errs),
			typedField("password", "password", "Password", "", errs),
			typedField("password", "confirm_password", "Confirm password", "", errs),
		},
		Links: []Link{{Text: "Already registered? Login", URL: constants.RouteLogin}},
	}
}

func (a *App) RegisterPage(c echo.Context) error {
	return a.renderForm(c, "Register", registerFormView(&RegistrationForm{}, nil))
}

func (a *App) Register(c echo.Context) error {
	rctx := c.Request().Context()

	// Bind the form
	var form RegistrationForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}

	// Uniqueness
	if ok, err := a.identityAvailable(rctx, c, form.Email, form.Username, 0); err != nil {
		a.l.Error("failed to check user uniqueness", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !ok || errs.Any() {
		return a.renderForm(c, "Register", registerFormView(&form, errs))
	}

	// Hash the password
	passwordHash, err := argon2id.CreateHash(form.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	user := models.User{
		Email:    form.Email,
		Username: form.Username,
		Name:     form.Name,
		Password: passwordHash,
	}
	if err := a.db.WithContext(rctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against another registration
			a.flash(c, msgUsernameInUse)
			return a.renderForm(c, "Register", registerFormView(&form, errs))
		}
		a.l.Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.flash(c, msgUserCreated)
	return c.Redirect(http.StatusFound, constants.RouteLogin)
}

// identityAvailable flashes when the email or username belongs to another user.
func (a *App) identityAvailable(ctx context.Context, c echo.Context, email string, username string, excludeID uint) (bool, error) {
	available := true

	if email != "" {
		if taken, err := valueTaken[models.User](a.db.WithContext(ctx), "email", email, excludeID); err != nil {
			return false, err
		} else if taken {
			a.flash(c, msgEmailInUse)
			available = false
		}
	}

	if username != "" {
		if taken, err := valueTaken[models.User](a.db.WithContext(ctx), "username", username, excludeID); err != nil {
			return false, err
		} else if taken {
			a.flash(c, msgUsernameInUse)
			available = false
		}
	}

	return available, nil
}
