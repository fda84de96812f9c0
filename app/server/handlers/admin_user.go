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
	"stix-ui/app/server/utils"
)

const (
	msgUserEdited     = "The user has been edited successfully!"
	msgUserDeleted    = "The user has been deleted successfully!"
	msgUserDeleteSelf = "You cannot delete your own account!"
)

func (a *App) roleOptions(ctx context.Context) ([]Option, error) {
	var roles []models.Role
	if err := a.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	options := make([]Option, 0, len(roles))
	for _, role := range roles {
		options = append(options, Option{Value: utils.FormatOptionalID(&role.ID), Label: role.Name})
	}
	return options, nil
}

// userFormView serves both add and edit, the two forms share their fields.
func (a *App) userFormView(ctx context.Context, heading string, action string, form *UserEditForm, errs FormErrors) (*FormView, error) {
	roles, err := a.roleOptions(ctx)
	if err != nil {
		return nil, err
	}

	return &FormView{
		Heading: heading,
		Action:  action,
		Submit:  "Save",
		Fields: []FormField{
			typedField("email", "email", "Email", form.Email, errs),
			textField("username", "Username", form.Username, errs),
			textField("name", "Name", form.Name, errs),
			typedField("password", "password", "Password", "", errs),
			typedField("password", "confirm_password", "Confirm password", "", errs),
			selectField("role", "Role", form.Role, roles, errs),
			checkboxField("is_admin", "Administrator", form.IsAdmin, errs),
		},
	}, nil
}

func (a *App) userMapFields(form *UserEditForm, roleID *uint, user *models.User) {
	user.Email = form.Email
	user.Username = form.Username
	user.Name = form.Name
	user.RoleID = roleID
	user.IsAdmin = form.IsAdmin
}

func (a *App) UserList(c echo.Context) error {
	rctx := c.Request().Context()

	var (
		users      []models.User
		usersCount int64
	)

	showAll, page, limit := a.parsePagination(readPagination(c))

	if err := a.db.WithContext(rctx).Model(&models.User{}).Preload("Role").Order("id").Limit(limit).Offset(page * limit).Find(&users).Error; err != nil {
		a.l.Error("failed to get user list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.User{}).Count(&usersCount).Error; err != nil {
		a.l.Error("failed to count user", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	view := &ListView{
		Heading: "Users",
		AddURL:  constants.RouteUsers + "/add",
		Columns: []string{"Username", "Email", "Name", "Role", "Admin"},
		Pager:   a.pager(constants.RouteUsers, showAll, page, limit, usersCount),
	}
	for _, user := range users {
		roleName := ""
		if user.Role != nil {
			roleName = user.Role.Name
		}
		isAdmin := "No"
		if user.IsAdmin {
			isAdmin = "Yes"
		}
		view.Rows = append(view.Rows, ListRow{
			Cells:     []Link{{Text: user.Username}, {Text: user.Email}, {Text: user.Name}, {Text: roleName}, {Text: isAdmin}},
			EditURL:   fmt.Sprintf("%s/edit/%d", constants.RouteUsers, user.ID),
			DeleteURL: fmt.Sprintf("%s/delete/%d", constants.RouteUsers, user.ID),
		})
	}

	return a.render(c, http.StatusOK, "crud/list.html", "Users", view)
}

func (a *App) UserAddPage(c echo.Context) error {
	view, err := a.userFormView(c.Request().Context(), "Add user", constants.RouteUsers+"/add", &UserEditForm{}, nil)
	if err != nil {
		a.l.Error("failed to prepare user form", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	return a.renderForm(c, "Add user", view)
}

func (a *App) UserAdd(c echo.Context) error {
	rctx := c.Request().Context()

	// Bind the form
	var form UserForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	editForm := UserEditForm(form)

	// Check the role and the uniqueness
	roleID, err := a.choice(rctx, errs, "role", form.Role, validateIDs[models.Role])
	if err != nil {
		a.l.Error("failed to validate role", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	available, err := a.identityAvailable(rctx, c, form.Email, form.Username, 0)
	if err != nil {
		a.l.Error("failed to check user uniqueness", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if !available || errs.Any() {
		return a.rerenderUserForm(c, "Add user", constants.RouteUsers+"/add", &editForm, errs)
	}

	// Hash the password
	passwordHash, err := argon2id.CreateHash(form.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// Create
	user := models.User{
		Password: passwordHash,
	}
	a.userMapFields(&editForm, roleID, &user)

	if err := a.db.WithContext(rctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			a.flash(c, msgUsernameInUse)
			return a.rerenderUserForm(c, "Add user", constants.RouteUsers+"/add", &editForm, errs)
		}
		a.l.Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.flash(c, msgUserCreated)
	return c.Redirect(http.StatusFound, constants.RouteUsers)
}

func (a *App) rerenderUserForm(c echo.Context, heading string, action string, form *UserEditForm, errs FormErrors) error {
	view, err := a.userFormView(c.Request().Context(), heading, action, form, errs)
	if err != nil {
		a.l.Error("failed to prepare user form", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	return a.renderForm(c, heading, view)
}

func (a *App) getUser(c echo.Context) (*models.User, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := a.db.WithContext(c.Request().Context()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
			return nil, a.er(c, http.StatusInternalServerError)
		}
	}
	return &user, nil
}

func (a *App) UserEditPage(c echo.Context) error {
	user, err := a.getUser(c)
	if err != nil {
		return err
	}

	form := UserEditForm{
		Email:    user.Email,
		Username: user.Username,
		Name:     user.Name,
		Role:     utils.FormatOptionalID(user.RoleID),
		IsAdmin:  user.IsAdmin,
	}
	return a.rerenderUserForm(c, "Edit user", fmt.Sprintf("%s/edit/%d", constants.RouteUsers, user.ID), &form, nil)
}

func (a *App) UserEdit(c echo.Context) error {
	rctx := c.Request().Context()

	user, err := a.getUser(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("%s/edit/%d", constants.RouteUsers, user.ID)

	// Bind the form
	var form UserEditForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}

	roleID, err := a.choice(rctx, errs, "role", form.Role, validateIDs[models.Role])
	if err != nil {
		a.l.Error("failed to validate role", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	available, err := a.identityAvailable(rctx, c, form.Email, form.Username, user.ID)
	if err != nil {
		a.l.Error("failed to check user uniqueness", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if !available || errs.Any() {
		return a.rerenderUserForm(c, "Edit user", action, &form, errs)
	}

	// Only replace the password when a new one was typed
	if form.Password != "" {
		passwordHash, err := argon2id.CreateHash(form.Password, argon2id.DefaultParams)
		if err != nil {
			a.l.Error("failed to hash password", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		user.Password = passwordHash
	}
	a.userMapFields(&form, roleID, user)
	user.Role = nil

	if err := a.db.WithContext(rctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			a.flash(c, msgUsernameInUse)
			return a.rerenderUserForm(c, "Edit user", action, &form, errs)
		}
		a.l.Error("failed to update user", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// Drop the cached copy used by sessions
	a.sessions.Forget(rctx, user.ID)

	a.flash(c, msgUserEdited)
	return c.Redirect(http.StatusFound, constants.RouteUsers)
}

func (a *App) UserDeletePage(c echo.Context) error {
	user, err := a.getUser(c)
	if err != nil {
		return err
	}

	return a.renderDelete(c, "Delete user", &DeleteView{
		Heading:   "Delete user",
		Subject:   user.Username,
		Action:    fmt.Sprintf("%s/delete/%d", constants.RouteUsers, user.ID),
		CancelURL: constants.RouteUsers,
	})
}

func (a *App) UserDelete(c echo.Context) error {
	rctx := c.Request().Context()

	user, err := a.getUser(c)
	if err != nil {
		return err
	}

	if me := middlewares.CurrentUser(c); me != nil && me.ID == user.ID {
		a.flash(c, msgUserDeleteSelf)
		return c.Redirect(http.StatusFound, constants.RouteUsers)
	}

	if err := a.db.WithContext(rctx).Unscoped().Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		a.l.Error("failed to delete user", zap.Uint("id", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.sessions.Forget(rctx, user.ID)

	a.flash(c, msgUserDeleted)
	return c.Redirect(http.StatusFound, constants.RouteUsers)
}
