package handlers

import (
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/models"
	"strconv"
)

const (
	msgRoleAdded   = "The new role has been added successfully!"
	msgRoleExists  = "Error: role name already exists."
	msgRoleEdited  = "The role has been edited successfully!"
	msgRoleDeleted = "The role has been deleted successfully!"
)

func roleFormView(heading string, action string, form *RoleForm, errs FormErrors) *FormView {
	return &FormView{
		Heading: heading,
		Action:  action,
		Submit:  "Save",
		Fields: []FormField{
			textField("name", "Name", form.Name, errs),
			typedField("textarea", "description", "Description", form.Description, errs),
		},
	}
}

func (a *App) RoleList(c echo.Context) error {
	rctx := c.Request().Context()

	var roles []models.Role
	if err := a.db.WithContext(rctx).Preload("Users").Order("name").Find(&roles).Error; err != nil {
		a.l.Error("failed to get role list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	view := &ListView{
		Heading: "Roles",
		AddURL:  constants.RouteRoles + "/add",
		Columns: []string{"Name", "Description", "Users"},
	}
	for _, role := range roles {
		view.Rows = append(view.Rows, ListRow{
			Cells:     []Link{{Text: role.Name}, {Text: role.Description}, {Text: strconv.Itoa(len(role.Users))}},
			EditURL:   fmt.Sprintf("%s/edit/%d", constants.RouteRoles, role.ID),
			DeleteURL: fmt.Sprintf("%s/delete/%d", constants.RouteRoles, role.ID),
		})
	}

	return a.render(c, http.StatusOK, "crud/list.html", "Roles", view)
}

func (a *App) RoleAddPage(c echo.Context) error {
	return a.renderForm(c, "Add role", roleFormView("Add role", constants.RouteRoles+"/add", &RoleForm{}, nil))
}

func (a *App) RoleAdd(c echo.Context) error {
	rctx := c.Request().Context()
	action := constants.RouteRoles + "/add"

	// Bind the form
	var form RoleForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, "Add role", roleFormView("Add role", action, &form, errs))
	}

	// Uniqueness
	if taken, err := valueTaken[models.Role](a.db.WithContext(rctx), "name", form.Name, 0); err != nil {
		a.l.Error("failed to check role name", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		a.flash(c, msgRoleExists)
		return a.renderForm(c, "Add role", roleFormView("Add role", action, &form, errs))
	}

	role := models.Role{
		Name:        form.Name,
		Description: form.Description,
	}
	if err := a.db.WithContext(rctx).Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			a.flash(c, msgRoleExists)
			return a.renderForm(c, "Add role", roleFormView("Add role", action, &form, errs))
		}
		a.l.Error("failed to create role", zap.String("name", role.Name), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.flash(c, msgRoleAdded)
	return c.Redirect(http.StatusFound, constants.RouteRoles)
}

func (a *App) getRole(c echo.Context) (*models.Role, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}

	var role models.Role
	if err := a.db.WithContext(c.Request().Context()).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get role", zap.Uint("id", id), zap.Error(err))
			return nil, a.er(c, http.StatusInternalServerError)
		}
	}
	return &role, nil
}

func (a *App) RoleEditPage(c echo.Context) error {
	role, err := a.getRole(c)
	if err != nil {
		return err
	}

	form := RoleForm{
		Name:        role.Name,
		Description: role.Description,
	}
	return a.renderForm(c, "Edit role", roleFormView("Edit role", fmt.Sprintf("%s/edit/%d", constants.RouteRoles, role.ID), &form, nil))
}

func (a *App) RoleEdit(c echo.Context) error {
	rctx := c.Request().Context()

	role, err := a.getRole(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("%s/edit/%d", constants.RouteRoles, role.ID)

	// Bind the form
	var form RoleForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, "Edit role", roleFormView("Edit role", action, &form, errs))
	}

	if taken, err := valueTaken[models.Role](a.db.WithContext(rctx), "name", form.Name, role.ID); err != nil {
		a.l.Error("failed to check role name", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		a.flash(c, msgRoleExists)
		return a.renderForm(c, "Edit role", roleFormView("Edit role", action, &form, errs))
	}

	role.Name = form.Name
	role.Description = form.Description
	if err := a.db.WithContext(rctx).Save(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			a.flash(c, msgRoleExists)
			return a.renderForm(c, "Edit role", roleFormView("Edit role", action, &form, errs))
		}
		a.l.Error("failed to update role", zap.Uint("id", role.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.flash(c, msgRoleEdited)
	return c.Redirect(http.StatusFound, constants.RouteRoles)
}

func (a *App) RoleDeletePage(c echo.Context) error {
	role, err := a.getRole(c)
	if err != nil {
		return err
	}

	return a.renderDelete(c, "Delete role", &DeleteView{
		Heading:   "Delete role",
		Subject:   role.Name,
		Action:    fmt.Sprintf("%s/delete/%d", constants.RouteRoles, role.ID),
		CancelURL: constants.RouteRoles,
	})
}

func (a *App) RoleDelete(c echo.Context) error {
	rctx := c.Request().Context()

	role, err := a.getRole(c)
	if err != nil {
		return err
	}

	// Members lose the role, then the role goes
	var memberIDs []uint
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("role_id = ?", role.ID).Pluck("id", &memberIDs).Error; err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("role_id = ?", role.ID).Update("role_id", nil).Error; err != nil {
			return fmt.Errorf("detach members: %w", err)
		}
		if err := tx.Unscoped().Delete(&models.Role{}, "id = ?", role.ID).Error; err != nil {
			return fmt.Errorf("delete role: %w", err)
		}
		return nil
	}); err != nil {
		a.l.Error("failed to delete role", zap.Uint("id", role.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	for _, id := range memberIDs {
		a.sessions.Forget(rctx, id)
	}

	a.flash(c, msgRoleDeleted)
	return c.Redirect(http.StatusFound, constants.RouteRoles)
}
