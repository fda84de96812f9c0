package handlers

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/models"
	"stix-ui/app/server/utils"
)

const entityIdentity = "identity"

func (a *App) identityFormView(ctx context.Context, heading string, action string, form *IdentityForm, errs FormErrors) (*FormView, error) {
	db := a.db.WithContext(ctx)

	roles, err := a.vocabularyOptions(db, identityRoles)
	if err != nil {
		return nil, err
	}
	classes, err := a.vocabularyOptions(db, identityClasses)
	if err != nil {
		return nil, err
	}

	return &FormView{
		Heading: heading,
		Action:  action,
		Submit:  "Save",
		Fields: []FormField{
			textField("name", "Name", form.Name, errs),
			typedField("textarea", "description", "Description", form.Description, errs),
			textField("contact_information", "Contact information", form.ContactInformation, errs),
			textField("location", "Location", form.Location, errs),
			selectField("identity_role", "Role", form.IdentityRole, roles, errs),
			selectField("identity_class", "Class", form.IdentityClass, classes, errs),
		},
	}, nil
}

func (a *App) renderIdentityForm(c echo.Context, heading string, action string, form *IdentityForm, errs FormErrors) error {
	view, err := a.identityFormView(c.Request().Context(), heading, action, form, errs)
	if err != nil {
		a.l.Error("failed to prepare identity form", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	return a.renderForm(c, heading, view)
}

// identityValidate resolves the selects, returning false when the form has to be shown again.
func (a *App) identityValidate(ctx context.Context, form *IdentityForm, errs FormErrors, identity *models.Identity) (bool, error) {
	var err error
	if identity.IdentityRoleID, err = a.choice(ctx, errs, "identity_role", form.IdentityRole, identityRoles.store.validate); err != nil {
		return false, err
	}
	if identity.IdentityClassID, err = a.choice(ctx, errs, "identity_class", form.IdentityClass, identityClasses.store.validate); err != nil {
		return false, err
	}
	if errs.Any() {
		return false, nil
	}

	if taken, err := valueTaken[models.Identity](a.db.WithContext(ctx), "name", form.Name, identity.ID); err != nil {
		return false, err
	} else if taken {
		errs.Add("name", msgNameInUse)
		return false, nil
	}

	identity.Name = form.Name
	identity.Description = form.Description
	identity.ContactInformation = form.ContactInformation
	identity.Location = form.Location
	return true, nil
}

func (a *App) IdentityList(c echo.Context) error {
	rctx := c.Request().Context()

	var (
		identities      []models.Identity
		identitiesCount int64
	)

	showAll, page, limit := a.parsePagination(readPagination(c))

	if err := a.db.WithContext(rctx).Model(&models.Identity{}).Preload("IdentityRole").Preload("IdentityClass").Order("name").Limit(limit).Offset(page * limit).Find(&identities).Error; err != nil {
		a.l.Error("failed to get identity list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.Identity{}).Count(&identitiesCount).Error; err != nil {
		a.l.Error("failed to count identity", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	view := &ListView{
		Heading: "Identities",
		AddURL:  constants.RouteIdentities + "/add",
		Columns: []string{"Name", "Class", "Role", "Location"},
		Pager:   a.pager(constants.RouteIdentities, showAll, page, limit, identitiesCount),
	}
	for _, identity := range identities {
		var class, role string
		if identity.IdentityClass != nil {
			class = identity.IdentityClass.Name
		}
		if identity.IdentityRole != nil {
			role = identity.IdentityRole.Name
		}
		view.Rows = append(view.Rows, ListRow{
			Cells:     []Link{{Text: identity.Name}, {Text: class}, {Text: role}, {Text: identity.Location}},
			EditURL:   fmt.Sprintf("%s/edit/%d", constants.RouteIdentities, identity.ID),
			DeleteURL: fmt.Sprintf("%s/delete/%d", constants.RouteIdentities, identity.ID),
		})
	}

	return a.render(c, http.StatusOK, "crud/list.html", "Identities", view)
}

func (a *App) IdentityAddPage(c echo.Context) error {
	return a.renderIdentityForm(c, "Add identity", constants.RouteIdentities+"/add", &IdentityForm{}, nil)
}

func (a *App) IdentityAdd(c echo.Context) error {
	rctx := c.Request().Context()
	action := constants.RouteIdentities + "/add"

	// Bind the form
	var form IdentityForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}

	identity := models.Identity{
		StixID: uuid.New(),
	}
	if ok, err := a.identityValidate(rctx, &form, errs, &identity); err != nil {
		a.l.Error("failed to validate identity", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !ok {
		return a.renderIdentityForm(c, "Add identity", action, &form, errs)
	}

	if err := a.db.WithContext(rctx).Create(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("name", msgNameInUse)
			return a.renderIdentityForm(c, "Add identity", action, &form, errs)
		}
		a.l.Error("failed to create identity", zap.String("name", identity.Name), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityIdentity, "added"))
	return c.Redirect(http.StatusFound, constants.RouteIdentities)
}

func (a *App) getIdentity(c echo.Context) (*models.Identity, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}

	var identity models.Identity
	if err := a.db.WithContext(c.Request().Context()).First(&identity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get identity", zap.Uint("id", id), zap.Error(err))
			return nil, a.er(c, http.StatusInternalServerError)
		}
	}
	return &identity, nil
}

func (a *App) IdentityEditPage(c echo.Context) error {
	identity, err := a.getIdentity(c)
	if err != nil {
		return err
	}

	form := IdentityForm{
		Name:               identity.Name,
		Description:        identity.Description,
		ContactInformation: identity.ContactInformation,
		Location:           identity.Location,
		IdentityRole:       utils.FormatOptionalID(identity.IdentityRoleID),
		IdentityClass:      utils.FormatOptionalID(identity.IdentityClassID),
	}
	return a.renderIdentityForm(c, "Edit identity", fmt.Sprintf("%s/edit/%d", constants.RouteIdentities, identity.ID), &form, nil)
}

func (a *App) IdentityEdit(c echo.Context) error {
	rctx := c.Request().Context()

	identity, err := a.getIdentity(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("%s/edit/%d", constants.RouteIdentities, identity.ID)

	// Bind the form
	var form IdentityForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}

	if ok, err := a.identityValidate(rctx, &form, errs, identity); err != nil {
		a.l.Error("failed to validate identity", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !ok {
		return a.renderIdentityForm(c, "Edit identity", action, &form, errs)
	}

	if err := a.db.WithContext(rctx).Save(identity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("name", msgNameInUse)
			return a.renderIdentityForm(c, "Edit identity", action, &form, errs)
		}
		a.l.Error("failed to update identity", zap.Uint("id", identity.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityIdentity, "edited"))
	return c.Redirect(http.StatusFound, constants.RouteIdentities)
}

func (a *App) IdentityDeletePage(c echo.Context) error {
	identity, err := a.getIdentity(c)
	if err != nil {
		return err
	}

	return a.renderDelete(c, "Delete identity", &DeleteView{
		Heading:   "Delete identity",
		Subject:   identity.Name,
		Action:    fmt.Sprintf("%s/delete/%d", constants.RouteIdentities, identity.ID),
		CancelURL: constants.RouteIdentities,
	})
}

func (a *App) IdentityDelete(c echo.Context) error {
	rctx := c.Request().Context()

	identity, err := a.getIdentity(c)
	if err != nil {
		return err
	}

	if err := a.db.WithContext(rctx).Unscoped().Delete(&models.Identity{}, "id = ?", identity.ID).Error; err != nil {
		a.l.Error("failed to delete identity", zap.Uint("id", identity.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityIdentity, "deleted"))
	return c.Redirect(http.StatusFound, constants.RouteIdentities)
}
