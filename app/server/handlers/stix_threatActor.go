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

const (
	entityThreatActor = "threat actor"

	msgLastSeenBeforeFirstSeen = "Last seen must not be earlier than first seen."
)

// threatActorSelects ties each select of the form to its vocabulary.
var threatActorSelects = []struct {
	field string
	label string
	kind  *vocabularyKind
	value func(form *ThreatActorForm) *string
	id    func(actor *models.ThreatActor) **uint
}{
	{"threat_actor_type", "Type", threatActorTypes,
		func(f *ThreatActorForm) *string { return &f.ThreatActorType },
		func(t *models.ThreatActor) **uint { return &t.ThreatActorTypeID }},
	{"threat_actor_role", "Role", threatActorRoles,
		func(f *ThreatActorForm) *string { return &f.ThreatActorRole },
		func(t *models.ThreatActor) **uint { return &t.ThreatActorRoleID }},
	{"threat_actor_sophistication", "Sophistication", threatActorSophistications,
		func(f *ThreatActorForm) *string { return &f.ThreatActorSophistication },
		func(t *models.ThreatActor) **uint { return &t.SophisticationID }},
	{"resource_level", "Resource level", attackResourceLevels,
		func(f *ThreatActorForm) *string { return &f.ResourceLevel },
		func(t *models.ThreatActor) **uint { return &t.ResourceLevelID }},
	{"primary_motivation", "Primary motivation", attackMotivations,
		func(f *ThreatActorForm) *string { return &f.PrimaryMotivation },
		func(t *models.ThreatActor) **uint { return &t.PrimaryMotivationID }},
	{"secondary_motivation", "Secondary motivation", attackMotivations,
		func(f *ThreatActorForm) *string { return &f.SecondaryMotivation },
		func(t *models.ThreatActor) **uint { return &t.SecondaryMotivationID }},
}

func (a *App) threatActorFormView(ctx context.Context, heading string, action string, form *ThreatActorForm, errs FormErrors) (*FormView, error) {
	db := a.db.WithContext(ctx)

	fields := []FormField{
		textField("name", "Name", form.Name, errs),
		typedField("textarea", "description", "Description", form.Description, errs),
		textField("contact_information", "Contact information", form.ContactInformation, errs),
		textField("aliases", "Aliases", form.Aliases, errs),
		typedField("date", "first_seen", "First seen", form.FirstSeen, errs),
		typedField("date", "last_seen", "Last seen", form.LastSeen, errs),
		textField("goals", "Goals", form.Goals, errs),
	}
	fields[3].Help = "Comma separated"
	fields[6].Help = "Comma separated"

	for _, sel := range threatActorSelects {
		options, err := a.vocabularyOptions(db, sel.kind)
		if err != nil {
			return nil, err
		}
		fields = append(fields, selectField(sel.field, sel.label, *sel.value(form), options, errs))
	}

	personal := textField("personal_motivations", "Personal motivations", form.PersonalMotivations, errs)
	personal.Help = "Comma separated"
	fields = append(fields, personal)

	return &FormView{
		Heading: heading,
		Action:  action,
		Submit:  "Save",
		Fields:  fields,
	}, nil
}

func (a *App) renderThreatActorForm(c echo.Context, heading string, action string, form *ThreatActorForm, errs FormErrors) error {
	view, err := a.threatActorFormView(c.Request().Context(), heading, action, form, errs)
	if err != nil {
		a.l.Error("failed to prepare threat actor form", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	return a.renderForm(c, heading, view)
}

// threatActorValidate checks what the struct tags cannot and maps the form onto actor.
// It returns false when the form has to be shown again.
func (a *App) threatActorValidate(ctx context.Context, form *ThreatActorForm, errs FormErrors, actor *models.ThreatActor) (bool, error) {
	for _, sel := range threatActorSelects {
		id, err := a.choice(ctx, errs, sel.field, *sel.value(form), sel.kind.store.validate)
		if err != nil {
			return false, err
		}
		*sel.id(actor) = id
	}

	// Dates passed the format check already, so only the order is left
	firstSeen, _ := utils.ParseDate(form.FirstSeen)
	lastSeen, _ := utils.ParseDate(form.LastSeen)
	if firstSeen != nil && lastSeen != nil && lastSeen.Before(*firstSeen) {
		errs.Add("last_seen", msgLastSeenBeforeFirstSeen)
	}
	if errs.Any() {
		return false, nil
	}

	if taken, err := valueTaken[models.ThreatActor](a.db.WithContext(ctx), "name", form.Name, actor.ID); err != nil {
		return false, err
	} else if taken {
		errs.Add("name", msgNameInUse)
		return false, nil
	}

	actor.Name = form.Name
	actor.Description = form.Description
	actor.ContactInformation = form.ContactInformation
	actor.Aliases = utils.SplitList(form.Aliases)
	actor.Goals = utils.SplitList(form.Goals)
	actor.PersonalMotivations = utils.SplitList(form.PersonalMotivations)
	actor.FirstSeen = firstSeen
	actor.LastSeen = lastSeen
	return true, nil
}

func (a *App) ThreatActorList(c echo.Context) error {
	rctx := c.Request().Context()

	var (
		actors      []models.ThreatActor
		actorsCount int64
	)

	showAll, page, limit := a.parsePagination(readPagination(c))

	if err := a.db.WithContext(rctx).Model(&models.ThreatActor{}).Preload("ThreatActorType").Preload("Sophistication").Order("name").Limit(limit).Offset(page * limit).Find(&actors).Error; err != nil {
		a.l.Error("failed to get threat actor list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.ThreatActor{}).Count(&actorsCount).Error; err != nil {
		a.l.Error("failed to count threat actor", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	view := &ListView{
		Heading: "Threat actors",
		AddURL:  constants.RouteThreatActors + "/add",
		Columns: []string{"Name", "Aliases", "Type", "Sophistication", "First seen", "Last seen"},
		Pager:   a.pager(constants.RouteThreatActors, showAll, page, limit, actorsCount),
	}
	for _, actor := range actors {
		var actorType, sophistication string
		if actor.ThreatActorType != nil {
			actorType = actor.ThreatActorType.Name
		}
		if actor.Sophistication != nil {
			sophistication = actor.Sophistication.Name
		}
		view.Rows = append(view.Rows, ListRow{
			Cells: []Link{
				{Text: actor.Name},
				{Text: utils.JoinList(actor.Aliases)},
				{Text: actorType},
				{Text: sophistication},
				{Text: utils.FormatDate(actor.FirstSeen)},
				{Text: utils.FormatDate(actor.LastSeen)},
			},
			EditURL:   fmt.Sprintf("%s/edit/%d", constants.RouteThreatActors, actor.ID),
			DeleteURL: fmt.Sprintf("%s/delete/%d", constants.RouteThreatActors, actor.ID),
		})
	}

	return a.render(c, http.StatusOK, "crud/list.html", "Threat actors", view)
}

func (a *App) ThreatActorAddPage(c echo.Context) error {
	return a.renderThreatActorForm(c, "Add threat actor", constants.RouteThreatActors+"/add", &ThreatActorForm{}, nil)
}

func (a *App) ThreatActorAdd(c echo.Context) error {
	rctx := c.Request().Context()
	action := constants.RouteThreatActors + "/add"

	// Bind the form
	var form ThreatActorForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}

	actor := models.ThreatActor{
		StixID: uuid.New(),
	}
	if ok, err := a.threatActorValidate(rctx, &form, errs, &actor); err != nil {
		a.l.Error("failed to validate threat actor", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !ok {
		return a.renderThreatActorForm(c, "Add threat actor", action, &form, errs)
	}

	if err := a.db.WithContext(rctx).Create(&actor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("name", msgNameInUse)
			return a.renderThreatActorForm(c, "Add threat actor", action, &form, errs)
		}
		a.l.Error("failed to create threat actor", zap.String("name", actor.Name), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityThreatActor, "added"))
	return c.Redirect(http.StatusFound, constants.RouteThreatActors)
}

func (a *App) getThreatActor(c echo.Context) (*models.ThreatActor, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}

	var actor models.ThreatActor
	if err := a.db.WithContext(c.Request().Context()).First(&actor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get threat actor", zap.Uint("id", id), zap.Error(err))
			return nil, a.er(c, http.StatusInternalServerError)
		}
	}
	return &actor, nil
}

func (a *App) ThreatActorEditPage(c echo.Context) error {
	actor, err := a.getThreatActor(c)
	if err != nil {
		return err
	}

	form := ThreatActorForm{
		Name:                actor.Name,
		Description:         actor.Description,
		ContactInformation:  actor.ContactInformation,
		Aliases:             utils.JoinList(actor.Aliases),
		FirstSeen:           utils.FormatDate(actor.FirstSeen),
		LastSeen:            utils.FormatDate(actor.LastSeen),
		Goals:               utils.JoinList(actor.Goals),
		PersonalMotivations: utils.JoinList(actor.PersonalMotivations),
	}
	for _, sel := range threatActorSelects {
		*sel.value(&form) = utils.FormatOptionalID(*sel.id(actor))
	}

	return a.renderThreatActorForm(c, "Edit threat actor", fmt.Sprintf("%s/edit/%d", constants.RouteThreatActors, actor.ID), &form, nil)
}

func (a *App) ThreatActorEdit(c echo.Context) error {
	rctx := c.Request().Context()

	actor, err := a.getThreatActor(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("%s/edit/%d", constants.RouteThreatActors, actor.ID)

	// Bind the form
	var form ThreatActorForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}

	if ok, err := a.threatActorValidate(rctx, &form, errs, actor); err != nil {
		a.l.Error("failed to validate threat actor", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !ok {
		return a.renderThreatActorForm(c, "Edit threat actor", action, &form, errs)
	}

	if err := a.db.WithContext(rctx).Save(actor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("name", msgNameInUse)
			return a.renderThreatActorForm(c, "Edit threat actor", action, &form, errs)
		}
		a.l.Error("failed to update threat actor", zap.Uint("id", actor.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityThreatActor, "edited"))
	return c.Redirect(http.StatusFound, constants.RouteThreatActors)
}

func (a *App) ThreatActorDeletePage(c echo.Context) error {
	actor, err := a.getThreatActor(c)
	if err != nil {
		return err
	}

	return a.renderDelete(c, "Delete threat actor", &DeleteView{
		Heading:   "Delete threat actor",
		Subject:   actor.Name,
		Action:    fmt.Sprintf("%s/delete/%d", constants.RouteThreatActors, actor.ID),
		CancelURL: constants.RouteThreatActors,
	})
}

func (a *App) ThreatActorDelete(c echo.Context) error {
	rctx := c.Request().Context()

	actor, err := a.getThreatActor(c)
	if err != nil {
		return err
	}

	if err := a.db.WithContext(rctx).Unscoped().Delete(&models.ThreatActor{}, "id = ?", actor.ID).Error; err != nil {
		a.l.Error("failed to delete threat actor", zap.Uint("id", actor.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityThreatActor, "deleted"))
	return c.Redirect(http.StatusFound, constants.RouteThreatActors)
}
