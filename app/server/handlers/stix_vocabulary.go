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
	"stix-ui/app/server/utils"
)

// vocabularyStore hides which table a vocabulary kind lives in.
type vocabularyStore interface {
	list(db *gorm.DB) ([]models.Vocabulary, error)
	get(db *gorm.DB, id uint) (*models.Vocabulary, error)
	count(db *gorm.DB) (int64, error)
	nameTaken(db *gorm.DB, name string, excludeID uint) (bool, error)
	create(db *gorm.DB, entry *models.Vocabulary) error
	update(db *gorm.DB, entry *models.Vocabulary) error
	delete(db *gorm.DB, id uint) error
	validate(db *gorm.DB, ids []uint) (error, int)
}

// vocabularyRef is a column elsewhere pointing into a vocabulary table.
type vocabularyRef struct {
	newModel func() any // New value for every statement
	column   string
}

func refTo[M any](column string) vocabularyRef {
	return vocabularyRef{
		newModel: func() any { return new(M) },
		column:   column,
	}
}

type vocabularyTable[T any, PT models.VocabularyModel[T]] struct {
	refs []vocabularyRef
}

func (t vocabularyTable[T, PT]) list(db *gorm.DB) ([]models.Vocabulary, error) {
	var rows []T
	if err := db.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]models.Vocabulary, 0, len(rows))
	for i := range rows {
		entries = append(entries, *PT(&rows[i]).Base())
	}
	return entries, nil
}

func (t vocabularyTable[T, PT]) get(db *gorm.DB, id uint) (*models.Vocabulary, error) {
	row := PT(new(T))
	if err := db.First(row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return row.Base(), nil
}

func (t vocabularyTable[T, PT]) count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(PT(new(T))).Count(&count).Error
	return count, err
}

func (t vocabularyTable[T, PT]) nameTaken(db *gorm.DB, name string, excludeID uint) (bool, error) {
	return valueTaken[T](db, "name", name, excludeID)
}

func (t vocabularyTable[T, PT]) create(db *gorm.DB, entry *models.Vocabulary) error {
	row := PT(new(T))
	*row.Base() = *entry
	if err := db.Create(row).Error; err != nil {
		return err
	}
	*entry = *row.Base()
	return nil
}

func (t vocabularyTable[T, PT]) update(db *gorm.DB, entry *models.Vocabulary) error {
	row := PT(new(T))
	*row.Base() = *entry
	return db.Save(row).Error
}

// delete clears every reference to the entry before removing it.
func (t vocabularyTable[T, PT]) delete(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, ref := range t.refs {
			if err := tx.Model(ref.newModel()).Where(ref.column+" = ?", id).Update(ref.column, nil).Error; err != nil {
				return fmt.Errorf("detach %s: %w", ref.column, err)
			}
		}
		return tx.Unscoped().Delete(PT(new(T)), "id = ?", id).Error
	})
}

func (t vocabularyTable[T, PT]) validate(db *gorm.DB, ids []uint) (error, int) {
	return validateIDs[T](db, ids)
}

type vocabularyKind struct {
	Slug     string // URL segment
	Title    string // Plural, for headings
	Singular string // For flash messages
	store    vocabularyStore
}

func (k *vocabularyKind) path() string {
	return constants.RouteVocabularies + "/" + k.Slug
}

var (
	threatActorTypes = &vocabularyKind{
		Slug: "threat-actor-types", Title: "Threat actor types", Singular: "threat actor type",
		store: vocabularyTable[models.ThreatActorType, *models.ThreatActorType]{
			refs: []vocabularyRef{refTo[models.ThreatActor]("threat_actor_type_id")},
		},
	}
	threatActorRoles = &vocabularyKind{
		Slug: "threat-actor-roles", Title: "Threat actor roles", Singular: "threat actor role",
		store: vocabularyTable[models.ThreatActorRole, *models.ThreatActorRole]{
			refs: []vocabularyRef{refTo[models.ThreatActor]("threat_actor_role_id")},
		},
	}
	threatActorSophistications = &vocabularyKind{
		Slug: "threat-actor-sophistications", Title: "Threat actor sophistications", Singular: "threat actor sophistication",
		store: vocabularyTable[models.ThreatActorSophistication, *models.ThreatActorSophistication]{
			refs: []vocabularyRef{refTo[models.ThreatActor]("sophistication_id")},
		},
	}
	attackResourceLevels = &vocabularyKind{
		Slug: "attack-resource-levels", Title: "Attack resource levels", Singular: "attack resource level",
		store: vocabularyTable[models.AttackResourceLevel, *models.AttackResourceLevel]{
			refs: []vocabularyRef{refTo[models.ThreatActor]("resource_level_id")},
		},
	}
	attackMotivations = &vocabularyKind{
		Slug: "attack-motivations", Title: "Attack motivations", Singular: "attack motivation",
		store: vocabularyTable[models.AttackMotivation, *models.AttackMotivation]{
			refs: []vocabularyRef{
				refTo[models.ThreatActor]("primary_motivation_id"),
				refTo[models.ThreatActor]("secondary_motivation_id"),
			},
		},
	}
	identityClasses = &vocabularyKind{
		Slug: "identity-classes", Title: "Identity classes", Singular: "identity class",
		store: vocabularyTable[models.IdentityClass, *models.IdentityClass]{
			refs: []vocabularyRef{refTo[models.Identity]("identity_class_id")},
		},
	}
	identityRoles = &vocabularyKind{
		Slug: "identity-roles", Title: "Identity roles", Singular: "identity role",
		store: vocabularyTable[models.IdentityRole, *models.IdentityRole]{
			refs: []vocabularyRef{refTo[models.Identity]("identity_role_id")},
		},
	}
)

var vocabularyKinds = []*vocabularyKind{
	threatActorTypes,
	threatActorRoles,
	threatActorSophistications,
	attackResourceLevels,
	attackMotivations,
	identityClasses,
	identityRoles,
}

func (a *App) vocabularyKind(c echo.Context) (*vocabularyKind, error) {
	slug := c.Param("kind")
	for _, kind := range vocabularyKinds {
		if kind.Slug == slug {
			return kind, nil
		}
	}
	return nil, a.er(c, http.StatusNotFound)
}

// vocabularyOptions lists a vocabulary as select options.
func (a *App) vocabularyOptions(db *gorm.DB, kind *vocabularyKind) ([]Option, error) {
	entries, err := kind.store.list(db)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Slug, err)
	}

	options := make([]Option, 0, len(entries))
	for _, entry := range entries {
		options = append(options, Option{Value: utils.FormatOptionalID(&entry.ID), Label: entry.Name})
	}
	return options, nil
}

func vocabularyFormView(heading string, action string, form *VocabularyForm, errs FormErrors) *FormView {
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

func (a *App) VocabularyIndex(c echo.Context) error {
	var kinds []Link
	for _, kind := range vocabularyKinds {
		kinds = append(kinds, Link{Text: kind.Title, URL: kind.path()})
	}

	return a.render(c, http.StatusOK, "stix/vocabularies.html", "Vocabularies", map[string]any{
		"Kinds": kinds,
	})
}

func (a *App) VocabularyList(c echo.Context) error {
	kind, err := a.vocabularyKind(c)
	if err != nil {
		return err
	}

	entries, err := kind.store.list(a.db.WithContext(c.Request().Context()))
	if err != nil {
		a.l.Error("failed to get vocabulary list", zap.String("kind", kind.Slug), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	view := &ListView{
		Heading: kind.Title,
		AddURL:  kind.path() + "/add",
		Columns: []string{"Name", "Description"},
	}
	for _, entry := range entries {
		view.Rows = append(view.Rows, ListRow{
			Cells:     []Link{{Text: entry.Name}, {Text: entry.Description}},
			EditURL:   fmt.Sprintf("%s/edit/%d", kind.path(), entry.ID),
			DeleteURL: fmt.Sprintf("%s/delete/%d", kind.path(), entry.ID),
		})
	}

	return a.render(c, http.StatusOK, "crud/list.html", kind.Title, view)
}

func (a *App) VocabularyAddPage(c echo.Context) error {
	kind, err := a.vocabularyKind(c)
	if err != nil {
		return err
	}

	heading := "Add " + kind.Singular
	return a.renderForm(c, heading, vocabularyFormView(heading, kind.path()+"/add", &VocabularyForm{}, nil))
}

func (a *App) VocabularyAdd(c echo.Context) error {
	rctx := c.Request().Context()

	kind, err := a.vocabularyKind(c)
	if err != nil {
		return err
	}
	heading := "Add " + kind.Singular
	action := kind.path() + "/add"

	// Bind the form
	var form VocabularyForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, heading, vocabularyFormView(heading, action, &form, errs))
	}

	if taken, err := kind.store.nameTaken(a.db.WithContext(rctx), form.Name, 0); err != nil {
		a.l.Error("failed to check vocabulary name", zap.String("kind", kind.Slug), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		errs.Add("name", msgNameInUse)
		return a.renderForm(c, heading, vocabularyFormView(heading, action, &form, errs))
	}

	entry := models.Vocabulary{
		Name:        form.Name,
		Description: form.Description,
	}
	if err := kind.store.create(a.db.WithContext(rctx), &entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("name", msgNameInUse)
			return a.renderForm(c, heading, vocabularyFormView(heading, action, &form, errs))
		}
		a.l.Error("failed to create vocabulary entry", zap.String("kind", kind.Slug), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(kind.Singular, "added"))
	return c.Redirect(http.StatusFound, kind.path())
}

func (a *App) getVocabularyEntry(c echo.Context, kind *vocabularyKind) (*models.Vocabulary, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}

	entry, err := kind.store.get(a.db.WithContext(c.Request().Context()), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get vocabulary entry", zap.String("kind", kind.Slug), zap.Uint("id", id), zap.Error(err))
			return nil, a.er(c, http.StatusInternalServerError)
		}
	}
	return entry, nil
}

func (a *App) VocabularyEditPage(c echo.Context) error {
	kind, err := a.vocabularyKind(c)
	if err != nil {
		return err
	}
	entry, err := a.getVocabularyEntry(c, kind)
	if err != nil {
		return err
	}

	heading := "Edit " + kind.Singular
	form := VocabularyForm{
		Name:        entry.Name,
		Description: entry.Description,
	}
	return a.renderForm(c, heading, vocabularyFormView(heading, fmt.Sprintf("%s/edit/%d", kind.path(), entry.ID), &form, nil))
}

func (a *App) VocabularyEdit(c echo.Context) error {
	rctx := c.Request().Context()

	kind, err := a.vocabularyKind(c)
	if err != nil {
		return err
	}
	entry, err := a.getVocabularyEntry(c, kind)
	if err != nil {
		return err
	}
	heading := "Edit " + kind.Singular
	action := fmt.Sprintf("%s/edit/%d", kind.path(), entry.ID)

	// Bind the form
	var form VocabularyForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, heading, vocabularyFormView(heading, action, &form, errs))
	}

	if taken, err := kind.store.nameTaken(a.db.WithContext(rctx), form.Name, entry.ID); err != nil {
		a.l.Error("failed to check vocabulary name", zap.String("kind", kind.Slug), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		errs.Add("name", msgNameInUse)
		return a.renderForm(c, heading, vocabularyFormView(heading, action, &form, errs))
	}

	entry.Name = form.Name
	entry.Description = form.Description
	if err := kind.store.update(a.db.WithContext(rctx), entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("name", msgNameInUse)
			return a.renderForm(c, heading, vocabularyFormView(heading, action, &form, errs))
		}
		a.l.Error("failed to update vocabulary entry", zap.String("kind", kind.Slug), zap.Uint("id", entry.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(kind.Singular, "edited"))
	return c.Redirect(http.StatusFound, kind.path())
}

func (a *App) VocabularyDeletePage(c echo.Context) error {
	kind, err := a.vocabularyKind(c)
	if err != nil {
		return err
	}
	entry, err := a.getVocabularyEntry(c, kind)
	if err != nil {
		return err
	}

	heading := "Delete " + kind.Singular
	return a.renderDelete(c, heading, &DeleteView{
		Heading:   heading,
		Subject:   entry.Name,
		Action:    fmt.Sprintf("%s/delete/%d", kind.path(), entry.ID),
		CancelURL: kind.path(),
	})
}

func (a *App) VocabularyDelete(c echo.Context) error {
	rctx := c.Request().Context()

	kind, err := a.vocabularyKind(c)
	if err != nil {
		return err
	}
	entry, err := a.getVocabularyEntry(c, kind)
	if err != nil {
		return err
	}

	if err := kind.store.delete(a.db.WithContext(rctx), entry.ID); err != nil {
		a.l.Error("failed to delete vocabulary entry", zap.String("kind", kind.Slug), zap.Uint("id", entry.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(kind.Singular, "deleted"))
	return c.Redirect(http.StatusFound, kind.path())
}
