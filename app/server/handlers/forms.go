package handlers

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"html"
	"net/http"
	"reflect"
	"strings"
	"unicode"
)

const (
	msgRequired      = "This field is required."
	msgInvalidEmail  = "Invalid email address."
	msgInvalidDate   = "Not a valid date value."
	msgInvalidChoice = "Not a valid choice."
)

const maxCleanRounds = 8

type RegistrationForm struct {
	Email           string `form:"email" validate:"required,email,max=60"`
	Username        string `form:"username" validate:"required,max=60"`
	Name            string `form:"name" validate:"required,max=120"`
	Password        string `form:"password" validate:"required,eqfield=ConfirmPassword"`
	ConfirmPassword string `form:"confirm_password"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type UserForm struct {
	Email           string `form:"email" validate:"required,email,max=60"`
	Username        string `form:"username" validate:"required,max=60"`
	Name            string `form:"name" validate:"required,max=120"`
	Password        string `form:"password" validate:"required,eqfield=ConfirmPassword"`
	ConfirmPassword string `form:"confirm_password"`
	Role            string `form:"role"`
	IsAdmin         bool   `form:"is_admin"`
}

// UserEditForm keeps the current password when both password fields are left empty.
type UserEditForm struct {
	Email           string `form:"email" validate:"required,email,max=60"`
	Username        string `form:"username" validate:"required,max=60"`
	Name            string `form:"name" validate:"required,max=120"`
	Password        string `form:"password" validate:"eqfield=ConfirmPassword"`
	ConfirmPassword string `form:"confirm_password"`
	Role            string `form:"role"`
	IsAdmin         bool   `form:"is_admin"`
}

type RoleForm struct {
	Name        string `form:"name" validate:"required,max=60"`
	Description string `form:"description" validate:"required,max=200"`
}

type VocabularyForm struct {
	Name        string `form:"name" validate:"required,max=60"`
	Description string `form:"description" validate:"max=200"`
}

type UserAccountForm struct {
	Name              string `form:"name" validate:"required,max=120"`
	Description       string `form:"description"`
	AccountType       string `form:"account_type" validate:"max=60"`
	AccountCreated    string `form:"account_created" validate:"omitempty,datetime=2006-01-02"`
	AccountIsDisabled bool   `form:"account_is_disabled"`
}

type IdentityForm struct {
	Name               string `form:"name" validate:"required,max=120"`
	Description        string `form:"description"`
	ContactInformation string `form:"contact_information" validate:"max=200"`
	Location           string `form:"location" validate:"max=120"`
	IdentityRole       string `form:"identity_role"`
	IdentityClass      string `form:"identity_class"`
}

type ThreatActorForm struct {
	Name                      string `form:"name" validate:"required,max=120"`
	Description               string `form:"description"`
	ContactInformation        string `form:"contact_information" validate:"max=200"`
	Aliases                   string `form:"aliases"`
	FirstSeen                 string `form:"first_seen" validate:"omitempty,datetime=2006-01-02"`
	LastSeen                  string `form:"last_seen" validate:"omitempty,datetime=2006-01-02"`
	Goals                     string `form:"goals"`
	ThreatActorType           string `form:"threat_actor_type"`
	ThreatActorRole           string `form:"threat_actor_role"`
	ThreatActorSophistication string `form:"threat_actor_sophistication"`
	ResourceLevel             string `form:"resource_level"`
	PrimaryMotivation         string `form:"primary_motivation"`
	SecondaryMotivation       string `form:"secondary_motivation"`
	PersonalMotivations       string `form:"personal_motivations"`
}

type PostForm struct {
	Text        string `form:"text" validate:"required"`
	Description string `form:"description"`
}

// cleanable forms strip markup from their free-text fields before validation.
type cleanable interface {
	clean(strip func(string) string)
}

func (f *RegistrationForm) clean(strip func(string) string) {
	f.Email = strings.TrimSpace(f.Email)
	f.Username = strip(f.Username)
	f.Name = strip(f.Name)
}

func (f *LoginForm) clean(strip func(string) string) {
	f.Username = strings.TrimSpace(f.Username)
}

func (f *UserForm) clean(strip func(string) string) {
	f.Email = strings.TrimSpace(f.Email)
	f.Username = strip(f.Username)
	f.Name = strip(f.Name)
}

func (f *UserEditForm) clean(strip func(string) string) {
	f.Email = strings.TrimSpace(f.Email)
	f.Username = strip(f.Username)
	f.Name = strip(f.Name)
}

func (f *RoleForm) clean(strip func(string) string) {
	f.Name = strip(f.Name)
	f.Description = strip(f.Description)
}

func (f *VocabularyForm) clean(strip func(string) string) {
	f.Name = strip(f.Name)
	f.Description = strip(f.Description)
}

func (f *UserAccountForm) clean(strip func(string) string) {
	f.Name = strip(f.Name)
	f.Description = strip(f.Description)
	f.AccountType = strip(f.AccountType)
	f.AccountCreated = strings.TrimSpace(f.AccountCreated)
}

func (f *IdentityForm) clean(strip func(string) string) {
	f.Name = strip(f.Name)
	f.Description = strip(f.Description)
	f.ContactInformation = strip(f.ContactInformation)
	f.Location = strip(f.Location)
}

func (f *ThreatActorForm) clean(strip func(string) string) {
	f.Name = strip(f.Name)
	f.Description = strip(f.Description)
	f.ContactInformation = strip(f.ContactInformation)
	f.Aliases = strip(f.Aliases)
	f.FirstSeen = strings.TrimSpace(f.FirstSeen)
	f.LastSeen = strings.TrimSpace(f.LastSeen)
	f.Goals = strip(f.Goals)
	f.PersonalMotivations = strip(f.PersonalMotivations)
}

func (f *PostForm) clean(strip func(string) string) {
	f.Text = strip(f.Text)
	f.Description = strip(f.Description)
}

// FormErrors maps a form field name to its messages.
type FormErrors map[string][]string

func (fe FormErrors) Add(field string, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FormErrors) Any() bool {
	return len(fe) > 0
}

type formValidator struct {
	v *validator.Validate
}

func (fv *formValidator) Validate(i interface{}) error {
	return fv.v.Struct(i)
}

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the form field name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// bindForm fills form from the request body. Validation problems come back as FormErrors, anything else as error.
func (a *App) bindForm(c echo.Context, form any) (FormErrors, error) {
	if err := c.Bind(form); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	if f, ok := form.(cleanable); ok {
		f.clean(a.clean)
	}

	errs := FormErrors{}
	if err := c.Validate(form); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validate form: %w", err)
		}
		for _, fieldError := range validationErrors {
			errs.Add(fieldError.Field(), validationMessage(fieldError))
		}
	}

	return errs, nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return msgInvalidEmail
	case "eqfield":
		return fmt.Sprintf("Field must be equal to %s.", snakeCase(fe.Param()))
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "datetime":
		return msgInvalidDate
	default:
		return "Invalid value."
	}
}

// ConfirmPassword -> confirm_password
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// clean strips markup from free text. Entities are decoded for storage, so the decoded
// text goes through the sanitiser again until nothing changes.
func (a *App) clean(s string) string {
	for i := 0; i < maxCleanRounds; i++ {
		cleaned := html.UnescapeString(a.policy.Sanitize(s))
		if cleaned == s {
			return strings.TrimSpace(s)
		}
		s = cleaned
	}
	// Did not settle, keep it escaped
	return strings.TrimSpace(a.policy.Sanitize(s))
}
