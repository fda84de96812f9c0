package handlers

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "confirm_password", snakeCase("ConfirmPassword"))
	assert.Equal(t, "name", snakeCase("Name"))
}

func TestFormValidatorUsesFormNames(t *testing.T) {
	fv := &formValidator{v: newFormValidator()}

	err := fv.Validate(&ThreatActorForm{Name: "", FirstSeen: "2020-13-01"})
	assert.ErrorContains(t, err, "'name'")
	assert.ErrorContains(t, err, "'first_seen'")

	assert.NoError(t, fv.Validate(&ThreatActorForm{Name: "ok", FirstSeen: "2020-12-01"}))
	assert.NoError(t, fv.Validate(&UserEditForm{Email: "a@b.c", Username: "u", Name: "n"}))
	assert.Error(t, fv.Validate(&UserForm{Email: "a@b.c", Username: "u", Name: "n"}))
}

func TestClean(t *testing.T) {
	a := &App{policy: bluemonday.StrictPolicy()}

	assert.Equal(t, "hello", a.clean("  <b>hello</b> "))
	assert.Equal(t, "Tom & Jerry", a.clean("Tom & Jerry"))
	assert.Equal(t, "", a.clean("<script>alert(1)</script>"))
	assert.Equal(t, "", a.clean("&lt;script&gt;alert(1)&lt;/script&gt;"))
	assert.Equal(t, "", a.clean("&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;"))
	assert.Equal(t, "a < b", a.clean("a &lt; b"))
	assert.NotContains(t, a.clean("&lt;img src=x onerror=alert(1)&gt;caption"), "<img")

	form := RoleForm{Name: "<i>analyst</i>", Description: "<p>reads</p>"}
	form.clean(a.clean)
	assert.Equal(t, "analyst", form.Name)
	assert.Equal(t, "reads", form.Description)
}

func TestFormErrors(t *testing.T) {
	errs := FormErrors{}
	assert.False(t, errs.Any())

	errs.Add("name", msgRequired)
	errs.Add("name", msgNameInUse)
	assert.True(t, errs.Any())
	assert.Equal(t, []string{msgRequired, msgNameInUse}, errs["name"])
}
