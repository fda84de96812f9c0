package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stix-ui/app/server/constants"
	"stix-ui/app/server/models"
)

func vocabularyID[T any, PT models.VocabularyModel[T]](t *testing.T, env *testEnv, name string) uint {
	t.Helper()

	row := PT(new(T))
	require.NoError(t, env.db.First(row, "name = ?", name).Error)
	return row.Base().ID
}

// fieldError is how a form renders a message under its input.
func fieldError(message string) string {
	return `<span class="error">` + message + `</span>`
}

func TestVocabularyPages(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res, body := env.get("/stix/vocabularies")
	require.Equal(t, http.StatusOK, res.StatusCode)
	for _, kind := range vocabularyKinds {
		assert.Contains(t, body, kind.path())
	}

	res, body = env.get("/stix/vocabularies/threat-actor-types")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "nation-state")

	res, _ = env.get("/stix/vocabularies/no-such-kind")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res, _ = env.get("/stix/vocabularies/no-such-kind/add")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestVocabularyCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res, _ := env.post("/stix/vocabularies/identity-roles/add", url.Values{
		"name":        {"analyst"},
		"description": {"Looks at things"},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/stix/vocabularies/identity-roles", location(res))

	_, body := env.get("/stix/vocabularies/identity-roles")
	assert.Contains(t, body, stixMessage("identity role", "added"))
	assert.Contains(t, body, "Looks at things")

	// Duplicate
	res, body = env.post("/stix/vocabularies/identity-roles/add", url.Values{"name": {"analyst"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, fieldError(msgNameInUse))
	assert.NotContains(t, body, `class="flash"`)

	id := vocabularyID[models.IdentityRole](t, env, "analyst")

	// Edit
	res, _ = env.post(fmt.Sprintf("/stix/vocabularies/identity-roles/edit/%d", id), url.Values{
		"name":        {"lead analyst"},
		"description": {"Looks harder"},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)
	var role models.IdentityRole
	require.NoError(t, env.db.First(&role, id).Error)
	assert.Equal(t, "lead analyst", role.Name)
	assert.Equal(t, "Looks harder", role.Description)

	// The same id in another vocabulary is not this entry
	res, _ = env.get(fmt.Sprintf("/stix/vocabularies/identity-roles/edit/%d", id+1000))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// Delete detaches identities
	identity := models.Identity{Name: "ACME", IdentityRoleID: &id}
	require.NoError(t, env.db.Create(&identity).Error)

	res, body = env.get(fmt.Sprintf("/stix/vocabularies/identity-roles/delete/%d", id))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "lead analyst")

	res, _ = env.post(fmt.Sprintf("/stix/vocabularies/identity-roles/delete/%d", id), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)

	require.NoError(t, env.db.First(&identity, identity.ID).Error)
	assert.Nil(t, identity.IdentityRoleID)

	var count int64
	require.NoError(t, env.db.Unscoped().Model(&models.IdentityRole{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVocabularyDeleteDetachesBothMotivations(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	id := vocabularyID[models.AttackMotivation](t, env, "ideology")
	actor := models.ThreatActor{Name: "Zealots", PrimaryMotivationID: &id, SecondaryMotivationID: &id}
	require.NoError(t, env.db.Create(&actor).Error)

	res, _ := env.post(fmt.Sprintf("/stix/vocabularies/attack-motivations/delete/%d", id), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)

	require.NoError(t, env.db.First(&actor, actor.ID).Error)
	assert.Nil(t, actor.PrimaryMotivationID)
	assert.Nil(t, actor.SecondaryMotivationID)
}

func TestVocabularyRefsBuildFreshModels(t *testing.T) {
	table, ok := attackMotivations.store.(vocabularyTable[models.AttackMotivation, *models.AttackMotivation])
	require.True(t, ok)
	require.Len(t, table.refs, 2)

	for _, ref := range table.refs {
		first, second := ref.newModel(), ref.newModel()
		assert.IsType(t, &models.ThreatActor{}, first)
		assert.NotSame(t, first, second, ref.column)
	}
}

func TestVocabularyDeletesInSequence(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	classes := []uint{
		vocabularyID[models.IdentityClass](t, env, "organization"),
		vocabularyID[models.IdentityClass](t, env, "individual"),
	}
	var identities []models.Identity
	for i, classID := range classes {
		identity := models.Identity{Name: fmt.Sprintf("Holder %d", i), IdentityClassID: &classID}
		require.NoError(t, env.db.Create(&identity).Error)
		identities = append(identities, identity)
	}

	for _, classID := range classes {
		res, _ := env.post(fmt.Sprintf("/stix/vocabularies/identity-classes/delete/%d", classID), nil)
		require.Equal(t, http.StatusFound, res.StatusCode)
	}

	for _, identity := range identities {
		var got models.Identity
		require.NoError(t, env.db.First(&got, identity.ID).Error)
		assert.Nil(t, got.IdentityClassID, identity.Name)
	}

	// Another vocabulary pointing at the same table
	res, _ := env.post("/stix/vocabularies/identity-roles/add", url.Values{"name": {"sector lead"}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	roleID := vocabularyID[models.IdentityRole](t, env, "sector lead")
	holder := models.Identity{Name: "Role holder", IdentityRoleID: &roleID}
	require.NoError(t, env.db.Create(&holder).Error)

	res, _ = env.post(fmt.Sprintf("/stix/vocabularies/identity-roles/delete/%d", roleID), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.NoError(t, env.db.First(&holder, holder.ID).Error)
	assert.Nil(t, holder.IdentityRoleID)
}

func TestThreatActorCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	typeID := vocabularyID[models.ThreatActorType](t, env, "nation-state")
	sophisticationID := vocabularyID[models.ThreatActorSophistication](t, env, "expert")
	motivationID := vocabularyID[models.AttackMotivation](t, env, "dominance")

	res, body := env.get("/stix/threat-actors/add")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "nation-state")

	res, _ = env.post("/stix/threat-actors/add", url.Values{
		"name":                        {"APT Example"},
		"description":                 {"<script>alert(1)</script>Seen in the wild"},
		"aliases":                     {"Example Panda, Sample Bear"},
		"first_seen":                  {"2020-01-02"},
		"last_seen":                   {"2021-03-04"},
		"goals":                       {"espionage"},
		"threat_actor_type":           {fmt.Sprint(typeID)},
		"threat_actor_sophistication": {fmt.Sprint(sophisticationID)},
		"primary_motivation":          {fmt.Sprint(motivationID)},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/stix/threat-actors", location(res))

	var actor models.ThreatActor
	require.NoError(t, env.db.First(&actor, "name = ?", "APT Example").Error)
	assert.Equal(t, "Seen in the wild", actor.Description)
	assert.Equal(t, []string{"Example Panda", "Sample Bear"}, actor.Aliases)
	assert.Equal(t, []string{"espionage"}, actor.Goals)
	require.NotNil(t, actor.FirstSeen)
	assert.Equal(t, "2020-01-02", actor.FirstSeen.Format(time.DateOnly))
	require.NotNil(t, actor.ThreatActorTypeID)
	assert.Equal(t, typeID, *actor.ThreatActorTypeID)
	assert.Nil(t, actor.ThreatActorRoleID)
	assert.NotEmpty(t, actor.StixID.String())

	_, body = env.get("/stix/threat-actors")
	assert.Contains(t, body, stixMessage(entityThreatActor, "added"))
	assert.Contains(t, body, "Example Panda, Sample Bear")
	assert.Contains(t, body, "expert")

	// The edit form is filled in
	_, body = env.get(fmt.Sprintf("/stix/threat-actors/edit/%d", actor.ID))
	assert.Contains(t, body, `value="2021-03-04"`)

	res, _ = env.post(fmt.Sprintf("/stix/threat-actors/edit/%d", actor.ID), url.Values{
		"name":    {"APT Example"},
		"aliases": {""},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)
	stixID := actor.StixID
	actor = models.ThreatActor{}
	require.NoError(t, env.db.First(&actor, "name = ?", "APT Example").Error)
	assert.Empty(t, actor.Aliases)
	assert.Nil(t, actor.FirstSeen)
	assert.Nil(t, actor.ThreatActorTypeID)
	assert.Equal(t, stixID, actor.StixID)

	res, _ = env.post(fmt.Sprintf("/stix/threat-actors/delete/%d", actor.ID), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	res, _ = env.get(fmt.Sprintf("/stix/threat-actors/edit/%d", actor.ID))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestThreatActorValidation(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res, body := env.post("/stix/threat-actors/add", url.Values{
		"name":       {"Backwards"},
		"first_seen": {"2021-01-01"},
		"last_seen":  {"2020-01-01"},
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, msgLastSeenBeforeFirstSeen)

	res, body = env.post("/stix/threat-actors/add", url.Values{
		"name":              {"Broken"},
		"first_seen":        {"yesterday"},
		"threat_actor_type": {"424242"},
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, msgInvalidDate)
	assert.Contains(t, body, msgInvalidChoice)

	require.NoError(t, env.db.Create(&models.ThreatActor{Name: "Taken"}).Error)
	res, body = env.post("/stix/threat-actors/add", url.Values{"name": {"Taken"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, fieldError(msgNameInUse))
	assert.NotContains(t, body, `class="flash"`)

	// The message stays on the form, not on the next page
	_, body = env.get("/stix/threat-actors")
	assert.NotContains(t, body, msgNameInUse)

	var count int64
	require.NoError(t, env.db.Model(&models.ThreatActor{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIdentityCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	classID := vocabularyID[models.IdentityClass](t, env, "organization")

	res, _ := env.post("/stix/identities/add", url.Values{
		"name":                {"ACME Corp"},
		"contact_information": {"soc@acme.example"},
		"location":            {"Springfield"},
		"identity_class":      {fmt.Sprint(classID)},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)

	var identity models.Identity
	require.NoError(t, env.db.First(&identity, "name = ?", "ACME Corp").Error)
	require.NotNil(t, identity.IdentityClassID)
	assert.Equal(t, classID, *identity.IdentityClassID)
	assert.Equal(t, "Springfield", identity.Location)

	_, body := env.get("/stix/identities")
	assert.Contains(t, body, stixMessage(entityIdentity, "added"))
	assert.Contains(t, body, "organization")

	require.NoError(t, env.db.Create(&models.Identity{Name: "Globex"}).Error)
	res, body = env.post(fmt.Sprintf("/stix/identities/edit/%d", identity.ID), url.Values{"name": {"Globex"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, fieldError(msgNameInUse))
	assert.NotContains(t, body, `class="flash"`)

	res, _ = env.post(fmt.Sprintf("/stix/identities/edit/%d", identity.ID), url.Values{
		"name":           {"ACME Inc"},
		"identity_class": {""},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.NoError(t, env.db.First(&identity, identity.ID).Error)
	assert.Equal(t, "ACME Inc", identity.Name)
	assert.Nil(t, identity.IdentityClassID)

	res, _ = env.post(fmt.Sprintf("/stix/identities/delete/%d", identity.ID), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	_, body = env.get("/stix/identities")
	assert.Contains(t, body, stixMessage(entityIdentity, "deleted"))
	assert.NotContains(t, body, "ACME Inc")
}

func TestUserAccountCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res, _ := env.post("/stix/user-accounts/add", url.Values{
		"name":                {"jdoe"},
		"account_type":        {"twitter"},
		"account_created":     {"2019-05-06"},
		"account_is_disabled": {"true"},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)

	var account models.UserAccount
	require.NoError(t, env.db.First(&account, "name = ?", "jdoe").Error)
	assert.Equal(t, "twitter", account.AccountType)
	assert.True(t, account.AccountIsDisabled)
	require.NotNil(t, account.AccountCreated)
	assert.Equal(t, "2019-05-06", account.AccountCreated.Format(time.DateOnly))

	_, body := env.get("/stix/user-accounts")
	assert.Contains(t, body, stixMessage(entityUserAccount, "added"))

	res, body = env.post("/stix/user-accounts/add", url.Values{"name": {"jdoe"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, fieldError(msgNameInUse))
	assert.NotContains(t, body, `class="flash"`)

	res, _ = env.post(fmt.Sprintf("/stix/user-accounts/edit/%d", account.ID), url.Values{"name": {"jdoe"}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.NoError(t, env.db.First(&account, account.ID).Error)
	assert.False(t, account.AccountIsDisabled)
	assert.Nil(t, account.AccountCreated)

	res, _ = env.post(fmt.Sprintf("/stix/user-accounts/delete/%d", account.ID), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	_, body = env.get("/stix/user-accounts")
	assert.Contains(t, body, stixMessage(entityUserAccount, "deleted"))
}

func TestPostCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin()

	res, body := env.post("/stix/posts/add", url.Values{"text": {""}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, msgRequired)

	res, _ = env.post("/stix/posts/add", url.Values{
		"text":        {"Observed new infrastructure"},
		"description": {"Weekly summary"},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Equal(t, "Observed new infrastructure", post.Text)

	// Encoded markup is stripped once decoded
	res, _ = env.post(fmt.Sprintf("/stix/posts/edit/%d", post.ID), url.Values{
		"text":        {"&lt;script&gt;alert(1)&lt;/script&gt;Seen again"},
		"description": {"&amp;lt;img src=x onerror=alert(1)&amp;gt;"},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.NoError(t, env.db.First(&post, post.ID).Error)
	assert.Equal(t, "Seen again", post.Text)
	assert.NotContains(t, post.Description, "<")

	res, _ = env.post(fmt.Sprintf("/stix/posts/edit/%d", post.ID), url.Values{"text": {"Updated"}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.NoError(t, env.db.First(&post, post.ID).Error)
	assert.Equal(t, "Updated", post.Text)
	assert.Empty(t, post.Description)

	res, _ = env.post(fmt.Sprintf("/stix/posts/delete/%d", post.ID), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	_, body = env.get(constants.RoutePosts)
	assert.Contains(t, body, stixMessage(entityPost, "deleted"))
}

func TestStixWritesNeedAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("reader", "secret", false)
	env.login("reader", "secret")

	res, _ := env.get("/stix/threat-actors")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = env.post("/stix/threat-actors/add", url.Values{"name": {"Nope"}})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = env.post("/stix/vocabularies/threat-actor-types/add", url.Values{"name": {"nope"}})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "abcde…", excerpt("abcdefghij", 5))
}
