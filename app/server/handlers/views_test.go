package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicPages(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/login", "/register"} {
		res, _ := env.get(path)
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
	}
}

func TestLoginRequiredRedirects(t *testing.T) {
	env := newTestEnv(t)

	for path, want := range map[string]string{
		"/logout":             "/login?next=%2Flogout",
		"/dashboard":          "/login?next=%2Fdashboard",
		"/admin/dashboard":    "/login?next=%2Fadmin%2Fdashboard",
		"/admin/roles":        "/login?next=%2Fadmin%2Froles",
		"/admin/users":        "/login?next=%2Fadmin%2Fusers",
		"/stix/threat-actors": "/login?next=%2Fstix%2Fthreat-actors",
	} {
		res, _ := env.get(path)
		assert.Equal(t, http.StatusFound, res.StatusCode, path)
		assert.Equal(t, want, location(res), path)
	}
}

func TestForbiddenPage(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("nonadmin", "2", false)
	env.login("nonadmin", "2")

	res, body := env.get("/admin/dashboard")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, body, "403 Error")

	// Browsing works, writing does not
	res, _ = env.get("/admin/users")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = env.get("/admin/users/add")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestNotFoundPage(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.get("/nonexistingpage")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "404 Error")
}

func TestInternalServerErrorPage(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.get("/boom")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, body, "500 Error")
}

func TestDashboards(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("viewer", "secret", false)

	env.login("viewer", "secret")
	res, body := env.get("/dashboard")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "viewer")

	env.loginAdmin()
	res, body = env.get("/admin/dashboard")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Threat actor types")
	assert.Contains(t, body, "Identities")
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	res, _ := env.get("/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
