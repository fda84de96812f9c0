package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/models"
)

func (a *App) Index(c echo.Context) error {
	return a.render(c, http.StatusOK, "home/index.html", "Home", nil)
}

func (a *App) Dashboard(c echo.Context) error {
	return a.render(c, http.StatusOK, "home/dashboard.html", "Dashboard", nil)
}

func (a *App) AdminDashboard(c echo.Context) error {
	db := a.db.WithContext(c.Request().Context())

	counters := []struct {
		label string
		url   string
		model any
	}{
		{"Users", constants.RouteUsers, &models.User{}},
		{"Roles", constants.RouteRoles, &models.Role{}},
		{"Identities", constants.RouteIdentities, &models.Identity{}},
		{"Threat actors", constants.RouteThreatActors, &models.ThreatActor{}},
		{"User accounts", constants.RouteUserAccounts, &models.UserAccount{}},
		{"Posts", constants.RoutePosts, &models.Post{}},
	}

	var counts []CountEntry
	for _, counter := range counters {
		var count int64
		if err := db.Model(counter.model).Count(&count).Error; err != nil {
			a.l.Error("failed to count", zap.String("entity", counter.label), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		counts = append(counts, CountEntry{Label: counter.label, URL: counter.url, Count: count})
	}
	for _, kind := range vocabularyKinds {
		count, err := kind.store.count(db)
		if err != nil {
			a.l.Error("failed to count", zap.String("entity", kind.Slug), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		counts = append(counts, CountEntry{Label: kind.Title, URL: kind.path(), Count: count})
	}

	return a.render(c, http.StatusOK, "home/admin_dashboard.html", "Admin Dashboard", map[string]any{
		"Counts": counts,
	})
}
