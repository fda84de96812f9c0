package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"stix-ui/app/server/middlewares"
)

func (a *App) render(c echo.Context, statusCode int, page string, title string, data any) error {
	csrf, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)

	return c.Render(statusCode, page, &Page{
		Title:   title,
		User:    middlewares.CurrentUser(c),
		Flashes: a.takeFlashes(c),
		CSRF:    csrf,
		Data:    data,
	})
}

func (a *App) renderForm(c echo.Context, title string, view *FormView) error {
	return a.render(c, 200, "crud/form.html", title, view)
}

func (a *App) renderDelete(c echo.Context, title string, view *DeleteView) error {
	return a.render(c, 200, "crud/delete.html", title, view)
}
