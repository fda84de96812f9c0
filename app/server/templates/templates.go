package templates

import (
	"embed"
	"fmt"
	"github.com/labstack/echo/v4"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

//go:embed layout.html pages
var files embed.FS

// Renderer executes a page inside the shared layout. Pages are addressed by their path below pages/,
// e.g. "crud/list.html".
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

func New() (*Renderer, error) {
	names, err := fs.Glob(files, "pages/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	r := &Renderer{
		pages: make(map[string]*template.Template, len(names)),
	}
	for _, name := range names {
		t, err := template.ParseFS(files, "layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[strings.TrimPrefix(name, "pages/")] = t
	}

	return r, nil
}

func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("no such page: %s", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
