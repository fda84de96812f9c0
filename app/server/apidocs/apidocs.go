package apidocs

import (
	"bytes"
	"html/template"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
)

type Opts func(*options)

type options struct {
	Title   string
	SpecURL string
}

// WithTitle sets the title of the documentation page.
func WithTitle(title string) Opts {
	return func(o *options) {
		o.Title = title
	}
}

var pageTmpl = template.Must(template.New("apidocs").Parse(pageTemplate))

// Doc serves an OpenAPI document below basePath:
//
//	<basePath>              redirects to the page
//	<basePath>/apidocs      API reference page
//	<basePath>/apispec.json the document itself
//
// Everything else is passed on. Mount it with echo.Pre so it runs before routing.
func Doc(basePath string, apiJSON []byte, opts ...Opts) echo.MiddlewareFunc {
	o := &options{
		Title:   "API documentation",
		SpecURL: path.Join(basePath, "apispec.json"),
	}
	for _, opt := range opts {
		opt(o)
	}

	docPath := path.Join(basePath, "apidocs")

	var page bytes.Buffer
	if err := pageTmpl.Execute(&page, o); err != nil {
		panic(err)
	}
	pageHTML := page.String()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().URL.Path {
			case basePath:
				return c.Redirect(http.StatusFound, docPath)
			case docPath:
				return c.HTML(http.StatusOK, pageHTML)
			case o.SpecURL:
				return c.JSONBlob(http.StatusOK, apiJSON)
			default:
				return next(c)
			}
		}
	}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <title>{{ .Title }}</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body>
    <script id="api-reference" data-url="{{ .SpecURL }}"></script>
    <script src="https://cdnjs.cloudflare.com/ajax/libs/scalar-api-reference/1.25.99/standalone.min.js" integrity="sha512-ai3lOYZ5efNXMYwnqhz0mnCaImbqfwLE1VCx9Y9nhB3OJX4/uegjIAoQtJHy3SILHp/gS1OlPCIeNFPZT5i2WQ==" crossorigin="anonymous" referrerpolicy="no-referrer"></script>
  </body>
</html>`
