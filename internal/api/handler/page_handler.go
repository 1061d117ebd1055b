package handler

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/internhub/portal/internal/api/middleware"
	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const shellTemplate = "shell.html"

// TemplateRenderer renders the page shell; it satisfies echo.Renderer.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the embedded templates. It panics on a parse
// error since the templates ship inside the binary.
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{templates: template.Must(template.ParseFS(templateFS, "templates/*.html"))}
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// pageData is what the shell exposes to the page bundle.
type pageData struct {
	Title    string
	Path     string
	Home     string
	Session  *domain.Session
	Clock    service.Snapshot
	Timezone string
}

// PageHandler serves the application shell for every page route. Protected
// routes only reach it through the Gate middleware.
type PageHandler struct {
	shared SharedContext
}

func NewPageHandler(shared SharedContext) *PageHandler {
	return &PageHandler{shared: shared}
}

// Page returns a handler rendering the shell titled title.
func (h *PageHandler) Page(title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		data := pageData{
			Title:    title,
			Path:     c.Request().URL.Path,
			Home:     domain.PathHome,
			Clock:    h.shared.Snapshot(),
			Timezone: h.shared.Location().String(),
		}
		if sess, ok := c.Get(middleware.ContextKeySession).(domain.Session); ok {
			data.Session = &sess
			data.Home = domain.HomePath(sess.Role)
		}
		return c.Render(http.StatusOK, shellTemplate, data)
	}
}
