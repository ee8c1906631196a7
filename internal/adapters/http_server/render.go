package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"

	"hotel_editor/internal/adapters/session"
	"hotel_editor/internal/app"
	"hotel_editor/internal/domain"
)

//go:embed templates
var templatesFS embed.FS

// Renderer executes page templates inside the base layout.
type Renderer struct {
	templates map[string]*template.Template
	sessions  *scs.SessionManager
}

func NewRenderer(sm *scs.SessionManager) (*Renderer, error) {
	r := &Renderer{templates: map[string]*template.Template{}, sessions: sm}
	pages, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		name := strings.TrimSuffix(path.Base(p), ".html")
		tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/layouts/base.html", p)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// inputField is what the field partials need to draw one input.
type inputField struct {
	Name, Label, Value, Error string
	Required                  bool
}

func roomField(i int, field string) string { return fmt.Sprintf("rooms[%d].%s", i, field) }

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"roomField": roomField,
		"fieldOf": func(v app.View, name, label, value string, required bool) inputField {
			return inputField{Name: name, Label: label, Value: value, Error: v.FieldError(name), Required: required}
		},
		"roomOf": func(v app.View, i int, field, label, value string) inputField {
			name := roomField(i, field)
			return inputField{Name: name, Label: label, Value: value, Error: v.FieldError(name), Required: true}
		},
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       *domain.Notice
	CurrentYear int
}

// Render writes page name with status. A pending flash notice is shown once.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data TemplateData) {
	tmpl, ok := rd.templates[name]
	if !ok {
		zerolog.Ctx(r.Context()).Error().Str("template", name).Msg("template not found")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.CurrentYear = time.Now().Year()
	if rd.sessions != nil {
		if n, ok := session.PopFlash(r.Context(), rd.sessions); ok {
			data.Flash = &n
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("template execution failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
