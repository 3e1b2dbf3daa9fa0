package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
)

// Renderer manages template parsing and rendering with isolated template
// sets. Two layouts exist:
//   - "public" layout for marketing and account pages
//   - "auth" layout for the sign-in, registration, and password pages
//
// Templates are organized as:
//   - layouts/public.html, layouts/auth.html - base layouts
//   - components/*.html - reusable components (shared across layouts)
//   - pages/public/*.html - pages using the public layout
//   - pages/auth/*.html - pages using the auth layout
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex

	// For dev mode hot-reload
	templatesDir string
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	TemplatesDir string
	Logger       *slog.Logger
	IsDev        bool
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{
		templates:    make(map[string]*template.Template),
		logger:       cfg.Logger,
		isDev:        cfg.IsDev,
		templatesDir: cfg.TemplatesDir,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	componentFiles, err := filepath.Glob(filepath.Join(r.templatesDir, "components", "*.html"))
	if err != nil {
		return fmt.Errorf("failed to glob components: %w", err)
	}

	layouts := []string{"public", "auth"}
	for _, layout := range layouts {
		layoutPath := filepath.Join(r.templatesDir, "layouts", layout+".html")
		base, err := template.New(layout).Funcs(TemplateFuncs()).ParseFiles(layoutPath)
		if err != nil {
			return fmt.Errorf("failed to parse %s layout: %w", layout, err)
		}

		if len(componentFiles) > 0 {
			base, err = base.ParseFiles(componentFiles...)
			if err != nil {
				return fmt.Errorf("failed to parse components into %s layout: %w", layout, err)
			}
		}

		pages, err := filepath.Glob(filepath.Join(r.templatesDir, "pages", layout, "*.html"))
		if err != nil {
			return fmt.Errorf("failed to glob %s pages: %w", layout, err)
		}

		for _, page := range pages {
			pageTmpl, err := base.Clone()
			if err != nil {
				return fmt.Errorf("failed to clone %s layout for %s: %w", layout, page, err)
			}

			pageTmpl, err = pageTmpl.ParseFiles(page)
			if err != nil {
				return fmt.Errorf("failed to parse page %s: %w", page, err)
			}

			// Store as "public/home", "auth/login", etc.
			pageName := strings.TrimSuffix(filepath.Base(page), filepath.Ext(page))
			r.templates[layout+"/"+pageName] = pageTmpl
		}
	}

	r.logger.Info("templates loaded", "count", len(r.templates))
	return nil
}

// Reload reloads all templates from disk. Useful for development.
func (r *Renderer) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates = make(map[string]*template.Template)
	return r.loadTemplates()
}

// Render renders a template to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return tmpl.ExecuteTemplate(w, layoutName(name), data)
}

// RenderHTTP renders a template directly to an http.ResponseWriter with the
// given status. Content is rendered to a buffer first so a template error
// never produces a half-written page, and the Content-Type header is set
// before the status line is written.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// layoutName determines which base template to execute for a page.
func layoutName(name string) string {
	if strings.HasPrefix(name, "auth/") {
		return "auth"
	}
	return "public"
}

// ListTemplates returns the names of all loaded templates. Useful for
// debugging.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
