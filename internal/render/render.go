// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded HTML templates once and executes them
// into buffered responses.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/session"
)

// Layout files and the template sets parsed with each of them.
const (
	baseLayout  = "layouts/base.html"
	adminLayout = "layouts/admin.html"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	siteName       string
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	SiteName       string
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		siteName:       cfg.SiteName,
	}
	if r.siteName == "" {
		r.siteName = "oStaff"
	}

	partials, err := templateFiles(cfg.TemplatesFS, "partials")
	if err != nil {
		return nil, err
	}

	sets := []struct {
		dir     string
		layouts []string
	}{
		{"public", []string{baseLayout}},
		{"auth", []string{baseLayout}},
		{"admin", []string{baseLayout, adminLayout}},
	}
	for _, set := range sets {
		pages, err := templateFiles(cfg.TemplatesFS, set.dir)
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			name := set.dir + "/" + strings.TrimSuffix(path.Base(page), ".html")

			files := append([]string{}, set.layouts...)
			files = append(files, partials...)
			files = append(files, page)

			tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(cfg.TemplatesFS, files...)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}
	return r, nil
}

// templateFiles lists the .html files of dir. A missing dir yields none.
func templateFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s templates: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// Has reports whether a template is registered under name.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title    string
	SiteName string
	Path     string

	// Data is the page payload; Form echoes submitted values back after a
	// failed submission and Errors maps field names to messages.
	Data   any
	Form   any
	Errors map[string]string

	Flash     string
	FlashType string

	// AdminEmail is set on pages behind the access gate.
	AdminEmail  string
	CurrentYear int
}

// Error returns the message for field, or "".
func (d TemplateData) Error(field string) string {
	return d.Errors[field]
}

// Render executes name with status into w. The page is rendered into a
// buffer first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.SiteName = r.siteName
	data.Path = req.URL.Path
	data.CurrentYear = time.Now().Year()
	if r.sessionManager != nil && data.Flash == "" {
		data.Flash, data.FlashType = session.PopFlash(req.Context(), r.sessionManager)
		if data.Flash != "" && data.FlashType == "" {
			data.FlashType = "info"
		}
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// SetFlash queues a message for the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		session.SetFlash(req.Context(), r.sessionManager, message, flashType)
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006 15:04")
		},
		"formatTimePtr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"truncate": truncate,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"salary":              salary,
		"fromTypes":           model.FromTypes,
		"messageStatuses":     model.MessageStatuses,
		"applicationStatuses": model.ApplicationStatuses,
		"statusClass":         statusClass,
		"dict":                dict,
	}
}

// dict builds a map from alternating keys and values for partials that
// take more than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// salary formats an optional salary range; both ends missing yields "".
func salary(lo, hi *float64) string {
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	switch {
	case lo != nil && hi != nil:
		return format(*lo) + " – " + format(*hi)
	case lo != nil:
		return "from " + format(*lo)
	case hi != nil:
		return "up to " + format(*hi)
	}
	return ""
}

// statusClass maps a row status to a CSS badge class.
func statusClass(status any) string {
	switch fmt.Sprint(status) {
	case "new":
		return "badge badge-new"
	case "read", "reviewed":
		return "badge badge-seen"
	case "interview":
		return "badge badge-progress"
	case "hired":
		return "badge badge-ok"
	case "archived", "rejected":
		return "badge badge-muted"
	}
	return "badge"
}
