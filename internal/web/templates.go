// Package web renders the site's HTML pages from embedded templates.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var files embed.FS

// Pages lists every renderable page; each is parsed together with the layout.
var Pages = []string{"index", "login", "signup", "property"}

// Templates holds one parsed template set per page.
type Templates struct {
	pages map[string]*template.Template
}

func Load() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		tmpl, err := template.New("layout.html").ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// Render executes page into a buffer first so a template error never sends
// a half-written page.
func (t *Templates) Render(w http.ResponseWriter, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
