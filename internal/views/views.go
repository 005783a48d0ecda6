// Package views renders the contact book's HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dyluth/contactbook/pkg/contact"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names accepted by Render.
const (
	PageList   = "contact_list.html"
	PageCreate = "contact_create.html"
	PageView   = "contact_view.html"
	PageEdit   = "contact_edit.html"
	PageDelete = "contact_delete.html"
	PageError  = "error.html"
)

var pages = []string{PageList, PageCreate, PageView, PageEdit, PageDelete, PageError}

// Data is the context handed to every page template.
type Data struct {
	Title    string
	Contacts []contact.Contact // list page
	Contact  contact.Contact   // single-contact pages and the create form
	Message  string            // error page
}

// Renderer turns a page name and its Data into HTML.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every embedded page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}

	for _, page := range pages {
		tmpl, err := template.New(page).ParseFS(templatesFS,
			"templates/layout.html",
			"templates/form_fields.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}

	return r, nil
}

// Render executes page into w. The page is rendered into a buffer first so a
// template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data Data) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page: %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	_, err := buf.WriteTo(w)
	return err
}
