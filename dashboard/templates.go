package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	appfs "github.com/mentormatch/mentormatch/fs"
)

var (
	tmplPattern = "templates/dashboard/*.gohtml"

	// raw HTML in review texts is escaped, never rendered
	md = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
)

// FuncMap is available to every dashboard template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"stars":    Stars,
		"markdown": Markdown,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"hours": func(h float64) string { return fmt.Sprintf("%gh", h) },
	}
}

// Markdown renders text as sanitized HTML.
func Markdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

// ParseTemplates parses the embedded dashboard pages and fragments.
func ParseTemplates() (*template.Template, error) {
	return ParseTemplatesFS(appfs.FS, tmplPattern)
}

func ParseTemplatesFS(fsys fs.FS, patterns ...string) (*template.Template, error) {
	tmpl, err := template.New("dashboard").Funcs(FuncMap()).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("dashboard.ParseTemplates: %w", err)
	}
	return tmpl, nil
}
