// Package web embeds the server-rendered templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templates embed.FS

// Load parses the embedded templates.
func Load() (*template.Template, error) {
	return template.ParseFS(templates, "templates/*.html")
}
