package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
)

//go:embed templates/*.tmpl static/*
var Assets embed.FS

// StaticFS returns a file system for serving /static assets.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(Assets, "static")
	if err != nil {
		return http.FS(embed.FS{})
	}
	return http.FS(sub)
}

// Templates parses and returns the embedded templates.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"upper":      strings.ToUpper,
		"pathEscape": url.PathEscape,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(Assets, "templates/*.tmpl"))
}
