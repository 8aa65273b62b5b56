// Package web embeds the server-rendered templates and static assets.
package web

import "embed"

// TemplatesFS holds the page and htmx partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds css and js served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
