package web

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFS embed.FS

// StaticFS returns the browser client rooted at the static directory.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
