// Package ui embeds the HTML templates and static assets of the web server.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates static
var Files embed.FS

// StaticFiles serves the contents of the static directory.
func StaticFiles() http.FileSystem {
	static, err := fs.Sub(Files, "static")
	if err != nil {
		panic(err) // the directory is embedded at compile time
	}
	return http.FS(static)
}
