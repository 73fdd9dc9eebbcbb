// Package web provides the embedded viewer and the local preview server.
package web

import (
	"embed"
	"io/fs"
)

// embedded holds the static viewer: index.html and its script.
//
//go:embed assets
var embedded embed.FS

// Assets returns the viewer files rooted at the directory holding index.html.
func Assets() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		// The embedded tree is fixed at build time.
		panic(err)
	}

	return sub
}
