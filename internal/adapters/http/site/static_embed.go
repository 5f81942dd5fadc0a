package site

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html static/*
var siteFS embed.FS

// StaticFS exposes a sub-filesystem rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(siteFS, "static")
	if err != nil {
		return siteFS
	}
	return sub
}
