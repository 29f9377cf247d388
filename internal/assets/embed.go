// Package assets serves the backoffice stylesheet and scripts embedded via go:embed.
// Each file gets a content digest so pages can link versioned URLs that are
// cached forever, while unversioned requests are revalidated.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

// Prefix is where the file server is mounted.
const Prefix = "/static/"

// versions maps a file name (e.g. "app.css") to its short content digest.
var versions = map[string]string{}

func init() {
	// Errors are ignored: these only fail if extension format is invalid,
	// and our literals are known-good.
	_ = mime.AddExtensionType(".woff2", "font/woff2")
	_ = mime.AddExtensionType(".map", "application/json")

	_ = fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(staticFS, p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		versions[strings.TrimPrefix(p, "static/")] = hex.EncodeToString(sum[:])[:10]
		return nil
	})
}

// URL returns the versioned URL for an embedded file, or the plain URL when
// the file is unknown.
func URL(name string) string {
	v, ok := versions[name]
	if !ok {
		return Prefix + name
	}
	return Prefix + name + "?v=" + v
}

// isVersioned reports whether the request carries the current digest of
// the file it asks for.
func isVersioned(name, v string) bool {
	want, ok := versions[name]
	return ok && v != "" && v == want
}

// mimeFromExt returns the MIME type for a file extension.
// Falls back to the Go standard library's MIME type database,
// then to "application/octet-stream" if unknown.
func mimeFromExt(ext string) string {
	switch ext {
	case ".js", ".mjs":
		return "application/javascript"
	case ".css":
		return "text/css; charset=utf-8"
	case ".woff2":
		return "font/woff2"
	case ".svg":
		return "image/svg+xml"
	case ".map":
		return "application/json"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

// FileServer returns an http.Handler that serves embedded assets from static/.
// Versioned requests get immutable cache headers; others get no-cache.
// The handler expects paths relative to the static root (strip Prefix before calling).
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: failed to create sub filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		ext := strings.ToLower(path.Ext(name))
		if ext != "" {
			w.Header().Set("Content-Type", mimeFromExt(ext))
		}

		if isVersioned(name, r.URL.Query().Get("v")) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}

		fileServer.ServeHTTP(w, r)
	})
}
