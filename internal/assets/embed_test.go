package assets

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMimeFromExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".js", "application/javascript"},
		{".mjs", "application/javascript"},
		{".css", "text/css; charset=utf-8"},
		{".woff2", "font/woff2"},
		{".svg", "image/svg+xml"},
		{".map", "application/json"},
		{".qqqqqq", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := mimeFromExt(tt.ext); got != tt.want {
			t.Errorf("mimeFromExt(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	u := URL("app.css")
	if !strings.HasPrefix(u, "/static/app.css?v=") {
		t.Errorf("URL(app.css) = %q, want versioned URL", u)
	}
	if got := URL("missing.js"); got != "/static/missing.js" {
		t.Errorf("URL(missing.js) = %q", got)
	}
}

func TestFileServer(t *testing.T) {
	srv := http.StripPrefix("/static", FileServer())

	tests := []struct {
		name        string
		url         string
		wantStatus  int
		wantCache   string
		wantType    string
		wantContent string
	}{
		{
			name:        "versioned stylesheet",
			url:         URL("app.css"),
			wantStatus:  http.StatusOK,
			wantCache:   "public, max-age=31536000, immutable",
			wantType:    "text/css; charset=utf-8",
			wantContent: "--primary",
		},
		{
			name:       "unversioned script",
			url:        "/static/app.js",
			wantStatus: http.StatusOK,
			wantCache:  "no-cache",
			wantType:   "application/javascript",
		},
		{
			name:       "stale version",
			url:        "/static/app.js?v=0000000000",
			wantStatus: http.StatusOK,
			wantCache:  "no-cache",
		},
		{
			name:       "missing file",
			url:        "/static/nope.css",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCache != "" && rec.Header().Get("Cache-Control") != tt.wantCache {
				t.Errorf("Cache-Control = %q, want %q", rec.Header().Get("Cache-Control"), tt.wantCache)
			}
			if tt.wantType != "" && rec.Header().Get("Content-Type") != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
			if tt.wantContent != "" && !strings.Contains(rec.Body.String(), tt.wantContent) {
				t.Errorf("body does not contain %q", tt.wantContent)
			}
		})
	}
}
