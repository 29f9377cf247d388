// ABOUTME: Embeds the page templates and htmx partials into the binary
// ABOUTME: Provides templateFS for loadViews

package webadmin

import "embed"

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS
