// Package webadmin provides the server-rendered backoffice UI.
//
// # Overview
//
// The web admin provides a browser-based interface for:
//
//   - Dashboard: headline counters, charts and the recent activity feed
//   - Entities: paginated, searchable, sortable lists per kind
//   - Records: detail pages, create and edit forms, deletion
//   - Export: the current list page as CSV
//
// # Authentication
//
// Login checks the configured administrator credentials and sets a signed
// session cookie. A request is signed in only while the cookie verifies
// and the stored session names the same user, so logging out from any
// browser ends the session everywhere.
//
// # Templates
//
// Templates use Go's html/template with custom functions:
//
//   - Base layout: templates/base.html
//   - Pages: templates/{login,dashboard,list,detail,form}.html
//   - Partials: templates/partials/*.html (htmx swap targets)
//
// Templates are embedded using //go:embed for single-binary deployment.
//
// # CSRF Protection
//
// All form submissions require CSRF tokens:
//
//	<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
//
// htmx requests send the same token in the X-CSRF-Token header.
//
// # Usage
//
//	admin := webadmin.New(deps, webadmin.Config{ItemsPerPage: 10})
//	admin.RegisterRoutes(mux)
package webadmin
