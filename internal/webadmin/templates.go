// ABOUTME: Template loading, helper functions and view models for the web UI
// ABOUTME: Pages are parsed once from the embedded filesystem and rendered through the base layout

package webadmin

import (
	"html/template"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/assets"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/auth"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/crud"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/dashboard"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/i18n"
)

var pageNames = []string{"login", "dashboard", "list", "detail", "form"}

type views struct {
	pages map[string]*template.Template
}

func loadViews(funcs template.FuncMap) *views {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		v.pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html",
			"templates/partials/*.html",
			"templates/"+name+".html",
		))
	}
	return v
}

func (a *Admin) funcs() template.FuncMap {
	b := a.deps.Bundle
	return template.FuncMap{
		"t":           b.T,
		"asset":       assets.URL,
		"statusClass": entity.StatusClass,
		"statusLabel": func(lang, status string) string {
			if s, ok := b.Lookup(lang, "status."+status); ok {
				return s
			}
			return status
		},
		"price": func(lang, raw string) string {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return raw
			}
			return i18n.FormatCurrency(lang, f)
		},
		"number": func(lang string, v any) string {
			switch n := v.(type) {
			case int:
				return i18n.FormatNumber(lang, float64(n))
			case float64:
				return i18n.FormatNumber(lang, n)
			}
			return entity.String(v)
		},
		"currency":  i18n.FormatCurrency,
		"add1":      func(n int) int { return n + 1 },
		"sub1":      func(n int) int { return n - 1 },
		"pageSizes": func() []int { return []int{5, 10, 20, 50} },
		"date":      formatDate,
		"cell": func(d *entity.Descriptor, c entity.Column, r entity.Record) string {
			return d.Cell(c, r)
		},
	}
}

// formatDate renders a stored date or timestamp for lang, leaving
// unparseable values as they are.
func formatDate(lang, raw string) string {
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			return i18n.FormatDate(lang, t)
		}
	}
	return raw
}

// render executes a page through the base layout
func (a *Admin) render(w http.ResponseWriter, status int, page string, data any) {
	a.execute(w, status, page, "base", data)
}

// renderPartial executes one named template of a page, for htmx swaps
func (a *Admin) renderPartial(w http.ResponseWriter, page, name string, data any) {
	a.execute(w, http.StatusOK, page, name, data)
}

func (a *Admin) execute(w http.ResponseWriter, status int, page, name string, data any) {
	tmpl, ok := a.views.pages[page]
	if !ok {
		a.logger.Error("unknown page template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("failed to render template", "page", page, "template", name, "error", err)
	}
}

// Template data types

type navItem struct {
	Href   string
	Label  string
	Icon   string
	Active bool
}

type pageData struct {
	Title     string
	Lang      string
	Dir       string
	Languages []i18n.Language
	Username  string
	CSRFToken string
	Nav       []navItem
	Flash     string
	FlashErr  bool
}

type loginData struct {
	pageData
	Error        string
	LastUsername string
	ShowDefaults bool
}

type dashboardData struct {
	pageData
	Summary dashboard.Summary
}

type listData struct {
	pageData
	Desc          *entity.Descriptor
	Page          crud.Page
	Query         crud.Query
	Params        url.Values
	StatusOptions []string
	Pages         []int
	Remote        bool
}

type detailField struct {
	Key   string
	Label string
	Value string
	HTML  template.HTML
}

type detailData struct {
	pageData
	Desc   *entity.Descriptor
	ID     string
	Fields []detailField
}

type formData struct {
	pageData
	Desc   *entity.Descriptor
	ID     string
	IsNew  bool
	Fields []entity.Field
	Values map[string]string
	Errors map[string]string
}

// Link returns the list URL with the given name/value pairs replaced.
// An empty value removes the parameter.
func (d listData) Link(kv ...string) string {
	v := url.Values{}
	for k, vals := range d.Params {
		v[k] = slices.Clone(vals)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			v.Del(kv[i])
		} else {
			v.Set(kv[i], kv[i+1])
		}
	}
	return "/entities/" + string(d.Desc.Kind) + "?" + v.Encode()
}

// SortLink sorts by field ascending, or flips the order when already sorted by it.
func (d listData) SortLink(field string) string {
	if d.Query.SortField == field {
		order := "desc"
		if d.Query.SortDesc {
			order = "asc"
		}
		return d.Link(crud.ParamOrder, order)
	}
	return d.Link(crud.ParamSort, field, crud.ParamOrder, "asc", crud.ParamPage, "1")
}

// SortKey is the field a column sorts by.
func (d listData) SortKey(c entity.Column) string {
	if len(c.Keys) > 0 {
		return c.Keys[0]
	}
	return d.Desc.Searchable()[0]
}

// ExportLink downloads the current page as CSV.
func (d listData) ExportLink() string {
	return "/entities/" + string(d.Desc.Kind) + "/export?" + d.Params.Encode()
}

// FilterValue is the active filter on field, or "".
func (d listData) FilterValue(field string) string {
	return d.Query.Filters[field]
}

// base fills the layout fields shared by every page.
func (a *Admin) base(r *http.Request, title, active string) pageData {
	lang := a.language(r)
	d := pageData{
		Title:     title,
		Lang:      lang,
		Dir:       i18n.Dir(lang),
		Languages: a.deps.Bundle.Languages(),
		CSRFToken: getCSRFToken(r),
	}
	if id := auth.FromContext(r.Context()); id != nil {
		d.Username = id.Username
		d.Nav = a.nav(lang, active)
	}
	if key, ok := flashKeys[r.URL.Query().Get("flash")]; ok {
		d.Flash = a.deps.Bundle.T(lang, key)
		d.FlashErr = strings.HasSuffix(key, "Error")
	}
	return d
}

// flashKeys maps the ?flash= values set by redirects to message keys.
var flashKeys = map[string]string{
	"saved":       "crud.saveSuccess",
	"deleted":     "crud.deleteSuccess",
	"saveError":   "crud.saveError",
	"deleteError": "crud.deleteError",
	"empty":       "export.empty",
}

func (a *Admin) nav(lang, active string) []navItem {
	items := []navItem{{
		Href:   "/dashboard",
		Label:  a.deps.Bundle.T(lang, "nav.dashboard"),
		Icon:   "fa-tachometer-alt",
		Active: active == "dashboard",
	}}
	for _, kind := range a.deps.Registry.Kinds() {
		d := a.deps.Registry.Get(kind)
		items = append(items, navItem{
			Href:   "/entities/" + string(kind),
			Label:  a.kindLabel(lang, d),
			Icon:   d.Icon,
			Active: active == string(kind),
		})
	}
	return items
}

// kindLabel is the translated plural name of a kind.
func (a *Admin) kindLabel(lang string, d *entity.Descriptor) string {
	if s, ok := a.deps.Bundle.Lookup(lang, "nav."+string(d.Kind)); ok {
		return s
	}
	return d.Plural
}

// detailFields lists the descriptor's fields first, then any other keys in
// name order. Markdown fields carry rendered HTML.
func (a *Admin) detailFields(d *entity.Descriptor, r entity.Record) []detailField {
	seen := map[string]bool{"id": true}
	var out []detailField
	add := func(key, label string) {
		v, ok := r.Lookup(key)
		if !ok || seen[key] {
			return
		}
		seen[key] = true
		f := detailField{Key: key, Label: label, Value: entity.String(v)}
		if slices.Contains(d.MarkdownFields, key) && f.Value != "" {
			f.HTML = a.renderMarkdown(f.Value)
		}
		out = append(out, f)
	}
	for _, f := range d.Fields {
		add(f.Name, f.Label)
	}
	for _, key := range slices.Sorted(maps.Keys(r)) {
		add(key, key)
	}
	return out
}

func (a *Admin) renderMarkdown(src string) template.HTML {
	var buf strings.Builder
	if err := a.markdown.Convert([]byte(src), &buf); err != nil {
		a.logger.Warn("markdown render failed", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	// goldmark drops raw HTML unless WithUnsafe is set
	return template.HTML(buf.String())
}

// renderLogin renders the login page
func (a *Admin) renderLogin(w http.ResponseWriter, r *http.Request, status int, username, errMsg string) {
	base := a.base(r, "", "")
	base.Title = a.deps.Bundle.T(base.Lang, "login.title")
	a.render(w, status, "login", loginData{
		pageData:     base,
		Error:        errMsg,
		LastUsername: username,
		ShowDefaults: a.deps.Auth.Username() == "admin",
	})
}
