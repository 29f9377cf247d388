// ABOUTME: Entity pages: paginated list, detail, create/edit forms, delete and CSV export
// ABOUTME: Every request builds a CRUD engine for the kind and applies the URL query state

package webadmin

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/crud"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
)

// managedFields are set by the engine and never edited in forms.
var managedFields = []string{"id", "createdAt", "updatedAt"}

// handleList renders the entity table; htmx requests get the table only
func (a *Admin) handleList(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lang := a.language(r)

	var (
		desc   *entity.Descriptor
		page   crud.Page
		query  crud.Query
		params url.Values
	)
	a.withEngine(r.Context(), kind, lang, func(e *crud.Engine) {
		e.ApplyParams(r.URL.Query(), filterPrefix)
		a.searchRemote(r, e)
		desc, page, query, params = e.Descriptor(), e.Page(), e.Query(), e.Params(filterPrefix)
	})

	data := listData{
		pageData:      a.base(r, a.kindLabel(lang, desc), string(kind)),
		Desc:          desc,
		Page:          page,
		Query:         query,
		Params:        params,
		StatusOptions: desc.StatusOptions(),
		Pages:         pageNumbers(page.Pagination.TotalPages),
		Remote:        a.config.Remote,
	}

	if r.Header.Get("HX-Request") == "true" {
		a.renderPartial(w, "list", "entity_table", data)
		return
	}
	a.render(w, http.StatusOK, "list", data)
}

// searchRemote pushes the search term to the remote source. A failed search
// leaves the loaded records in place.
func (a *Admin) searchRemote(r *http.Request, e *crud.Engine) {
	if err := e.SearchRemote(r.Context()); err != nil {
		a.logger.Warn("remote search failed", "kind", e.Kind(), "error", err)
	}
}

func pageNumbers(total int) []int {
	out := make([]int, total)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// handleExport downloads the current page as CSV
func (a *Admin) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var (
		export crud.Export
		params url.Values
	)
	a.withEngine(r.Context(), kind, a.language(r), func(e *crud.Engine) {
		e.ApplyParams(r.URL.Query(), filterPrefix)
		a.searchRemote(r, e)
		export, err = e.ExportCurrentPageCSV()
		params = e.Params(filterPrefix)
	})

	if err != nil {
		if errors.Is(err, crud.ErrEmptyPage) {
			params.Set("flash", "empty")
			http.Redirect(w, r, "/entities/"+string(kind)+"?"+params.Encode(), http.StatusSeeOther)
			return
		}
		a.logger.Error("export failed", "kind", kind, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	_, _ = w.Write(export.Data)
}

// handleDetail renders one record
func (a *Admin) handleDetail(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lang := a.language(r)
	id := entity.CanonicalID(r.PathValue("id"))

	var (
		desc *entity.Descriptor
		rec  entity.Record
		ok   bool
	)
	a.withEngine(r.Context(), kind, lang, func(e *crud.Engine) {
		desc = e.Descriptor()
		rec, ok = e.Find(r.Context(), id)
	})

	if !ok {
		http.Error(w, a.deps.Bundle.T(lang, "error.notFound"), http.StatusNotFound)
		return
	}

	if err := a.deps.Storage.SetCurrent(r.Context(), string(kind), id); err != nil {
		a.logger.Warn("failed to remember current item", "kind", kind, "id", id, "error", err)
	}

	title := desc.Singular + " #" + id
	a.render(w, http.StatusOK, "detail", detailData{
		pageData: a.base(r, title, string(kind)),
		Desc:     desc,
		ID:       id,
		Fields:   a.detailFields(desc, rec),
	})
}

// handleNew renders an empty create form
func (a *Admin) handleNew(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	desc := a.deps.Registry.Get(kind)
	lang := a.language(r)

	a.render(w, http.StatusOK, "form", formData{
		pageData: a.base(r, a.deps.Bundle.T(lang, "crud.create"), string(kind)),
		Desc:     desc,
		IsNew:    true,
		Fields:   formFields(desc, nil),
		Values:   map[string]string{},
		Errors:   map[string]string{},
	})
}

// handleEdit renders the edit form for a record
func (a *Admin) handleEdit(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lang := a.language(r)
	id := entity.CanonicalID(r.PathValue("id"))

	var (
		desc *entity.Descriptor
		rec  entity.Record
		ok   bool
	)
	a.withEngine(r.Context(), kind, lang, func(e *crud.Engine) {
		desc = e.Descriptor()
		rec, ok = e.Find(r.Context(), id)
	})

	if !ok {
		http.Error(w, a.deps.Bundle.T(lang, "error.notFound"), http.StatusNotFound)
		return
	}

	fields := formFields(desc, rec)
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = rec.Text(f.Name)
	}

	a.render(w, http.StatusOK, "form", formData{
		pageData: a.base(r, a.deps.Bundle.T(lang, "crud.update"), string(kind)),
		Desc:     desc,
		ID:       id,
		Fields:   fields,
		Values:   values,
		Errors:   map[string]string{},
	})
}

// handleCreate processes the create form
func (a *Admin) handleCreate(w http.ResponseWriter, r *http.Request) {
	a.handleSave(w, r, "")
}

// handleUpdate processes the edit form
func (a *Admin) handleUpdate(w http.ResponseWriter, r *http.Request) {
	a.handleSave(w, r, entity.CanonicalID(r.PathValue("id")))
}

func (a *Admin) handleSave(w http.ResponseWriter, r *http.Request, id string) {
	kind, err := kindFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lang := a.language(r)

	if err := r.ParseForm(); err != nil || !a.validateCSRF(r) {
		http.Error(w, a.deps.Bundle.T(lang, "error.csrf"), http.StatusForbidden)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	e := a.engine(r.Context(), kind, lang)
	desc := e.Descriptor()

	var existing entity.Record
	if id != "" {
		rec, ok := e.Find(r.Context(), id)
		if !ok && !a.config.Remote {
			http.Error(w, a.deps.Bundle.T(lang, "error.notFound"), http.StatusNotFound)
			return
		}
		existing = rec
	}

	fields := formFields(desc, existing)
	data, values, fieldErrs := parseForm(fields, r.PostForm)
	if len(fieldErrs) > 0 {
		w.Header().Set("HX-Retarget", "body")
		a.renderForm(w, r, http.StatusUnprocessableEntity, desc, id, fields, values, fieldErrs, "")
		return
	}

	var saved entity.Record
	if id == "" {
		saved, err = e.Create(r.Context(), data)
	} else {
		saved, err = e.Update(r.Context(), id, data)
	}
	if err != nil {
		a.logger.Error("save failed", "kind", kind, "id", id, "error", err)
		if errors.Is(err, crud.ErrNotFound) {
			http.Error(w, a.deps.Bundle.T(lang, "error.notFound"), http.StatusNotFound)
			return
		}
		a.renderForm(w, r, http.StatusInternalServerError, desc, id, fields, values, nil, a.deps.Bundle.T(lang, "crud.saveError"))
		return
	}

	target := "/entities/" + string(kind) + "?flash=saved"
	if id != "" {
		target = "/entities/" + string(kind) + "/" + url.PathEscape(saved.ID()) + "?flash=saved"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (a *Admin) renderForm(w http.ResponseWriter, r *http.Request, status int, desc *entity.Descriptor, id string, fields []entity.Field, values, fieldErrs map[string]string, flash string) {
	lang := a.language(r)
	titleKey := "crud.update"
	if id == "" {
		titleKey = "crud.create"
	}
	base := a.base(r, a.deps.Bundle.T(lang, titleKey), string(desc.Kind))
	if flash != "" {
		base.Flash, base.FlashErr = flash, true
	}
	if fieldErrs == nil {
		fieldErrs = map[string]string{}
	}
	a.render(w, status, "form", formData{
		pageData: base,
		Desc:     desc,
		ID:       id,
		IsNew:    id == "",
		Fields:   fields,
		Values:   values,
		Errors:   fieldErrs,
	})
}

// handleDelete removes a record
func (a *Admin) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lang := a.language(r)

	if err := r.ParseForm(); err != nil || !a.validateCSRF(r) {
		http.Error(w, a.deps.Bundle.T(lang, "error.csrf"), http.StatusForbidden)
		return
	}
	id := entity.CanonicalID(r.PathValue("id"))

	a.withEngine(r.Context(), kind, lang, func(e *crud.Engine) {
		err = e.Delete(r.Context(), id)
	})

	flash := "deleted"
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			http.Error(w, a.deps.Bundle.T(lang, "error.notFound"), http.StatusNotFound)
			return
		}
		a.logger.Error("delete failed", "kind", kind, "id", id, "error", err)
		flash = "deleteError"
	}

	http.Redirect(w, r, "/entities/"+string(kind)+"?flash="+flash, http.StatusSeeOther)
}

// formFields returns the editable fields of a kind. Kinds without a form
// schema edit the record's own keys as text.
func formFields(desc *entity.Descriptor, rec entity.Record) []entity.Field {
	if len(desc.Fields) > 0 {
		return desc.Fields
	}
	var out []entity.Field
	for _, key := range slices.Sorted(maps.Keys(rec)) {
		if slices.Contains(managedFields, key) {
			continue
		}
		out = append(out, entity.Field{Name: key, Label: key, Type: entity.FieldText})
	}
	return out
}

// parseForm converts submitted values by field type. It returns the record
// data, the raw values for re-display and message keys for invalid fields.
func parseForm(fields []entity.Field, form url.Values) (entity.Record, map[string]string, map[string]string) {
	data := entity.Record{}
	values := make(map[string]string, len(fields))
	errs := map[string]string{}

	for _, f := range fields {
		raw := strings.TrimSpace(form.Get(f.Name))
		values[f.Name] = raw

		if raw == "" {
			if f.Required {
				errs[f.Name] = "form.required"
				continue
			}
			data[f.Name] = ""
			continue
		}

		if f.Type == entity.FieldNumber {
			n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				errs[f.Name] = "form.number"
				continue
			}
			data[f.Name] = n
			continue
		}
		data[f.Name] = raw
	}
	return data, values, errs
}
