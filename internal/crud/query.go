// ABOUTME: Query state and the paginated read: filter, then search, then sort, then slice
// ABOUTME: Setters mutate the query state; every setter except a sort toggle resets to page 1

package crud

import (
	"slices"
	"strings"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
)

// Query is the pagination, search, sort and filter state.
type Query struct {
	Page         int
	ItemsPerPage int
	Search       string
	SortField    string
	SortDesc     bool
	// Filters maps a dotted field path to its required value.
	Filters map[string]string
}

func defaultQuery(perPage int) Query {
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}
	return Query{
		Page:         1,
		ItemsPerPage: perPage,
		SortField:    "id",
		Filters:      map[string]string{},
	}
}

// Pagination describes the slice returned by Page.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
	// StartIndex and EndIndex are 1-based and inclusive.
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

// Page is one page of query results.
type Page struct {
	Items      []entity.Record `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// Query returns a copy of the current query state.
func (e *Engine) Query() Query {
	q := e.query
	q.Filters = make(map[string]string, len(e.query.Filters))
	for k, v := range e.query.Filters {
		q.Filters[k] = v
	}
	return q
}

// Page applies filters, search and sort to the working set and returns the
// current page.
func (e *Engine) Page() Page {
	rows := e.matching()

	per := e.query.ItemsPerPage
	total := len(rows)
	start := min((e.query.Page-1)*per, total)
	end := start + min(per, total-start)

	return Page{
		Items: entity.CloneAll(rows[start:end]),
		Pagination: Pagination{
			CurrentPage:  e.query.Page,
			TotalPages:   totalPages(total, per),
			TotalItems:   total,
			ItemsPerPage: per,
			StartIndex:   start + 1,
			EndIndex:     end,
		},
	}
}

// TotalPages is the page count of the filtered, searched result.
func (e *Engine) TotalPages() int {
	return totalPages(len(e.matching()), e.query.ItemsPerPage)
}

func totalPages(total, per int) int {
	n := total / per
	if total%per != 0 {
		n++
	}
	return n
}

// matching returns the filtered, searched and sorted rows. Records are
// shared with the working set; callers must clone before handing out.
func (e *Engine) matching() []entity.Record {
	rows := make([]entity.Record, 0, len(e.records))
	for _, r := range e.records {
		if e.passesFilters(r) && e.matchesSearch(r) {
			rows = append(rows, r)
		}
	}
	e.sort(rows)
	return rows
}

func (e *Engine) passesFilters(r entity.Record) bool {
	for key, want := range e.query.Filters {
		v, ok := r.Lookup(key)
		if !ok || !strings.EqualFold(entity.String(v), want) {
			return false
		}
	}
	return true
}

func (e *Engine) matchesSearch(r entity.Record) bool {
	if e.query.Search == "" {
		return true
	}
	term := strings.ToLower(e.query.Search)
	for _, field := range e.desc.Searchable() {
		v, ok := r.Lookup(field)
		if ok && strings.Contains(strings.ToLower(entity.String(v)), term) {
			return true
		}
	}
	return false
}

// sort orders rows stably by the lowercased string form of the sort field,
// using the engine's collator. Digits compare as text, so "10" sorts before
// "9". Missing values sort as "".
func (e *Engine) sort(rows []entity.Record) {
	field := e.query.SortField
	if field == "" || e.collator == nil {
		return
	}
	slices.SortStableFunc(rows, func(a, b entity.Record) int {
		c := e.collator.CompareString(strings.ToLower(a.Text(field)), strings.ToLower(b.Text(field)))
		if e.query.SortDesc {
			return -c
		}
		return c
	})
}

// SetPage moves to page n when 1 <= n <= TotalPages; other values are ignored.
func (e *Engine) SetPage(n int) {
	if n >= 1 && n <= e.TotalPages() {
		e.query.Page = n
	}
}

// SetItemsPerPage changes the page size. Non-positive sizes are ignored.
func (e *Engine) SetItemsPerPage(n int) {
	if n <= 0 {
		return
	}
	e.query.ItemsPerPage = n
	e.query.Page = 1
}

// SetSearchTerm sets the free-text search; "" disables it.
func (e *Engine) SetSearchTerm(term string) {
	e.query.Search = term
	e.query.Page = 1
}

// SetSortField sorts by field ascending, or flips the direction when field
// is already the sort field. Flipping keeps the current page.
func (e *Engine) SetSortField(field string) {
	if field == e.query.SortField {
		e.query.SortDesc = !e.query.SortDesc
		return
	}
	e.query.SortField = field
	e.query.SortDesc = false
	e.query.Page = 1
}

// SetSort sets field and direction explicitly, as when restoring state
// from a URL.
func (e *Engine) SetSort(field string, desc bool) {
	if field == "" {
		field = "id"
	}
	if field != e.query.SortField {
		e.query.Page = 1
	}
	e.query.SortField = field
	e.query.SortDesc = desc
}

// SetFilter requires key to equal value. An empty value or "all" removes
// the filter.
func (e *Engine) SetFilter(key, value string) {
	if value == "" || value == "all" {
		delete(e.query.Filters, key)
	} else {
		e.query.Filters[key] = value
	}
	e.query.Page = 1
}
