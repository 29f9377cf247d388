// ABOUTME: Query state to and from URL parameters, shared by the pages, the JSON API and the CLI
// ABOUTME: page, limit, q, sort and order are reserved; other keys are field filters

package crud

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Reserved query parameters
const (
	ParamPage  = "page"
	ParamLimit = "limit"
	ParamQuery = "q"
	ParamSort  = "sort"
	ParamOrder = "order"
)

var reserved = []string{ParamPage, ParamLimit, ParamQuery, ParamSort, ParamOrder}

// ApplyParams sets the query state from v. Filter keys are the non-reserved
// parameters starting with filterPrefix, with the prefix stripped; an empty
// prefix makes every other parameter a filter. The page is applied last so
// the other setters cannot reset it.
func (e *Engine) ApplyParams(v url.Values, filterPrefix string) {
	if n, err := strconv.Atoi(v.Get(ParamLimit)); err == nil {
		e.SetItemsPerPage(n)
	}
	if v.Has(ParamQuery) {
		e.SetSearchTerm(v.Get(ParamQuery))
	}
	if v.Has(ParamSort) || v.Has(ParamOrder) {
		e.SetSort(v.Get(ParamSort), strings.EqualFold(v.Get(ParamOrder), "desc"))
	}
	for _, key := range slices.Sorted(maps.Keys(v)) {
		if slices.Contains(reserved, key) || !strings.HasPrefix(key, filterPrefix) {
			continue
		}
		if field := strings.TrimPrefix(key, filterPrefix); field != "" {
			e.SetFilter(field, v.Get(key))
		}
	}
	if n, err := strconv.Atoi(v.Get(ParamPage)); err == nil {
		e.SetPage(n)
	}
}

// Params encodes the current query state, the inverse of ApplyParams.
func (e *Engine) Params(filterPrefix string) url.Values {
	q := e.query
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(q.Page))
	v.Set(ParamLimit, strconv.Itoa(q.ItemsPerPage))
	if q.Search != "" {
		v.Set(ParamQuery, q.Search)
	}
	v.Set(ParamSort, q.SortField)
	if q.SortDesc {
		v.Set(ParamOrder, "desc")
	} else {
		v.Set(ParamOrder, "asc")
	}
	for k, val := range q.Filters {
		v.Set(filterPrefix+k, val)
	}
	return v
}
