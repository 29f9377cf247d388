// ABOUTME: Tests for applying and encoding query state as URL parameters
// ABOUTME: Covers reserved keys, filter prefixes and the page-last ordering

package crud

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyParams(t *testing.T) {
	env := seedUsers(t, 23)

	env.engine.ApplyParams(url.Values{
		"page":     {"2"},
		"limit":    {"5"},
		"sort":     {"id"},
		"order":    {"desc"},
		"f.status": {"active"},
		"ignored":  {"x"},
	}, "f.")

	q := env.engine.Query()
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.ItemsPerPage)
	assert.True(t, q.SortDesc)
	assert.Equal(t, map[string]string{"status": "active"}, q.Filters)

	page := env.engine.Page()
	assert.Equal(t, 11, page.Pagination.TotalItems)
	assert.Equal(t, []string{"12", "10", "8", "6", "4"}, ids(page.Items))
}

func TestApplyParams_NoPrefixMakesEveryOtherKeyAFilter(t *testing.T) {
	env := seedUsers(t, 23)

	env.engine.ApplyParams(url.Values{"address.city": {"Paris"}, "q": {"user0"}}, "")

	q := env.engine.Query()
	assert.Equal(t, map[string]string{"address.city": "Paris"}, q.Filters)
	assert.Equal(t, "user0", q.Search)
	assert.Equal(t, 5, env.engine.Page().Pagination.TotalItems)
}

func TestApplyParams_OutOfRangePageIgnored(t *testing.T) {
	env := seedUsers(t, 23)

	env.engine.ApplyParams(url.Values{"page": {"9"}, "limit": {"abc"}}, "")

	q := env.engine.Query()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultItemsPerPage, q.ItemsPerPage)
}

func TestParams_RoundTrip(t *testing.T) {
	env := seedUsers(t, 23)
	env.engine.SetItemsPerPage(4)
	env.engine.SetSearchTerm("martin")
	env.engine.SetFilter("role", "admin")
	env.engine.SetSort("email", true)
	env.engine.SetPage(2)

	v := env.engine.Params("f.")
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "4", v.Get("limit"))
	assert.Equal(t, "martin", v.Get("q"))
	assert.Equal(t, "email", v.Get("sort"))
	assert.Equal(t, "desc", v.Get("order"))
	assert.Equal(t, "admin", v.Get("f.role"))

	other := seedUsers(t, 23)
	other.engine.ApplyParams(v, "f.")
	assert.Equal(t, env.engine.Query(), other.engine.Query())
}
