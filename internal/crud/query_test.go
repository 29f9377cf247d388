// ABOUTME: Tests for the paginated read and the query setters
// ABOUTME: Covers filter/search/sort composition, pagination metadata and setter page resets

package crud

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
)

func seedUsers(t *testing.T, n int) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	roles := []string{"admin", "user", "editor"}
	recs := make([]entity.Record, 0, n)
	for i := 1; i <= n; i++ {
		recs = append(recs, entity.Record{
			"id":        fmt.Sprint(i),
			"firstName": fmt.Sprintf("User%02d", i),
			"lastName":  "Martin",
			"email":     fmt.Sprintf("u%d@example.com", i),
			"role":      roles[i%len(roles)],
			"status":    map[bool]string{true: "active", false: "Inactive"}[i%2 == 0],
			"address":   map[string]any{"city": map[bool]string{true: "Paris", false: "Lyon"}[i <= 5]},
		})
	}
	env.seed(t, entity.Users, recs...)
	return env
}

func TestPage_DefaultsReturnFirstPageOfAll(t *testing.T) {
	env := seedUsers(t, 23)
	page := env.engine.Page()

	assert.Equal(t, Pagination{
		CurrentPage:  1,
		TotalPages:   3,
		TotalItems:   23,
		ItemsPerPage: 10,
		StartIndex:   1,
		EndIndex:     10,
	}, page.Pagination)
	assert.Equal(t, []string{"1", "10", "11", "12", "13", "14", "15", "16", "17", "18"}, ids(page.Items))
}

func TestPage_LastPageIsPartial(t *testing.T) {
	env := seedUsers(t, 23)
	env.engine.SetPage(3)

	page := env.engine.Page()
	assert.Equal(t, []string{"7", "8", "9"}, ids(page.Items))
	assert.Equal(t, 21, page.Pagination.StartIndex)
	assert.Equal(t, 23, page.Pagination.EndIndex)
}

func TestPage_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, entity.Users)

	p := env.engine.Page().Pagination
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.TotalItems)
	assert.Equal(t, 1, p.StartIndex)
	assert.Equal(t, 0, p.EndIndex)
}

func TestPage_ReturnsCopies(t *testing.T) {
	env := seedUsers(t, 3)
	env.engine.Page().Items[0]["firstName"] = "changed"

	rec, _ := env.engine.GetByID("1")
	assert.Equal(t, "User01", rec["firstName"])
}

func TestFilter_CaseInsensitiveEquality(t *testing.T) {
	env := seedUsers(t, 10)

	env.engine.SetFilter("status", "INACTIVE")
	page := env.engine.Page()
	assert.Equal(t, 5, page.Pagination.TotalItems)
	for _, r := range page.Items {
		assert.Equal(t, "Inactive", r["status"])
	}
}

func TestFilter_DottedPath(t *testing.T) {
	env := seedUsers(t, 10)
	env.engine.SetFilter("address.city", "paris")
	assert.Equal(t, 5, env.engine.Page().Pagination.TotalItems)
}

func TestFilter_MissingFieldNeverMatches(t *testing.T) {
	env := seedUsers(t, 4)
	env.engine.SetFilter("country", "France")
	assert.Equal(t, 0, env.engine.Page().Pagination.TotalItems)
}

func TestFilter_AllIsSameAsUnset(t *testing.T) {
	env := seedUsers(t, 15)
	baseline := env.engine.Page()

	env.engine.SetFilter("status", "active")
	env.engine.SetFilter("status", "all")
	assert.Equal(t, baseline, env.engine.Page())

	env.engine.SetFilter("role", "admin")
	env.engine.SetFilter("role", "")
	assert.Equal(t, baseline, env.engine.Page())
	assert.Empty(t, env.engine.Query().Filters)
}

func TestSearch_SubstringOverSearchFields(t *testing.T) {
	env := seedUsers(t, 12)

	env.engine.SetSearchTerm("user1")
	assert.Equal(t, []string{"10", "11", "12"}, ids(env.engine.Page().Items))

	env.engine.SetSearchTerm("EDITOR")
	for _, r := range env.engine.Page().Items {
		assert.Equal(t, "editor", r["role"])
	}

	env.engine.SetSearchTerm("u3@example")
	assert.Equal(t, []string{"3"}, ids(env.engine.Page().Items), "email is a user search field")

	env.engine.SetSearchTerm("Paris")
	assert.Empty(t, env.engine.Page().Items, "address is not a search field")
}

func TestSearch_ComposesWithFilters(t *testing.T) {
	env := seedUsers(t, 12)
	env.engine.SetFilter("status", "active")
	env.engine.SetSearchTerm("user1")
	assert.Equal(t, []string{"10", "12"}, ids(env.engine.Page().Items))
}

func TestSort_ToggleDirection(t *testing.T) {
	env := seedUsers(t, 12)

	env.engine.SetSortField("firstName")
	asc := env.engine.Page()
	assert.Equal(t, "User01", asc.Items[0]["firstName"])
	assert.False(t, env.engine.Query().SortDesc)

	env.engine.SetSortField("firstName")
	desc := env.engine.Page()
	assert.True(t, env.engine.Query().SortDesc)
	assert.Equal(t, "User12", desc.Items[0]["firstName"])

	env.engine.SetPage(2)
	lastPage := env.engine.Page().Items
	assert.Equal(t, "User01", lastPage[len(lastPage)-1]["firstName"])
}

func TestSort_DigitsCompareAsText(t *testing.T) {
	env := seedUsers(t, 12)
	env.engine.SetItemsPerPage(12)
	got := ids(env.engine.Page().Items)
	assert.Equal(t, []string{"1", "10", "11", "12", "2", "3", "4", "5", "6", "7", "8", "9"}, got)
}

func TestSort_DecimalColumnUsesStringOrder(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, entity.Products,
		entity.Record{"id": "1", "price": 10.3},
		entity.Record{"id": "2", "price": 10.25},
		entity.Record{"id": "3", "price": 9.5},
		entity.Record{"id": "4", "price": -5.0},
		entity.Record{"id": "5", "price": -10.0},
	)
	env.engine.SetSortField("price")

	var prices []string
	for _, r := range env.engine.Page().Items {
		prices = append(prices, r.Text("price"))
	}
	assert.Equal(t, []string{"-10", "-5", "10.25", "10.3", "9.5"}, prices)

	env.engine.SetSortField("price")
	assert.Equal(t, []string{"3", "1", "2", "4", "5"}, ids(env.engine.Page().Items))
}

func TestSort_MissingValuesFirstAndStable(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, entity.Products,
		entity.Record{"id": "1", "category": "Sports"},
		entity.Record{"id": "2"},
		entity.Record{"id": "3", "category": "maison"},
		entity.Record{"id": "4", "category": "Maison"},
	)
	env.engine.SetSortField("category")
	assert.Equal(t, []string{"2", "3", "4", "1"}, ids(env.engine.Page().Items))
}

func TestSort_LocaleAware(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, entity.Products,
		entity.Record{"id": "1", "category": "Vêtements"},
		entity.Record{"id": "2", "category": "Électronique"},
		entity.Record{"id": "3", "category": "Alimentation"},
	)
	env.engine.SetSortField("category")
	assert.Equal(t, []string{"3", "2", "1"}, ids(env.engine.Page().Items), "É sorts with E, not after Z")
}

func TestSetters_ResetPage(t *testing.T) {
	env := seedUsers(t, 40)
	reset := map[string]func(){
		"items per page": func() { env.engine.SetItemsPerPage(5) },
		"search":         func() { env.engine.SetSearchTerm("User") },
		"filter":         func() { env.engine.SetFilter("lastName", "martin") },
		"new sort field": func() { env.engine.SetSortField("email") },
	}
	for name, set := range reset {
		t.Run(name, func(t *testing.T) {
			env.engine.SetPage(2)
			require.Equal(t, 2, env.engine.Query().Page)
			set()
			assert.Equal(t, 1, env.engine.Query().Page)
		})
	}

	env.engine.SetPage(2)
	env.engine.SetSortField("email")
	assert.Equal(t, 2, env.engine.Query().Page, "toggling direction keeps the page")
}

func TestSetPage_OutOfRangeIgnored(t *testing.T) {
	env := seedUsers(t, 15)
	env.engine.SetPage(0)
	env.engine.SetPage(3)
	assert.Equal(t, 1, env.engine.Query().Page)

	env.engine.SetPage(2)
	assert.Equal(t, 2, env.engine.Query().Page)
}

func TestPage_HugePageSizeDoesNotOverflow(t *testing.T) {
	env := seedUsers(t, 50)
	env.engine.SetItemsPerPage(math.MaxInt - 10)

	p := env.engine.Page().Pagination
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 1, p.StartIndex)
	assert.Equal(t, 50, p.EndIndex)
	assert.Equal(t, 1, env.engine.TotalPages())
}

func TestSetItemsPerPage_IgnoresNonPositive(t *testing.T) {
	env := seedUsers(t, 3)
	env.engine.SetItemsPerPage(0)
	env.engine.SetItemsPerPage(-4)
	assert.Equal(t, 10, env.engine.Query().ItemsPerPage)
}

func TestSetSort_Explicit(t *testing.T) {
	env := seedUsers(t, 3)
	env.engine.SetSort("firstName", true)
	assert.Equal(t, "User03", env.engine.Page().Items[0]["firstName"])

	env.engine.SetSort("", false)
	assert.Equal(t, "id", env.engine.Query().SortField)
}

func TestSearch_UnknownKindSearchesID(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.storage.Save(context.Background(), "posts", []entity.Record{{"id": "15", "title": "hello"}, {"id": "2"}}))
	env.engine.Initialize(context.Background(), "posts", Config{})

	env.engine.SetSearchTerm("5")
	assert.Equal(t, []string{"15"}, ids(env.engine.Page().Items))
	env.engine.SetSearchTerm("hello")
	assert.Empty(t, env.engine.Page().Items)
}
