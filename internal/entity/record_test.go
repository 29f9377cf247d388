// ABOUTME: Tests for Record helpers: dotted lookup, string casting and id canonicalization
// ABOUTME: Covers nested maps, missing paths and numeric id forms

package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Lookup(t *testing.T) {
	r := Record{
		"name": "Ada",
		"address": map[string]any{
			"city": "Paris",
			"geo":  map[string]any{"lat": 48.85},
		},
	}

	v, ok := r.Lookup("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", v)

	v, ok = r.Lookup("address.city")
	assert.True(t, ok)
	assert.Equal(t, "Paris", v)

	assert.Equal(t, "48.85", r.Text("address.geo.lat"))

	_, ok = r.Lookup("address.zip")
	assert.False(t, ok)

	_, ok = r.Lookup("name.first")
	assert.False(t, ok, "cannot descend into a scalar")
}

func TestString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{float64(12), "12"},
		{12.5, "12.5"},
		{7, "7"},
		{true, "true"},
		{json.Number("3.10"), "3.10"},
		{[]any{"a", 1.0}, `["a",1]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, String(tt.in))
	}
}

func TestCanonicalID(t *testing.T) {
	assert.Equal(t, "3", CanonicalID(3))
	assert.Equal(t, "3", CanonicalID(float64(3)))
	assert.Equal(t, "3", CanonicalID("3"))
	assert.Equal(t, "3", CanonicalID(" 3 "))
	assert.Equal(t, "3", CanonicalID("3.0"))
	assert.Equal(t, "abc-1", CanonicalID("abc-1"))
	assert.Equal(t, "", CanonicalID(nil))
}

func TestNumericID(t *testing.T) {
	n, ok := NumericID("42")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = NumericID("0")
	assert.False(t, ok)
	_, ok = NumericID("abc")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	recs := []Record{{"id": float64(1)}, {"id": "2"}, {"name": "no id"}}
	Normalize(recs)

	assert.Equal(t, "1", recs[0]["id"])
	assert.Equal(t, "2", recs[1]["id"])
	_, has := recs[2]["id"]
	assert.False(t, has)
}

func TestCloneAll_Independent(t *testing.T) {
	orig := []Record{{"id": "1", "name": "a"}}
	cp := CloneAll(orig)
	cp[0]["name"] = "b"

	assert.Equal(t, "a", orig[0]["name"])
}
