// Package crud is the entity repository: a kind-agnostic CRUD engine over
// one in-memory working set.
//
// An Engine is built per session or request with explicit Deps, then
// pointed at a kind with Initialize. Reads go through Page, which filters,
// searches, sorts (stable, collation-aware) and slices according to the
// Query state. Mutations in local mode build the next working set, save it
// through Storage, and only then replace the in-memory set, so memory never
// runs ahead of storage. Each successful mutation appends an activity entry
// phrased by the kind's descriptor.
//
// Ids are allocated as the smallest free positive integer, so deleted ids
// are reused.
package crud
