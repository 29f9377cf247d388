// ABOUTME: Tests for the storage adapter snapshots, activity log and session keys
// ABOUTME: Uses the in-memory MockStore plus a t.TempDir SQLite store for the round trip

package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/store"
)

func newTestAdapter(t *testing.T) (*Adapter, *store.MockStore) {
	t.Helper()
	kv := store.NewMockStore()
	return New(kv), kv
}

func sampleProducts() []entity.Record {
	return []entity.Record{
		{"id": "1", "name": "Produit 1", "price": 12.5, "stock": float64(3), "tags": []any{"a", "b"}},
		{"id": "2", "name": `He said "hi"`, "price": float64(0), "dimensions": map[string]any{"w": float64(2)}},
	}
}

func TestAdapter_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	a := New(kv)

	data := sampleProducts()
	require.NoError(t, a.Save(ctx, entity.Products, data))

	got, ok := a.Load(ctx, entity.Products)
	require.True(t, ok)
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapter_Load_Absent(t *testing.T) {
	a, _ := newTestAdapter(t)
	_, ok := a.Load(context.Background(), entity.Users)
	assert.False(t, ok)
}

func TestAdapter_Load_Unparsable(t *testing.T) {
	ctx := context.Background()
	a, kv := newTestAdapter(t)
	require.NoError(t, kv.SetItem(ctx, DataKey(entity.Users), "{not json"))

	_, ok := a.Load(ctx, entity.Users)
	assert.False(t, ok)

	require.NoError(t, kv.SetItem(ctx, DataKey(entity.Users), "null"))
	_, ok = a.Load(ctx, entity.Users)
	assert.False(t, ok)
}

func TestAdapter_Load_NormalizesNumericIDs(t *testing.T) {
	ctx := context.Background()
	a, kv := newTestAdapter(t)
	require.NoError(t, kv.SetItem(ctx, DataKey(entity.Orders), `[{"id":3},{"id":"4"}]`))

	got, ok := a.Load(ctx, entity.Orders)
	require.True(t, ok)
	assert.Equal(t, "3", got[0]["id"])
	assert.Equal(t, "4", got[1]["id"])
}

func TestAdapter_Save_WriteFailure(t *testing.T) {
	ctx := context.Background()
	a, kv := newTestAdapter(t)
	kv.SetQuota(10)

	err := a.Save(ctx, entity.Products, sampleProducts())
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)

	_, ok := a.Load(ctx, entity.Products)
	assert.False(t, ok)
}

func TestAdapter_Clear(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAdapter(t)
	require.NoError(t, a.Save(ctx, entity.Users, []entity.Record{{"id": "1"}}))
	require.NoError(t, a.Save(ctx, entity.Orders, []entity.Record{}))

	kinds, err := a.StoredKinds(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []entity.Kind{entity.Users, entity.Orders}, kinds)

	require.NoError(t, a.Clear(ctx, entity.Users))
	_, ok := a.Load(ctx, entity.Users)
	assert.False(t, ok)
}

func TestAdapter_AppendActivity_NewestFirstCapped(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAdapter(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	a.now = func() time.Time { i++; return base.Add(time.Duration(i) * time.Minute) }

	for n := 1; n <= 25; n++ {
		_, err := a.AppendActivity(ctx, entity.Entry{Title: fmt.Sprintf("event %d", n), Icon: "fa-box", Color: "#2196F3"})
		require.NoError(t, err)
	}

	entries, err := a.Activities(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxActivities)
	assert.Equal(t, "event 25", entries[0].Title)
	assert.Equal(t, "event 6", entries[MaxActivities-1].Title)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
	assert.NotEmpty(t, entries[0].ID)
}

func TestAdapter_AppendActivity_WriteFailure(t *testing.T) {
	a, kv := newTestAdapter(t)
	kv.FailWrites(errors.New("quota"))

	_, err := a.AppendActivity(context.Background(), entity.Entry{Title: "x"})
	assert.Error(t, err)
}

func TestAdapter_Activities_CorruptLogIsEmpty(t *testing.T) {
	ctx := context.Background()
	a, kv := newTestAdapter(t)
	require.NoError(t, kv.SetItem(ctx, ActivitiesKey, "garbage"))

	entries, err := a.Activities(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = a.AppendActivity(ctx, entity.Entry{Title: "fresh"})
	require.NoError(t, err)
	entries, _ = a.Activities(ctx)
	assert.Len(t, entries, 1)
}

func TestAdapter_Session(t *testing.T) {
	ctx := context.Background()
	a, kv := newTestAdapter(t)

	_, ok := a.Session(ctx)
	assert.False(t, ok)

	at := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, a.StartSession(ctx, "admin", at))
	require.NoError(t, a.SetCurrent(ctx, "users", "3"))

	s, ok := a.Session(ctx)
	require.True(t, ok)
	assert.Equal(t, "admin", s.Username)
	assert.True(t, at.Equal(s.LoginTime))

	require.NoError(t, a.SetLanguage(ctx, "en"))
	require.NoError(t, a.EndSession(ctx))

	_, ok = a.Session(ctx)
	assert.False(t, ok)
	keys, _ := kv.Keys(ctx)
	assert.Equal(t, []string{KeyLanguage}, keys, "logout keeps only the language preference")
}

func TestAdapter_Language(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAdapter(t)
	assert.Equal(t, "fr", a.Language(ctx, "fr"))

	require.NoError(t, a.SetLanguage(ctx, "ar"))
	assert.Equal(t, "ar", a.Language(ctx, "fr"))
}
