// ABOUTME: Storage adapter: JSON snapshots per entity kind on top of the key/value store
// ABOUTME: Unreadable snapshots count as absent; write failures are logged and returned

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/store"
)

// Persisted key layout
const (
	DataKeyPrefix    = "myManager_data_"
	ActivitiesKey    = "myManager_activities"
	KeyLoggedIn      = "isLoggedIn"
	KeyUsername      = "username"
	KeyLoginTime     = "loginTime"
	KeyLanguage      = "language"
	KeyCurrentItem   = "currentItem"
	KeyCurrentEntity = "currentEntity"
)

// Adapter persists entity snapshots, the activity log and session keys.
// It never holds a live reference to a caller's collection.
type Adapter struct {
	kv     store.Store
	logger *slog.Logger
	now    func() time.Time

	// activityMu serializes the read-modify-write of the activity log.
	activityMu sync.Mutex
}

// New wraps kv in an Adapter.
func New(kv store.Store) *Adapter {
	return &Adapter{
		kv:     kv,
		logger: slog.Default().With("component", "storage"),
		now:    time.Now,
	}
}

// Store exposes the underlying key/value store.
func (a *Adapter) Store() store.Store {
	return a.kv
}

// DataKey is the key holding kind's snapshot.
func DataKey(kind entity.Kind) string {
	return DataKeyPrefix + string(kind)
}

// Load returns the saved collection for kind. ok is false when nothing was
// saved or the snapshot cannot be parsed.
func (a *Adapter) Load(ctx context.Context, kind entity.Kind) (records []entity.Record, ok bool) {
	raw, err := a.kv.GetItem(ctx, DataKey(kind))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.logger.Warn("reading snapshot failed", "kind", kind, "error", err)
		}
		return nil, false
	}

	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		a.logger.Warn("snapshot unreadable, treating as absent", "kind", kind, "error", err)
		return nil, false
	}
	if records == nil {
		// "null" is not a collection
		return nil, false
	}
	return entity.Normalize(records), true
}

// Save overwrites kind's snapshot. A rejected write is logged and returned
// so the caller can keep its in-memory state consistent with storage.
func (a *Adapter) Save(ctx context.Context, kind entity.Kind, records []entity.Record) error {
	if records == nil {
		records = []entity.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		a.logger.Error("encoding snapshot failed", "kind", kind, "error", err)
		return fmt.Errorf("encoding %s snapshot: %w", kind, err)
	}
	if err := a.kv.SetItem(ctx, DataKey(kind), string(data)); err != nil {
		a.logger.Error("saving snapshot failed", "kind", kind, "records", len(records), "error", err)
		return fmt.Errorf("saving %s snapshot: %w", kind, err)
	}
	return nil
}

// Clear removes kind's snapshot so the next load regenerates it.
func (a *Adapter) Clear(ctx context.Context, kind entity.Kind) error {
	if err := a.kv.RemoveItem(ctx, DataKey(kind)); err != nil {
		return fmt.Errorf("clearing %s snapshot: %w", kind, err)
	}
	return nil
}

// StoredKinds lists every kind that currently has a snapshot.
func (a *Adapter) StoredKinds(ctx context.Context) ([]entity.Kind, error) {
	keys, err := a.kv.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var kinds []entity.Kind
	for _, k := range keys {
		if rest, ok := strings.CutPrefix(k, DataKeyPrefix); ok {
			kinds = append(kinds, entity.Kind(rest))
		}
	}
	return kinds, nil
}
