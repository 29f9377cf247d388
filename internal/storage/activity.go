// ABOUTME: Shared activity log: newest first, capped at MaxActivities entries
// ABOUTME: Entries are stamped with a uuid and an RFC 3339 timestamp

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/store"
)

// MaxActivities is the number of entries the log keeps.
const MaxActivities = 20

// Activity is one activity log entry.
type Activity struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
}

// AppendActivity prepends e to the log and drops entries past MaxActivities.
func (a *Adapter) AppendActivity(ctx context.Context, e entity.Entry) (Activity, error) {
	a.activityMu.Lock()
	defer a.activityMu.Unlock()

	entries, err := a.readActivities(ctx)
	if err != nil {
		return Activity{}, err
	}

	act := Activity{
		ID:          uuid.NewString(),
		Title:       e.Title,
		Description: e.Description,
		Icon:        e.Icon,
		Color:       e.Color,
		Timestamp:   a.now().UTC(),
	}
	entries = append([]Activity{act}, entries...)
	if len(entries) > MaxActivities {
		entries = entries[:MaxActivities]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return Activity{}, fmt.Errorf("encoding activity log: %w", err)
	}
	if err := a.kv.SetItem(ctx, ActivitiesKey, string(data)); err != nil {
		a.logger.Error("saving activity log failed", "error", err)
		return Activity{}, fmt.Errorf("saving activity log: %w", err)
	}
	return act, nil
}

// Activities returns the log, newest first.
func (a *Adapter) Activities(ctx context.Context) ([]Activity, error) {
	a.activityMu.Lock()
	defer a.activityMu.Unlock()
	return a.readActivities(ctx)
}

// ClearActivities empties the log.
func (a *Adapter) ClearActivities(ctx context.Context) error {
	a.activityMu.Lock()
	defer a.activityMu.Unlock()
	return a.kv.RemoveItem(ctx, ActivitiesKey)
}

func (a *Adapter) readActivities(ctx context.Context) ([]Activity, error) {
	raw, err := a.kv.GetItem(ctx, ActivitiesKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}

	var entries []Activity
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		a.logger.Warn("activity log unreadable, starting fresh", "error", err)
		return nil, nil
	}
	return entries, nil
}
