// ABOUTME: Session and preference keys: login flag, username, login time, language
// ABOUTME: Logout removes the session keys along with the current item and entity

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/store"
)

// Session is the persisted login state.
type Session struct {
	Username  string
	LoginTime time.Time
}

// StartSession records a successful login.
func (a *Adapter) StartSession(ctx context.Context, username string, at time.Time) error {
	items := [][2]string{
		{KeyLoggedIn, "true"},
		{KeyUsername, username},
		{KeyLoginTime, at.UTC().Format(time.RFC3339)},
	}
	for _, kv := range items {
		if err := a.kv.SetItem(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("saving %s: %w", kv[0], err)
		}
	}
	return nil
}

// Session returns the persisted login state, if any.
func (a *Adapter) Session(ctx context.Context) (Session, bool) {
	flag, err := a.kv.GetItem(ctx, KeyLoggedIn)
	if err != nil || flag != "true" {
		return Session{}, false
	}
	name, _ := a.kv.GetItem(ctx, KeyUsername)
	s := Session{Username: name}
	if raw, err := a.kv.GetItem(ctx, KeyLoginTime); err == nil {
		s.LoginTime, _ = time.Parse(time.RFC3339, raw)
	}
	return s, true
}

// EndSession removes all session keys.
func (a *Adapter) EndSession(ctx context.Context) error {
	var errs []error
	for _, k := range []string{KeyLoggedIn, KeyUsername, KeyLoginTime, KeyCurrentItem, KeyCurrentEntity} {
		if err := a.kv.RemoveItem(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Language returns the stored language code, or fallback when unset.
func (a *Adapter) Language(ctx context.Context, fallback string) string {
	lang, err := a.kv.GetItem(ctx, KeyLanguage)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.logger.Warn("reading language failed", "error", err)
		}
		return fallback
	}
	return lang
}

// SetLanguage stores the language code.
func (a *Adapter) SetLanguage(ctx context.Context, lang string) error {
	return a.kv.SetItem(ctx, KeyLanguage, lang)
}

// SetCurrent remembers the entity kind and item the user last opened.
func (a *Adapter) SetCurrent(ctx context.Context, kind, id string) error {
	if err := a.kv.SetItem(ctx, KeyCurrentEntity, kind); err != nil {
		return err
	}
	return a.kv.SetItem(ctx, KeyCurrentItem, id)
}
