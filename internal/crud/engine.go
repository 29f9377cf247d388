// ABOUTME: CRUD engine: owns one entity kind's working set and answers queries and mutations
// ABOUTME: Mutations are committed to memory only after the snapshot write succeeds

package crud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/remote"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/storage"
)

// ErrNotFound is returned by Update and Delete for an unknown id.
var ErrNotFound = errors.New("not found")

// ErrEmptyPage is returned when exporting a page with no rows.
var ErrEmptyPage = errors.New("nothing to export")

// DefaultItemsPerPage is the page size after Initialize.
const DefaultItemsPerPage = 10

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Storage persists snapshots and the activity log.
type Storage interface {
	Load(ctx context.Context, kind entity.Kind) ([]entity.Record, bool)
	Save(ctx context.Context, kind entity.Kind, records []entity.Record) error
	AppendActivity(ctx context.Context, e entity.Entry) (storage.Activity, error)
}

// Generator seeds a kind that has no snapshot.
type Generator interface {
	Generate(kind entity.Kind) []entity.Record
}

// Remote is the subset of the remote facade the engine drives.
type Remote interface {
	Fetch(ctx context.Context, kind entity.Kind, source string, params url.Values) ([]entity.Record, error)
	FetchFromSources(ctx context.Context, kind entity.Kind, sources []string) []entity.Record
	Search(ctx context.Context, kind entity.Kind, source, query string) ([]entity.Record, error)
	FetchByID(ctx context.Context, kind entity.Kind, source, id string) (entity.Record, error)
	Create(ctx context.Context, kind entity.Kind, source string, data entity.Record) (entity.Record, error)
	Update(ctx context.Context, kind entity.Kind, source, id string, data entity.Record) (entity.Record, error)
	Delete(ctx context.Context, kind entity.Kind, source, id string) (remote.DeleteResult, error)
	ClearCache()
}

// Deps are the collaborators an Engine needs. Remote may be nil when remote
// mode is never used.
type Deps struct {
	Storage   Storage
	Generator Generator
	Remote    Remote
	Registry  *entity.Registry
	Logger    *slog.Logger
	Now       func() time.Time
	Rand      *rand.Rand
}

// Config selects how Initialize loads data.
type Config struct {
	// Remote switches loading and mutations to the remote facade.
	Remote bool
	// Source names the remote source searches, lookups and mutations go
	// to; empty means the first of Sources, then the facade default.
	Source string
	// Sources are merged on load when there is more than one.
	Sources []string
	// ItemsPerPage overrides DefaultItemsPerPage when positive.
	ItemsPerPage int
	// Language drives locale-aware sorting. Defaults to French.
	Language language.Tag
}

// Engine is the per-session CRUD engine for one entity kind at a time.
// It is not safe for concurrent use; build one per request or session.
type Engine struct {
	deps   Deps
	logger *slog.Logger

	kind     entity.Kind
	desc     *entity.Descriptor
	cfg      Config
	records  []entity.Record
	query    Query
	collator *collate.Collator
}

// New returns an Engine with no kind selected.
func New(deps Deps) *Engine {
	if deps.Registry == nil {
		deps.Registry = entity.NewRegistry()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		deps:   deps,
		logger: logger.With("component", "crud"),
		query:  defaultQuery(0),
	}
}

// Initialize selects kind, resets the query state and loads the working
// set: from the remote facade in remote mode, else from the stored
// snapshot, else from freshly generated (and persisted) mock data. Any
// load failure falls back to mock data. It returns a copy of the set.
func (e *Engine) Initialize(ctx context.Context, kind entity.Kind, cfg Config) []entity.Record {
	e.kind = kind
	e.desc = e.deps.Registry.Get(kind)
	if cfg.Source == "" && len(cfg.Sources) > 0 {
		cfg.Source = cfg.Sources[0]
	}
	e.cfg = cfg
	e.query = defaultQuery(cfg.ItemsPerPage)

	tag := cfg.Language
	if tag == language.Und {
		tag = language.French
	}
	e.collator = collate.New(tag)

	e.records = e.load(ctx)
	return entity.CloneAll(e.records)
}

func (e *Engine) load(ctx context.Context) []entity.Record {
	log := e.logger.With("kind", e.kind)

	if e.cfg.Remote {
		if e.deps.Remote == nil {
			log.Warn("remote mode without a remote client, using mock data")
			return e.deps.Generator.Generate(e.kind)
		}
		if len(e.cfg.Sources) > 1 {
			recs := e.deps.Remote.FetchFromSources(ctx, e.kind, e.cfg.Sources)
			if len(recs) == 0 {
				log.Warn("no source answered, using mock data", "sources", e.cfg.Sources)
				return e.deps.Generator.Generate(e.kind)
			}
			return recs
		}
		recs, err := e.deps.Remote.Fetch(ctx, e.kind, e.cfg.Source, nil)
		if err != nil {
			log.Warn("remote load failed, using mock data", "source", e.cfg.Source, "error", err)
			return e.deps.Generator.Generate(e.kind)
		}
		return recs
	}

	if recs, ok := e.deps.Storage.Load(ctx, e.kind); ok {
		return recs
	}

	recs := e.deps.Generator.Generate(e.kind)
	if err := e.deps.Storage.Save(ctx, e.kind, recs); err != nil {
		log.Warn("seed data not persisted", "error", err)
	} else {
		log.Info("seeded mock data", "records", len(recs))
	}
	return recs
}

// Kind returns the selected entity kind.
func (e *Engine) Kind() entity.Kind { return e.kind }

// Descriptor returns the selected kind's descriptor.
func (e *Engine) Descriptor() *entity.Descriptor { return e.desc }

// Remote reports whether the engine runs in remote mode.
func (e *Engine) Remote() bool { return e.cfg.Remote }

// Len is the size of the working set.
func (e *Engine) Len() int { return len(e.records) }

// Records returns a copy of the working set in its stored order.
func (e *Engine) Records() []entity.Record { return entity.CloneAll(e.records) }

// GetByID looks id up in the working set. No fetch, no side effects.
func (e *Engine) GetByID(id string) (entity.Record, bool) {
	if i := e.indexOf(id); i >= 0 {
		return e.records[i].Clone(), true
	}
	return nil, false
}

// Find looks id up in the working set and, in remote mode, falls back to
// fetching it from the source. A fetched record is not added to the set.
func (e *Engine) Find(ctx context.Context, id string) (entity.Record, bool) {
	if rec, ok := e.GetByID(id); ok {
		return rec, true
	}
	if !e.cfg.Remote || e.deps.Remote == nil {
		return nil, false
	}
	rec, err := e.deps.Remote.FetchByID(ctx, e.kind, e.cfg.Source, entity.CanonicalID(id))
	if err != nil {
		e.logger.Debug("remote lookup failed", "kind", e.kind, "id", id, "error", err)
		return nil, false
	}
	if rec == nil {
		rec = entity.Record{}
	}
	if rec.ID() == "" {
		rec["id"] = entity.CanonicalID(id)
	}
	return rec, true
}

// SearchRemote sends the current search term to the source's ?q= search
// and makes the matches the working set, so records beyond the source's
// default listing can be found. The local search still runs over them.
// It does nothing in local mode or without a term.
func (e *Engine) SearchRemote(ctx context.Context) error {
	term := e.query.Search
	if !e.cfg.Remote || e.deps.Remote == nil || term == "" {
		return nil
	}
	recs, err := e.deps.Remote.Search(ctx, e.kind, e.cfg.Source, term)
	if err != nil {
		return fmt.Errorf("searching %s: %w", e.kind, err)
	}
	e.records = recs
	if last := max(e.TotalPages(), 1); e.query.Page > last {
		e.query.Page = last
	}
	return nil
}

func (e *Engine) indexOf(id string) int {
	id = entity.CanonicalID(id)
	return slices.IndexFunc(e.records, func(r entity.Record) bool { return r.ID() == id })
}

// NextAvailableID returns the smallest positive integer not used as an id.
func (e *Engine) NextAvailableID() int {
	used := make(map[int]struct{}, len(e.records))
	for _, r := range e.records {
		if n, ok := entity.NumericID(r.ID()); ok {
			used[n] = struct{}{}
		}
	}
	next := 1
	for {
		if _, taken := used[next]; !taken {
			return next
		}
		next++
	}
}

func (e *Engine) timestamp() string {
	return e.deps.Now().UTC().Format(timestampLayout)
}

// Create adds a record. Locally it gets the smallest free id, timestamps
// and kind defaults, and is prepended once the snapshot is saved. Remotely
// the facade's record is prepended and the facade cache cleared.
func (e *Engine) Create(ctx context.Context, data entity.Record) (entity.Record, error) {
	var rec entity.Record

	if e.cfg.Remote {
		if e.deps.Remote == nil {
			return nil, errors.New("remote mode without a remote client")
		}
		created, err := e.deps.Remote.Create(ctx, e.kind, e.cfg.Source, data)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", e.kind, err)
		}
		rec = created
		e.records = append([]entity.Record{rec}, e.records...)
		e.deps.Remote.ClearCache()
	} else {
		rec = data.Clone()
		if rec == nil {
			rec = entity.Record{}
		}
		now := e.timestamp()
		rec["id"] = fmt.Sprint(e.NextAvailableID())
		rec["createdAt"] = now
		rec["updatedAt"] = now
		if e.desc.Defaults != nil {
			e.desc.Defaults(rec, e.deps.Now(), e.deps.Rand)
		}

		next := append([]entity.Record{rec}, e.records...)
		if err := e.deps.Storage.Save(ctx, e.kind, next); err != nil {
			return nil, fmt.Errorf("creating %s: %w", e.kind, err)
		}
		e.records = next
	}

	e.logActivity(ctx, entity.ActionCreate, rec, "")
	return rec.Clone(), nil
}

// Update merges data over the record with id and stamps updatedAt.
func (e *Engine) Update(ctx context.Context, id string, data entity.Record) (entity.Record, error) {
	id = entity.CanonicalID(id)
	idx := e.indexOf(id)

	var rec entity.Record
	if e.cfg.Remote {
		if e.deps.Remote == nil {
			return nil, errors.New("remote mode without a remote client")
		}
		updated, err := e.deps.Remote.Update(ctx, e.kind, e.cfg.Source, id, data)
		if err != nil {
			return nil, fmt.Errorf("updating %s %s: %w", e.kind, id, err)
		}
		rec = updated
		if rec == nil {
			rec = entity.Record{}
		}
		if rec.ID() == "" {
			rec["id"] = id
		}
		if idx >= 0 {
			next := slices.Clone(e.records)
			next[idx] = rec
			e.records = next
		}
		e.deps.Remote.ClearCache()
	} else {
		if idx < 0 {
			return nil, fmt.Errorf("updating %s %s: %w", e.kind, id, ErrNotFound)
		}
		rec = e.records[idx].Clone()
		for k, v := range data {
			rec[k] = v
		}
		rec["id"] = id
		rec["updatedAt"] = e.timestamp()

		next := slices.Clone(e.records)
		next[idx] = rec
		if err := e.deps.Storage.Save(ctx, e.kind, next); err != nil {
			return nil, fmt.Errorf("updating %s %s: %w", e.kind, id, err)
		}
		e.records = next
	}

	e.logActivity(ctx, entity.ActionUpdate, rec, "")
	return rec.Clone(), nil
}

// Delete removes the record with id.
func (e *Engine) Delete(ctx context.Context, id string) error {
	id = entity.CanonicalID(id)
	idx := e.indexOf(id)

	if e.cfg.Remote {
		if e.deps.Remote == nil {
			return errors.New("remote mode without a remote client")
		}
		if _, err := e.deps.Remote.Delete(ctx, e.kind, e.cfg.Source, id); err != nil {
			return fmt.Errorf("deleting %s %s: %w", e.kind, id, err)
		}
		if idx >= 0 {
			e.records = slices.Delete(slices.Clone(e.records), idx, idx+1)
		}
		e.deps.Remote.ClearCache()
	} else {
		if idx < 0 {
			return fmt.Errorf("deleting %s %s: %w", e.kind, id, ErrNotFound)
		}
		next := slices.Delete(slices.Clone(e.records), idx, idx+1)
		if err := e.deps.Storage.Save(ctx, e.kind, next); err != nil {
			return fmt.Errorf("deleting %s %s: %w", e.kind, id, err)
		}
		e.records = next
	}

	e.logActivity(ctx, entity.ActionDelete, nil, id)
	return nil
}

// logActivity records a mutation. Failures are logged, never returned: the
// mutation itself already succeeded.
func (e *Engine) logActivity(ctx context.Context, action entity.Action, rec entity.Record, rawID string) {
	entry := e.desc.Describe(action, rec, rawID)
	if _, err := e.deps.Storage.AppendActivity(ctx, entry); err != nil {
		e.logger.Warn("activity not recorded", "kind", e.kind, "action", action, "error", err)
	}
}
