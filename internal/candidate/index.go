// Package candidate caches the scoped sets of canonical entity names the
// resolver scores against.
package candidate

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/metrics"
)

const (
	defaultTTL          = 60 * time.Second
	defaultFetchTimeout = 3 * time.Second
)

// Source fetches candidates from the canonical entity store. Empty
// categories mean all categories; empty factions mean all factions.
// Faction-agnostic entities are always included.
type Source interface {
	LoadCandidates(ctx context.Context, categories []domain.Category, factions []string) ([]domain.CandidateEntity, error)
}

type snapshot struct {
	entities  []domain.CandidateEntity
	expiresAt time.Time
}

// Index is a read-through TTL cache keyed by (sorted categories, sorted
// factions). Snapshots are replaced wholesale and never mutated, so the
// slices it returns must be treated as read-only.
type Index struct {
	log          *slog.Logger
	src          Source
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	entries map[string]*snapshot

	group singleflight.Group
}

// Option configures an Index.
type Option func(*Index)

// WithTTL sets how long a snapshot is served before a refill.
func WithTTL(d time.Duration) Option {
	return func(i *Index) {
		if d > 0 {
			i.ttl = d
		}
	}
}

// WithFetchTimeout bounds a single backing store refill.
func WithFetchTimeout(d time.Duration) Option {
	return func(i *Index) {
		if d > 0 {
			i.fetchTimeout = d
		}
	}
}

// NewIndex creates an Index over src.
func NewIndex(logger *slog.Logger, src Source, opts ...Option) *Index {
	i := &Index{
		log:          logger.With("component", "candidate_index"),
		src:          src,
		ttl:          defaultTTL,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
		entries:      make(map[string]*snapshot),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Load returns the candidates for the given scope. It never fails: when a
// refill errors or times out it serves the stale snapshot if there is one,
// and an empty set otherwise.
func (i *Index) Load(ctx context.Context, categories []domain.Category, factions []string) []domain.CandidateEntity {
	cats, facts := scope(categories, factions)
	key := cacheKey(cats, facts)

	snap := i.get(key)
	if snap != nil && i.now().Before(snap.expiresAt) {
		metrics.RecordCache(metrics.CacheHit)
		return snap.entities
	}
	metrics.RecordCache(metrics.CacheMiss)

	ch := i.group.DoChan(key, func() (any, error) {
		return i.refill(ctx, key, cats, facts)
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.([]domain.CandidateEntity)
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if snap != nil {
		metrics.RecordCache(metrics.CacheStale)
		i.log.WarnContext(ctx, "candidate refill failed, serving stale snapshot",
			slog.String("key", key),
			slog.Int("count", len(snap.entities)),
			slog.String("error", err.Error()),
		)
		return snap.entities
	}

	metrics.RecordCache(metrics.CacheEmpty)
	i.log.WarnContext(ctx, "candidate refill failed, no snapshot to serve",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
	return []domain.CandidateEntity{}
}

// Names returns the sorted distinct candidate names of one category,
// optionally narrowed to a faction.
func (i *Index) Names(ctx context.Context, category domain.Category, faction string) []string {
	var factions []string
	if faction != "" {
		factions = []string{faction}
	}

	entities := i.Load(ctx, []domain.Category{category}, factions)
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Invalidate drops every snapshot. In-flight refills still complete and
// store their result.
func (i *Index) Invalidate() {
	i.mu.Lock()
	i.entries = make(map[string]*snapshot)
	i.mu.Unlock()
}

// refill runs once per key at a time. It is detached from the first
// caller's cancellation so that other waiters still get the result.
func (i *Index) refill(ctx context.Context, key string, cats []domain.Category, facts []string) ([]domain.CandidateEntity, error) {
	if snap := i.get(key); snap != nil && i.now().Before(snap.expiresAt) {
		return snap.entities, nil
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), i.fetchTimeout)
	defer cancel()

	start := time.Now()
	entities, err := i.src.LoadCandidates(fetchCtx, cats, facts)
	metrics.RecordFetch(time.Since(start).Seconds(), err != nil)
	if err != nil {
		return nil, err
	}
	if entities == nil {
		entities = []domain.CandidateEntity{}
	}
	for j := range entities {
		entities[j].Key = domain.Normalize(entities[j].Name)
	}

	i.mu.Lock()
	i.entries[key] = &snapshot{entities: entities, expiresAt: i.now().Add(i.ttl)}
	i.mu.Unlock()

	i.log.DebugContext(ctx, "candidates refilled",
		slog.String("key", key),
		slog.Int("count", len(entities)),
		slog.Duration("took", time.Since(start)),
	)
	return entities, nil
}

func (i *Index) get(key string) *snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.entries[key]
}

// scope sorts and dedupes the filters. Factions are compared lower-cased.
func scope(categories []domain.Category, factions []string) ([]domain.Category, []string) {
	cats := slices.Clone(categories)
	slices.Sort(cats)
	cats = slices.Compact(cats)

	facts := make([]string, 0, len(factions))
	for _, f := range factions {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			facts = append(facts, f)
		}
	}
	slices.Sort(facts)
	return cats, slices.Compact(facts)
}

func cacheKey(cats []domain.Category, facts []string) string {
	var b strings.Builder
	for n, c := range cats {
		if n > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(c))
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(facts, ","))
	return b.String()
}
