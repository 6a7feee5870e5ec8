package scheme

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
)

// Source is the repository the cache reads through. Implementations return
// versioned records; CurrentVersion is the cheap check the cache uses to
// detect stale entries.
type Source interface {
	FetchByID(ctx context.Context, id string) (*Snapshot, error)
	FetchAll(ctx context.Context) ([]*Snapshot, error)
	CurrentVersion(ctx context.Context, id string) (int, error)
}

// Cache is a read-through cache over scheme records. Entries are invalidated
// by version: every access verifies the repository's current version and
// re-fetches on mismatch, so a repository update is visible on the next read
// without waiting out a TTL. The TTL below is only a memory bound.
type Cache struct {
	source Source
	store  *cache.Cache
}

const (
	defaultExpiration = 1 * time.Hour
	cleanupInterval   = 10 * time.Minute
)

func NewCache(source Source) *Cache {
	return &Cache{
		source: source,
		store:  cache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns the scheme projected into lang, loading and storing the full
// multi-language record on a miss.
func (c *Cache) Get(ctx context.Context, id string, lang i18n.Language) (Projection, error) {
	snap, err := c.Snapshot(ctx, id)
	if err != nil {
		return Projection{}, err
	}
	return snap.View(lang), nil
}

// Snapshot returns an immutable deep copy of the full record.
func (c *Cache) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	if x, found := c.store.Get(id); found {
		cached := x.(*Snapshot)
		current, err := c.source.CurrentVersion(ctx, id)
		if err == nil && current == cached.Version {
			return cached.Clone(), nil
		}
		// Version bumped (or the check failed): fall through to a
		// fresh load rather than serving possibly stale content.
	}
	return c.load(ctx, id)
}

func (c *Cache) load(ctx context.Context, id string) (*Snapshot, error) {
	snap, err := c.source.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, apperror.Newf(apperror.KindNotFound, "scheme %s", id)
	}
	c.store.Set(id, snap.Clone(), cache.DefaultExpiration)
	return snap.Clone(), nil
}

// Warm preloads every scheme, e.g. at boot or after a seed run.
func (c *Cache) Warm(ctx context.Context) (int, error) {
	snaps, err := c.source.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range snaps {
		c.store.Set(s.ID, s.Clone(), cache.DefaultExpiration)
	}
	return len(snaps), nil
}

// Cached returns deep copies of every cached snapshot, ordered by id. The
// alternative-scheme search scans these.
func (c *Cache) Cached() []*Snapshot {
	items := c.store.Items()
	out := make([]*Snapshot, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*Snapshot).Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Invalidate drops one entry, forcing a reload on next access.
func (c *Cache) Invalidate(id string) {
	c.store.Delete(id)
}
