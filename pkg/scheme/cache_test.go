package scheme

import (
	"context"
	"errors"
	"testing"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
)

type fakeSource struct {
	schemes   map[string]*Snapshot
	fetches   int
	verChecks int
	verErr    error
}

func (f *fakeSource) FetchByID(_ context.Context, id string) (*Snapshot, error) {
	f.fetches++
	s, ok := f.schemes[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (f *fakeSource) FetchAll(_ context.Context) ([]*Snapshot, error) {
	out := make([]*Snapshot, 0, len(f.schemes))
	for _, s := range f.schemes {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (f *fakeSource) CurrentVersion(_ context.Context, id string) (int, error) {
	f.verChecks++
	if f.verErr != nil {
		return 0, f.verErr
	}
	s, ok := f.schemes[id]
	if !ok {
		return 0, apperror.Newf(apperror.KindNotFound, "scheme %s", id)
	}
	return s.Version, nil
}

func testScheme(id string, version int) *Snapshot {
	return &Snapshot{
		ID:       id,
		Code:     id,
		Category: "agriculture",
		Version:  version,
		Name: i18n.Text{
			i18n.English: "Scheme " + id,
			i18n.Hindi:   "योजना " + id,
		},
		Description: i18n.Text{
			i18n.English: "desc",
			i18n.Hindi:   "विवरण",
		},
		Steps: []i18n.Text{
			{i18n.English: "apply", i18n.Hindi: "आवेदन"},
		},
	}
}

func TestCacheReadsThroughOnce(t *testing.T) {
	src := &fakeSource{schemes: map[string]*Snapshot{"pm-kisan": testScheme("pm-kisan", 1)}}
	c := NewCache(src)

	for i := 0; i < 3; i++ {
		p, err := c.Get(context.Background(), "pm-kisan", i18n.English)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if p.Name != "Scheme pm-kisan" {
			t.Fatalf("name = %q", p.Name)
		}
	}
	if src.fetches != 1 {
		t.Fatalf("fetches = %d, want 1", src.fetches)
	}
}

func TestCacheRefetchesOnVersionBump(t *testing.T) {
	src := &fakeSource{schemes: map[string]*Snapshot{"pm-kisan": testScheme("pm-kisan", 1)}}
	c := NewCache(src)

	if _, err := c.Get(context.Background(), "pm-kisan", i18n.English); err != nil {
		t.Fatalf("get: %v", err)
	}

	src.schemes["pm-kisan"] = testScheme("pm-kisan", 2)
	src.schemes["pm-kisan"].Name[i18n.English] = "Scheme pm-kisan v2"

	p, err := c.Get(context.Background(), "pm-kisan", i18n.English)
	if err != nil {
		t.Fatalf("get after bump: %v", err)
	}
	if p.Name != "Scheme pm-kisan v2" {
		t.Fatalf("stale content served: %q", p.Name)
	}
	if p.Version != 2 {
		t.Fatalf("version = %d, want 2", p.Version)
	}
	if src.fetches != 2 {
		t.Fatalf("fetches = %d, want 2", src.fetches)
	}
}

func TestCacheRefetchesWhenVersionCheckFails(t *testing.T) {
	src := &fakeSource{schemes: map[string]*Snapshot{"pm-kisan": testScheme("pm-kisan", 1)}}
	c := NewCache(src)

	if _, err := c.Get(context.Background(), "pm-kisan", i18n.English); err != nil {
		t.Fatalf("get: %v", err)
	}
	src.verErr = errors.New("db down")
	if _, err := c.Get(context.Background(), "pm-kisan", i18n.English); err != nil {
		t.Fatalf("get with failing version check: %v", err)
	}
	if src.fetches != 2 {
		t.Fatalf("fetches = %d, want 2 (version check failure must not serve cached)", src.fetches)
	}
}

func TestCacheUnknownScheme(t *testing.T) {
	src := &fakeSource{schemes: map[string]*Snapshot{}}
	c := NewCache(src)

	_, err := c.Get(context.Background(), "nope", i18n.English)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("kind = %v, want NOT_FOUND", apperror.KindOf(err))
	}
}

func TestCacheSnapshotsAreIsolated(t *testing.T) {
	src := &fakeSource{schemes: map[string]*Snapshot{"pm-kisan": testScheme("pm-kisan", 1)}}
	c := NewCache(src)

	a, err := c.Snapshot(context.Background(), "pm-kisan")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	a.Name[i18n.English] = "mutated"
	a.Steps[0][i18n.English] = "mutated"

	b, err := c.Snapshot(context.Background(), "pm-kisan")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if b.Name[i18n.English] != "Scheme pm-kisan" || b.Steps[0][i18n.English] != "apply" {
		t.Fatal("mutation of a returned snapshot leaked into the cache")
	}
}

func TestCacheWarmAndCached(t *testing.T) {
	src := &fakeSource{schemes: map[string]*Snapshot{
		"b-scheme": testScheme("b-scheme", 1),
		"a-scheme": testScheme("a-scheme", 1),
	}}
	c := NewCache(src)

	n, err := c.Warm(context.Background())
	if err != nil {
		t.Fatalf("warm: %v", err)
	}
	if n != 2 {
		t.Fatalf("warmed = %d, want 2", n)
	}

	cached := c.Cached()
	if len(cached) != 2 {
		t.Fatalf("cached = %d, want 2", len(cached))
	}
	if cached[0].ID != "a-scheme" || cached[1].ID != "b-scheme" {
		t.Fatalf("order = [%s %s], want [a-scheme b-scheme]", cached[0].ID, cached[1].ID)
	}
}
