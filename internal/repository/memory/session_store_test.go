package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

func newSession(id string, version int64) *store.Session {
	now := time.Now()
	return &store.Session{
		ID:             id,
		Language:       i18n.English,
		State:          store.StateMainMenu,
		Profile:        store.UserProfile{},
		CreatedAt:      now,
		LastAccessedAt: now,
		TTL:            30 * time.Minute,
		Version:        version,
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	if err := s.Save(ctx, newSession("a", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "a" || got.Version != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestGetMiss(t *testing.T) {
	s := NewSessionStore()
	_, err := s.Get(context.Background(), "missing")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("kind = %v, want NOT_FOUND", apperror.KindOf(err))
	}
}

func TestStoredSessionsAreIsolated(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	sess := newSession("a", 1)
	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	sess.TurnCount = 99

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TurnCount != 0 {
		t.Fatal("caller mutation leaked into the store")
	}
	got.State = store.StateEnded

	again, _ := s.Get(ctx, "a")
	if again.State != store.StateMainMenu {
		t.Fatal("returned session aliases the stored one")
	}
}

func TestCompareAndSwap(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	if err := s.Save(ctx, newSession("a", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}

	next := newSession("a", 2)
	if err := s.CompareAndSwap(ctx, next, 1); err != nil {
		t.Fatalf("cas: %v", err)
	}

	stale := newSession("a", 2)
	err := s.CompareAndSwap(ctx, stale, 1)
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("kind = %v, want CONFLICT", apperror.KindOf(err))
	}
}

func TestCompareAndSwapSerializesWriters(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	if err := s.Save(ctx, newSession("a", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.CompareAndSwap(ctx, newSession("a", 2), 1); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
}

func TestAllListsSessions(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()

	_ = s.Save(ctx, newSession("a", 1))
	_ = s.Save(ctx, newSession("b", 1))
	_ = s.Delete(ctx, "a")

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || all[0].ID != "b" {
		t.Fatalf("all = %v", all)
	}
}
