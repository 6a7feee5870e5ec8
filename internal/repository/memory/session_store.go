package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/store"
)

const (
	defaultExpiration = 24 * time.Hour
	cleanupInterval   = 10 * time.Minute
)

// SessionStore is the in-process live-session backend. Logical expiry is the
// lifecycle manager's job; the go-cache TTL only bounds memory for sessions
// nobody reads again (including ended tombstones).
type SessionStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (s *SessionStore) Save(_ context.Context, sess *store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(sess.ID, sess.Clone(), cache.DefaultExpiration)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, found := s.cache.Get(id)
	if !found {
		return nil, apperror.Newf(apperror.KindNotFound, "session %s", id)
	}
	return x.(*store.Session).Clone(), nil
}

// CompareAndSwap replaces the stored session only when its version still
// matches expected. The mutex makes check-and-set atomic; go-cache alone
// only guarantees per-operation safety.
func (s *SessionStore) CompareAndSwap(_ context.Context, sess *store.Session, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, found := s.cache.Get(sess.ID)
	if !found {
		return apperror.Newf(apperror.KindNotFound, "session %s", sess.ID)
	}
	current := x.(*store.Session)
	if current.Version != expected {
		return apperror.Newf(apperror.KindConflict, "session %s version %d != %d", sess.ID, current.Version, expected)
	}
	s.cache.Set(sess.ID, sess.Clone(), cache.DefaultExpiration)
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(id)
	return nil
}

// All returns clones of every live session. The inactivity sweeper scans
// these; it is not part of the lifecycle Store contract.
func (s *SessionStore) All(_ context.Context) ([]*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.cache.Items()
	out := make([]*store.Session, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*store.Session).Clone())
	}
	return out, nil
}
