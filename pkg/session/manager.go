package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

// DefaultTTL is the sliding inactivity window after which a session expires.
const DefaultTTL = 30 * time.Minute

// Store is the persistence backend the manager drives. Implementations live
// in internal/repository (in-memory and Redis); CompareAndSwap must reject a
// write whose expected version no longer matches the stored one with an
// apperror.KindConflict error.
type Store interface {
	Save(ctx context.Context, sess *store.Session) error
	Get(ctx context.Context, id string) (*store.Session, error)
	CompareAndSwap(ctx context.Context, sess *store.Session, expected int64) error
	Delete(ctx context.Context, id string) error
}

// Records looks up a returning user's most recent session record so a new
// session can inherit their language preference. ok is false when no record
// exists inside the retention window.
type Records interface {
	LastLanguage(ctx context.Context, userRef string) (lang i18n.Language, ok bool, err error)
}

// Archiver receives the full session for asynchronous transcript archival
// when the user ended with retention consent.
type Archiver interface {
	Archive(ctx context.Context, sess *store.Session) error
}

// Hooks are optional observation points; nil funcs are skipped.
type Hooks struct {
	// ExpiredRead fires when a Get finds a session past its TTL. Expired
	// reads still count toward session metrics.
	ExpiredRead func(id string)
}

// Manager owns the live session lifecycle. All mutations funnel through
// Commit, which enforces optimistic concurrency by session version; callers
// never hold a reference into the store, only clones.
type Manager struct {
	store   Store
	records Records
	archive Archiver
	clock   clockwork.Clock
	ttl     time.Duration
	hooks   Hooks
}

type Option func(*Manager)

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

func WithRecords(r Records) Option {
	return func(m *Manager) { m.records = r }
}

func WithArchiver(a Archiver) Option {
	return func(m *Manager) { m.archive = a }
}

func WithHooks(h Hooks) Option {
	return func(m *Manager) { m.hooks = h }
}

func NewManager(st Store, opts ...Option) *Manager {
	m := &Manager{
		store: st,
		clock: clockwork.NewRealClock(),
		ttl:   DefaultTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session. When language is empty and userRef identifies
// a returning user with a session record inside the retention window, the
// prior language is inherited; a session that already knows its language
// skips language selection and opens on the main menu.
func (m *Manager) Create(ctx context.Context, language i18n.Language, userRef string) (*store.Session, error) {
	if language == "" && userRef != "" && m.records != nil {
		prior, ok, err := m.records.LastLanguage(ctx, userRef)
		if err == nil && ok {
			language = prior
		}
		// A record lookup failure is not fatal: the caller just gets
		// the language-selection opening.
	}

	now := m.clock.Now()
	state := store.InitialState
	if language != "" {
		state = store.StateMainMenu
	}
	sess := &store.Session{
		ID:             uuid.NewString(),
		UserRef:        userRef,
		Language:       language,
		State:          state,
		Profile:        store.UserProfile{},
		CreatedAt:      now,
		LastAccessedAt: now,
		TTL:            m.ttl,
		Version:        1,
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, apperror.Wrap(apperror.KindTransient, err, "save new session")
	}
	return sess.Clone(), nil
}

// Get returns a clone of the live session. An expired or ended session is
// reported as KindExpired and its live copy dropped; a successful read slides
// the TTL window to now.
func (m *Manager) Get(ctx context.Context, id string) (*store.Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now()
	if sess.Expired(now) {
		if m.hooks.ExpiredRead != nil {
			m.hooks.ExpiredRead(id)
		}
		if !sess.Ended {
			_ = m.store.Delete(ctx, id)
		}
		return nil, apperror.Newf(apperror.KindExpired, "session %s expired", id)
	}

	touched := sess.Clone()
	touched.Touch(now)
	touched.Version++
	if err := m.store.CompareAndSwap(ctx, touched, sess.Version); err != nil {
		// Losing the touch race is harmless; the winner slid the TTL.
		if apperror.KindOf(err) != apperror.KindConflict {
			return nil, err
		}
	}
	return touched, nil
}

// Commit applies mutate to a fresh read of the session and writes it back
// under an optimistic version check. On KindConflict the caller re-reads and
// retries; mutate must therefore be side-effect free until Commit returns.
func (m *Manager) Commit(ctx context.Context, id string, mutate func(*store.Session) error) (*store.Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now()
	if sess.Expired(now) {
		return nil, apperror.Newf(apperror.KindExpired, "session %s expired", id)
	}

	next := sess.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Touch(now)
	next.Version = sess.Version + 1
	if err := m.store.CompareAndSwap(ctx, next, sess.Version); err != nil {
		return nil, err
	}
	return next, nil
}

// End terminates the session. With persist (retention consent) the full
// transcript and profile are handed to the archiver before the live copy is
// scrubbed; without it the personal data is removed irreversibly and only
// aggregate counters survive. Either way a scrubbed tombstone replaces the
// live session so later reads report KindExpired rather than KindNotFound.
func (m *Manager) End(ctx context.Context, id string, persist bool) error {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Ended {
		return nil
	}

	if persist && m.archive != nil {
		if err := m.archive.Archive(ctx, sess.Clone()); err != nil {
			return apperror.Wrap(apperror.KindTransient, err, "archive session")
		}
	}

	tomb := sess.Clone()
	tomb.Scrub()
	tomb.Ended = true
	tomb.Touch(m.clock.Now())
	tomb.Version = sess.Version + 1
	if err := m.store.CompareAndSwap(ctx, tomb, sess.Version); err != nil {
		return err
	}
	return nil
}
