package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*store.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*store.Session{}}
}

func (f *fakeStore) Save(_ context.Context, sess *store.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sess.ID] = sess.Clone()
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound, "session %s", id)
	}
	return sess.Clone(), nil
}

func (f *fakeStore) CompareAndSwap(_ context.Context, sess *store.Session, expected int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.sessions[sess.ID]
	if !ok {
		return apperror.Newf(apperror.KindNotFound, "session %s", sess.ID)
	}
	if current.Version != expected {
		return apperror.Newf(apperror.KindConflict, "session %s version %d != %d", sess.ID, current.Version, expected)
	}
	f.sessions[sess.ID] = sess.Clone()
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

type fakeRecords struct {
	lang i18n.Language
	ok   bool
}

func (f *fakeRecords) LastLanguage(_ context.Context, _ string) (i18n.Language, bool, error) {
	return f.lang, f.ok, nil
}

type fakeArchiver struct {
	archived []*store.Session
}

func (f *fakeArchiver) Archive(_ context.Context, sess *store.Session) error {
	f.archived = append(f.archived, sess)
	return nil
}

func TestCreateOpensOnLanguageSelection(t *testing.T) {
	m := NewManager(newFakeStore(), WithClock(clockwork.NewFakeClock()))

	sess, err := m.Create(context.Background(), "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.State != store.StateLanguageSelection {
		t.Fatalf("state = %s, want %s", sess.State, store.StateLanguageSelection)
	}
	if sess.ID == "" || sess.Version != 1 {
		t.Fatalf("id=%q version=%d", sess.ID, sess.Version)
	}
}

func TestCreateWithLanguageSkipsSelection(t *testing.T) {
	m := NewManager(newFakeStore(), WithClock(clockwork.NewFakeClock()))

	sess, err := m.Create(context.Background(), i18n.Hindi, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.State != store.StateMainMenu {
		t.Fatalf("state = %s, want %s", sess.State, store.StateMainMenu)
	}
	if sess.Language != i18n.Hindi {
		t.Fatalf("language = %s", sess.Language)
	}
}

func TestCreateReturningUserInheritsLanguage(t *testing.T) {
	m := NewManager(newFakeStore(),
		WithClock(clockwork.NewFakeClock()),
		WithRecords(&fakeRecords{lang: i18n.Hindi, ok: true}))

	sess, err := m.Create(context.Background(), "", "user-42")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.Language != i18n.Hindi {
		t.Fatalf("language = %q, want hi", sess.Language)
	}
	if sess.State != store.StateMainMenu {
		t.Fatalf("state = %s, want %s", sess.State, store.StateMainMenu)
	}
}

func TestGetSlidesTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewManager(newFakeStore(), WithClock(clock), WithTTL(30*time.Minute))

	sess, err := m.Create(context.Background(), i18n.English, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 20 min + 20 min is past the original window but each read slides it.
	clock.Advance(20 * time.Minute)
	if _, err := m.Get(context.Background(), sess.ID); err != nil {
		t.Fatalf("get after 20m: %v", err)
	}
	clock.Advance(20 * time.Minute)
	if _, err := m.Get(context.Background(), sess.ID); err != nil {
		t.Fatalf("get after slide: %v", err)
	}
}

func TestGetExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var expiredReads int
	m := NewManager(newFakeStore(),
		WithClock(clock),
		WithTTL(30*time.Minute),
		WithHooks(Hooks{ExpiredRead: func(string) { expiredReads++ }}))

	sess, err := m.Create(context.Background(), i18n.English, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock.Advance(31 * time.Minute)
	_, err = m.Get(context.Background(), sess.ID)
	if apperror.KindOf(err) != apperror.KindExpired {
		t.Fatalf("kind = %v, want EXPIRED", apperror.KindOf(err))
	}
	if expiredReads != 1 {
		t.Fatalf("expiredReads = %d, want 1", expiredReads)
	}

	// The live copy is dropped, so the next read is a plain miss.
	_, err = m.Get(context.Background(), sess.ID)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("kind = %v, want NOT_FOUND", apperror.KindOf(err))
	}
}

func TestCommitBumpsVersion(t *testing.T) {
	m := NewManager(newFakeStore(), WithClock(clockwork.NewFakeClock()))

	sess, err := m.Create(context.Background(), i18n.English, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := m.Commit(context.Background(), sess.ID, func(s *store.Session) error {
		s.TurnCount++
		return nil
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got.TurnCount != 1 {
		t.Fatalf("turn count = %d", got.TurnCount)
	}
	if got.Version != sess.Version+1 {
		t.Fatalf("version = %d, want %d", got.Version, sess.Version+1)
	}
}

func TestCommitConflict(t *testing.T) {
	st := newFakeStore()
	m := NewManager(st, WithClock(clockwork.NewFakeClock()))

	sess, err := m.Create(context.Background(), i18n.English, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A concurrent writer lands between this Commit's read and its CAS.
	_, err = m.Commit(context.Background(), sess.ID, func(s *store.Session) error {
		raced := s.Clone()
		raced.Version++
		st.sessions[raced.ID] = raced
		return nil
	})
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("kind = %v, want CONFLICT", apperror.KindOf(err))
	}
}

func TestEndWithoutConsentScrubs(t *testing.T) {
	st := newFakeStore()
	arch := &fakeArchiver{}
	clock := clockwork.NewFakeClock()
	m := NewManager(st, WithClock(clock), WithArchiver(arch))

	sess, err := m.Create(context.Background(), i18n.English, "user-9")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = m.Commit(context.Background(), sess.ID, func(s *store.Session) error {
		s.Profile.Merge("age", store.NumberValue(34, clock.Now()))
		s.AppendTurn(store.Turn{Role: store.RoleUser, Text: "I am 34"})
		return nil
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := m.End(context.Background(), sess.ID, false); err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(arch.archived) != 0 {
		t.Fatal("archiver called without consent")
	}

	tomb := st.sessions[sess.ID]
	if tomb == nil || !tomb.Ended {
		t.Fatal("no ended tombstone in store")
	}
	if len(tomb.Profile) != 0 || len(tomb.History) != 0 || tomb.UserRef != "" {
		t.Fatal("personal data survived a consent-false end")
	}

	_, err = m.Get(context.Background(), sess.ID)
	if apperror.KindOf(err) != apperror.KindExpired {
		t.Fatalf("kind = %v, want EXPIRED after end", apperror.KindOf(err))
	}
}

func TestEndWithConsentArchives(t *testing.T) {
	st := newFakeStore()
	arch := &fakeArchiver{}
	clock := clockwork.NewFakeClock()
	m := NewManager(st, WithClock(clock), WithArchiver(arch))

	sess, err := m.Create(context.Background(), i18n.English, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = m.Commit(context.Background(), sess.ID, func(s *store.Session) error {
		s.AppendTurn(store.Turn{Role: store.RoleUser, Text: "hello"})
		return nil
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := m.End(context.Background(), sess.ID, true); err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(arch.archived) != 1 {
		t.Fatalf("archived = %d, want 1", len(arch.archived))
	}
	if len(arch.archived[0].History) != 1 {
		t.Fatal("archiver received a scrubbed session")
	}

	tomb := st.sessions[sess.ID]
	if len(tomb.History) != 0 {
		t.Fatal("transcript survived in the live store after end")
	}
}

func TestEndIsIdempotent(t *testing.T) {
	m := NewManager(newFakeStore(), WithClock(clockwork.NewFakeClock()))

	sess, err := m.Create(context.Background(), i18n.English, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.End(context.Background(), sess.ID, false); err != nil {
		t.Fatalf("first end: %v", err)
	}
	if err := m.End(context.Background(), sess.ID, false); err != nil {
		t.Fatalf("second end: %v", err)
	}
}
