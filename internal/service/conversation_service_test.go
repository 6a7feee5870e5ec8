package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sahayak-be/internal/config"
	"sahayak-be/internal/dto"
	"sahayak-be/internal/websocket"
	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/dialog/intent"
	"sahayak-be/pkg/eligibility"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/scheme"
	"sahayak-be/pkg/session"
	"sahayak-be/pkg/store"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*store.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*store.Session{}}
}

func (m *memStore) Save(_ context.Context, sess *store.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess.Clone()
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindNotFound, "session %s", id)
	}
	return sess.Clone(), nil
}

func (m *memStore) CompareAndSwap(_ context.Context, sess *store.Session, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.sessions[sess.ID]
	if !ok {
		return apperror.Newf(apperror.KindNotFound, "session %s", sess.ID)
	}
	if current.Version != expected {
		return apperror.Newf(apperror.KindConflict, "session %s version %d != %d", sess.ID, current.Version, expected)
	}
	m.sessions[sess.ID] = sess.Clone()
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type staticSource struct {
	schemes map[string]*scheme.Snapshot
}

func (s *staticSource) FetchByID(_ context.Context, id string) (*scheme.Snapshot, error) {
	return s.schemes[id], nil
}

func (s *staticSource) FetchAll(_ context.Context) ([]*scheme.Snapshot, error) {
	out := make([]*scheme.Snapshot, 0, len(s.schemes))
	for _, snap := range s.schemes {
		out = append(out, snap)
	}
	return out, nil
}

func (s *staticSource) CurrentVersion(_ context.Context, id string) (int, error) {
	snap, ok := s.schemes[id]
	if !ok {
		return 0, apperror.Newf(apperror.KindNotFound, "scheme %s", id)
	}
	return snap.Version, nil
}

type recordingMetrics struct {
	mu      sync.Mutex
	ended   int
	expired int
}

func (r *recordingMetrics) RecordEnd(context.Context, *store.Session, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *recordingMetrics) RecordExpiredRead(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired++
}

func (r *recordingMetrics) Summary(context.Context) (*dto.SessionMetricsResponse, error) {
	return &dto.SessionMetricsResponse{}, nil
}

func minFloat(v float64) *float64 { return &v }

func kisanSnapshot() *scheme.Snapshot {
	return &scheme.Snapshot{
		ID:       "pm-kisan",
		Code:     "PMK",
		Category: "agriculture",
		Name:     i18n.Text{i18n.English: "PM Kisan", i18n.Hindi: "पीएम किसान"},
		Description: i18n.Text{
			i18n.English: "Income support for farmer families.",
			i18n.Hindi:   "किसान परिवारों के लिए आय सहायता।",
		},
		Criteria: eligibility.Criteria{
			{
				Name:      "adult",
				Field:     store.FieldAge,
				Predicate: eligibility.Predicate{Kind: eligibility.KindRange, Min: minFloat(18)},
			},
			{
				Name:      "farming",
				Field:     store.FieldOccupation,
				Predicate: eligibility.Predicate{Kind: eligibility.KindMembership, OneOf: []string{"farmer"}},
			},
		},
		Steps: []i18n.Text{
			{i18n.English: "Visit the portal.", i18n.Hindi: "पोर्टल पर जाएँ।"},
			{i18n.English: "Fill the form.", i18n.Hindi: "फ़ॉर्म भरें।"},
		},
		Documents: []i18n.Text{
			{i18n.English: "Aadhaar card", i18n.Hindi: "आधार कार्ड"},
		},
		Version: 1,
	}
}

func newTestConversation(t *testing.T) (IConversationService, *recordingMetrics, *session.Manager) {
	t.Helper()

	manager := session.NewManager(newMemStore())
	cache := scheme.NewCache(&staticSource{schemes: map[string]*scheme.Snapshot{
		"pm-kisan": kisanSnapshot(),
	}})
	metrics := &recordingMetrics{}
	hub := websocket.NewHub(nil, nopLogger{})
	cfg := &config.Config{
		Session: config.SessionConfig{TurnBudget: 0},
		Speech:  config.SpeechConfig{SpeakingRate: 1.0},
	}

	svc := NewConversationService(
		nil,
		manager,
		cache,
		intent.NewRuleClassifier(),
		hub,
		metrics,
		nil,
		nil,
		nil,
		cfg,
		nopLogger{},
	)
	return svc, metrics, manager
}

func turn(t *testing.T, svc IConversationService, sessionID, utterance string) *dto.TurnResponse {
	t.Helper()
	res, err := svc.Turn(context.Background(), &dto.TurnRequest{SessionId: sessionID, Utterance: utterance})
	require.NoError(t, err)
	return res
}

func TestConversationFullEligibilityFlow(t *testing.T) {
	svc, metrics, _ := newTestConversation(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	require.Equal(t, string(store.StateLanguageSelection), created.State)
	require.Contains(t, created.Greeting, "choose a language")

	res := turn(t, svc, created.SessionId, "English")
	require.Equal(t, string(store.StateMainMenu), res.State)
	require.Contains(t, res.ResponseText, "continue in English")

	res = turn(t, svc, created.SessionId, "browse schemes")
	require.Equal(t, string(store.StateSchemeBrowsing), res.State)
	require.Contains(t, res.ResponseText, "PM Kisan")
	require.NotEmpty(t, res.Suggestions)

	res = turn(t, svc, created.SessionId, "the first one")
	require.Equal(t, string(store.StateSchemeDetails), res.State)
	require.Contains(t, res.ResponseText, "Income support for farmer families.")
	require.Contains(t, res.ResponseText, "Aadhaar card")

	res = turn(t, svc, created.SessionId, "check my eligibility")
	require.Equal(t, string(store.StateEligibilityCheck), res.State)
	require.Contains(t, res.ResponseText, "What is your age")

	res = turn(t, svc, created.SessionId, "32")
	require.Contains(t, res.ResponseText, "What is your occupation")

	res = turn(t, svc, created.SessionId, "farmer")
	require.Contains(t, res.ResponseText, "you appear to be eligible for PM Kisan")

	res = turn(t, svc, created.SessionId, "goodbye")
	require.Equal(t, string(store.StateConfirmation), res.State)
	require.Contains(t, res.ResponseText, "end this conversation")
	require.Contains(t, res.Suggestions, "Yes")

	res = turn(t, svc, created.SessionId, "yes")
	require.True(t, res.Ended)
	require.Contains(t, res.ResponseText, "Goodbye")

	metrics.mu.Lock()
	require.Equal(t, 1, metrics.ended)
	metrics.mu.Unlock()

	_, err = svc.Snapshot(ctx, created.SessionId)
	require.True(t, apperror.Is(err, apperror.KindExpired))
}

func TestConversationIneligibleSuggestsNothingWithoutAlternatives(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Language: "en"})
	require.NoError(t, err)
	require.Equal(t, string(store.StateMainMenu), created.State)

	turn(t, svc, created.SessionId, "browse schemes")
	turn(t, svc, created.SessionId, "first")
	turn(t, svc, created.SessionId, "am i eligible")
	turn(t, svc, created.SessionId, "32")
	res := turn(t, svc, created.SessionId, "teacher")
	require.Contains(t, res.ResponseText, "you do not appear to be eligible")
	// Only one scheme exists; no alternatives to offer.
	require.NotContains(t, res.ResponseText, "You may instead qualify for")
}

func TestConversationLowConfidenceAsksToRepeat(t *testing.T) {
	svc, _, manager := newTestConversation(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Language: "en"})
	require.NoError(t, err)

	res, err := svc.Turn(ctx, &dto.TurnRequest{
		SessionId:  created.SessionId,
		Utterance:  "mumble mumble",
		Confidence: 0.2,
	})
	require.NoError(t, err)
	require.Contains(t, res.ResponseText, "Please repeat")
	require.Equal(t, string(store.StateMainMenu), res.State)

	sess, err := manager.Get(ctx, created.SessionId)
	require.NoError(t, err)
	require.Len(t, sess.History, 2)
	require.True(t, sess.History[0].LowConfidence)
}

func TestConversationGoBackReturnsToPriorState(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Language: "en"})
	require.NoError(t, err)

	turn(t, svc, created.SessionId, "browse schemes")
	res := turn(t, svc, created.SessionId, "first")
	require.Equal(t, string(store.StateSchemeDetails), res.State)

	res = turn(t, svc, created.SessionId, "go back")
	require.Equal(t, string(store.StateSchemeBrowsing), res.State)
	require.Contains(t, res.ResponseText, "PM Kisan")
}

func TestConversationGoBackEffectFailureKeepsPosition(t *testing.T) {
	source := &staticSource{schemes: map[string]*scheme.Snapshot{
		"pm-kisan": kisanSnapshot(),
	}}
	schemes := scheme.NewCache(source)
	manager := session.NewManager(newMemStore())
	cfg := &config.Config{
		Session: config.SessionConfig{TurnBudget: 0},
		Speech:  config.SpeechConfig{SpeakingRate: 1.0},
	}
	svc := NewConversationService(
		nil,
		manager,
		schemes,
		intent.NewRuleClassifier(),
		websocket.NewHub(nil, nopLogger{}),
		&recordingMetrics{},
		nil,
		nil,
		nil,
		cfg,
		nopLogger{},
	)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Language: "en"})
	require.NoError(t, err)

	turn(t, svc, created.SessionId, "browse schemes")
	turn(t, svc, created.SessionId, "first")
	res := turn(t, svc, created.SessionId, "check my eligibility")
	require.Equal(t, string(store.StateEligibilityCheck), res.State)

	// The scheme disappears between turns.
	delete(source.schemes, "pm-kisan")
	schemes.Invalidate("pm-kisan")

	// Going back re-enters SCHEME_DETAILS, whose effect now fails. The turn
	// must leave the user exactly where they were, not one state further back.
	res = turn(t, svc, created.SessionId, "go back")
	require.Equal(t, string(store.StateEligibilityCheck), res.State)
	require.Contains(t, res.ResponseText, "could not find")

	// With the scheme restored, the intact stack unwinds one state at a time.
	source.schemes["pm-kisan"] = kisanSnapshot()
	res = turn(t, svc, created.SessionId, "go back")
	require.Equal(t, string(store.StateSchemeDetails), res.State)

	res = turn(t, svc, created.SessionId, "go back")
	require.Equal(t, string(store.StateSchemeBrowsing), res.State)
}

func TestConversationDenyCancelsEnd(t *testing.T) {
	svc, metrics, _ := newTestConversation(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Language: "en"})
	require.NoError(t, err)

	res := turn(t, svc, created.SessionId, "end session")
	require.Equal(t, string(store.StateConfirmation), res.State)

	res = turn(t, svc, created.SessionId, "no")
	require.False(t, res.Ended)
	require.Equal(t, string(store.StateMainMenu), res.State)
	require.Contains(t, res.ResponseText, "continue where we were")

	metrics.mu.Lock()
	require.Equal(t, 0, metrics.ended)
	metrics.mu.Unlock()
}

func TestEndSessionEndpointRecordsMetrics(t *testing.T) {
	svc, metrics, _ := newTestConversation(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Language: "en"})
	require.NoError(t, err)

	require.NoError(t, svc.EndSession(ctx, created.SessionId, false))

	metrics.mu.Lock()
	require.Equal(t, 1, metrics.ended)
	metrics.mu.Unlock()

	// Ending twice is harmless.
	require.NoError(t, svc.EndSession(ctx, created.SessionId, false))
}

func TestAudioTurnDisabledWithoutRecognizer(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Language: "en"})
	require.NoError(t, err)

	_, err = svc.AudioTurn(ctx, &dto.AudioTurnRequest{SessionId: created.SessionId, Audio: "aGVsbG8="})
	require.True(t, apperror.Is(err, apperror.KindValidation))
}
