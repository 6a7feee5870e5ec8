package store

import (
	"time"

	"sahayak-be/pkg/i18n"
)

// Conversation states owned by the dialog state machine. They live here so
// the session can persist them without importing the machine itself.
type State string

const (
	StateLanguageSelection State = "LANGUAGE_SELECTION"
	StateMainMenu          State = "MAIN_MENU"
	StateSchemeBrowsing    State = "SCHEME_BROWSING"
	StateSchemeDetails     State = "SCHEME_DETAILS"
	StateEligibilityCheck  State = "ELIGIBILITY_CHECK"
	StateApplicationGuide  State = "APPLICATION_GUIDE"
	StateConfirmation      State = "CONFIRMATION"
	StateEnded             State = "ENDED"
)

// InitialState is where every new session begins.
const InitialState = StateLanguageSelection

// AllStates lists every conversation state in a fixed order.
func AllStates() []State {
	return []State{
		StateLanguageSelection,
		StateMainMenu,
		StateSchemeBrowsing,
		StateSchemeDetails,
		StateEligibilityCheck,
		StateApplicationGuide,
		StateConfirmation,
		StateEnded,
	}
}

const (
	// MaxStackDepth bounds the back-navigation stack. The oldest entry is
	// dropped when a push exceeds it.
	MaxStackDepth = 16

	// MaxHistory bounds the retained message history per session.
	MaxHistory = 50

	// MaxExtraKeys bounds the forward-compatible extension map on the
	// dialog context.
	MaxExtraKeys = 16
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MentionKind tags an entity mention inside a turn so the context resolver
// can match referring expressions by type.
type MentionKind string

const (
	MentionScheme       MentionKind = "scheme"
	MentionProfileField MentionKind = "profile_field"
)

// Mention is an entity surfaced in a turn: a scheme id or a profile field
// name.
type Mention struct {
	Kind  MentionKind `json:"kind"`
	Value string      `json:"value"`
}

// Turn is one message within a session. Turns are append-only; ordering is
// insertion order.
type Turn struct {
	Role          Role      `json:"role"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	Intent        string    `json:"intent,omitempty"`
	Mentions      []Mention `json:"mentions,omitempty"`
	LowConfidence bool      `json:"low_confidence,omitempty"`
}

type FieldKind string

const (
	FieldNumber FieldKind = "number"
	FieldText   FieldKind = "text"
)

// Canonical profile fields in the fixed priority order used when asking the
// next eligibility question.
const (
	FieldAge        = "age"
	FieldIncome     = "income"
	FieldLocation   = "location"
	FieldOccupation = "occupation"
)

// PriorityFields returns the canonical field ordering. Custom fields always
// rank after these, in criteria order.
func PriorityFields() []string {
	return []string{FieldAge, FieldIncome, FieldLocation, FieldOccupation}
}

// FieldValue is one typed profile value with the timestamp of its last write.
type FieldValue struct {
	Kind      FieldKind `json:"kind"`
	Num       float64   `json:"num,omitempty"`
	Str       string    `json:"str,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NumberValue builds a numeric field value stamped at now.
func NumberValue(v float64, now time.Time) FieldValue {
	return FieldValue{Kind: FieldNumber, Num: v, UpdatedAt: now}
}

// TextValue builds a text field value stamped at now.
func TextValue(v string, now time.Time) FieldValue {
	return FieldValue{Kind: FieldText, Str: v, UpdatedAt: now}
}

// UserProfile is a sparse mapping of named fields to typed values.
type UserProfile map[string]FieldValue

// Merge applies a last-write-wins update: an existing value is never
// overwritten by one with an older timestamp.
func (p UserProfile) Merge(name string, v FieldValue) bool {
	if existing, ok := p[name]; ok && existing.UpdatedAt.After(v.UpdatedAt) {
		return false
	}
	p[name] = v
	return true
}

// Clone returns an independent copy of the profile.
func (p UserProfile) Clone() UserProfile {
	out := make(UserProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// DialogContext is the tagged context carried across turns. Known keys are
// explicit fields; Extra is a bounded extension map for custom attributes.
type DialogContext struct {
	// PendingState and PendingIntent hold a transition parked behind the
	// CONFIRMATION gate.
	PendingState  State  `json:"pending_state,omitempty"`
	PendingIntent string `json:"pending_intent,omitempty"`

	ActiveSchemeID string `json:"active_scheme_id,omitempty"`
	ActiveCategory string `json:"active_category,omitempty"`

	// ActiveQuestion is the profile field the assistant is currently
	// asking for during an eligibility check.
	ActiveQuestion string `json:"active_question,omitempty"`

	// OfferedSchemes are the scheme ids last listed to the user, in the
	// order they were presented.
	OfferedSchemes []string `json:"offered_schemes,omitempty"`

	// StepIndex is the cursor into the active scheme's application steps.
	StepIndex int `json:"step_index,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// SetExtra stores a custom attribute, refusing new keys beyond the bound.
func (c *DialogContext) SetExtra(key, value string) bool {
	if c.Extra == nil {
		c.Extra = make(map[string]string)
	}
	if _, ok := c.Extra[key]; !ok && len(c.Extra) >= MaxExtraKeys {
		return false
	}
	c.Extra[key] = value
	return true
}

// ClearPending drops a parked confirmation transition.
func (c *DialogContext) ClearPending() {
	c.PendingState = ""
	c.PendingIntent = ""
}

// Consent captures the user's explicit opt-ins gating persistence of
// sensitive data beyond session end.
type Consent struct {
	AudioRetention   bool `json:"audio_retention"`
	ProfileRetention bool `json:"profile_retention"`
}

// Session is the live, in-store conversation state. It is owned exclusively
// by the session lifecycle manager; everything else receives clones.
type Session struct {
	ID       string        `json:"id"`
	UserRef  string        `json:"user_ref,omitempty"`
	Language i18n.Language `json:"language"`

	State      State   `json:"state"`
	StateStack []State `json:"state_stack,omitempty"`

	Profile UserProfile   `json:"profile"`
	History []Turn        `json:"history"`
	Context DialogContext `json:"context"`

	// TurnCount drives the periodic conversation summary; SummarizedAt
	// remembers the count at which the last summary was emitted.
	TurnCount    int `json:"turn_count"`
	SummarizedAt int `json:"summarized_at"`

	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	TTL            time.Duration `json:"ttl"`

	// Version strictly increases on every committed mutation and backs
	// the optimistic concurrency check.
	Version int64 `json:"version"`

	Consent    Consent `json:"consent"`
	ErrorCount int     `json:"error_count"`
	Completed  bool    `json:"completed"`
	Ended      bool    `json:"ended"`

	// GuidedAt is the watermark of the last inactivity guidance prompt,
	// so only one prompt is sent per idle period.
	GuidedAt time.Time `json:"guided_at,omitempty"`
}

// PushState records the prior state for back-navigation, dropping the oldest
// entry once the stack is full.
func (s *Session) PushState(prev State) {
	if len(s.StateStack) >= MaxStackDepth {
		s.StateStack = s.StateStack[1:]
	}
	s.StateStack = append(s.StateStack, prev)
}

// PopState removes and returns the most recent stacked state.
func (s *Session) PopState() (State, bool) {
	if len(s.StateStack) == 0 {
		return "", false
	}
	last := s.StateStack[len(s.StateStack)-1]
	s.StateStack = s.StateStack[:len(s.StateStack)-1]
	return last, true
}

// AppendTurn appends a message, trimming the oldest entries past the history
// bound.
func (s *Session) AppendTurn(t Turn) {
	s.History = append(s.History, t)
	if len(s.History) > MaxHistory {
		s.History = s.History[len(s.History)-MaxHistory:]
	}
}

// RecentTurns returns up to n most recent turns, newest last.
func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// Expired reports whether the session is past its TTL or was ended.
func (s *Session) Expired(now time.Time) bool {
	if s.Ended {
		return true
	}
	return now.After(s.LastAccessedAt.Add(s.TTL))
}

// Touch slides the TTL window to now.
func (s *Session) Touch(now time.Time) {
	s.LastAccessedAt = now
}

// Scrub irreversibly removes the user profile and message history. Only the
// aggregate counters survive for anonymized metrics.
func (s *Session) Scrub() {
	s.Profile = UserProfile{}
	s.History = nil
	s.Context = DialogContext{}
	s.UserRef = ""
}

// Clone returns a deep copy so callers can mutate freely before committing.
func (s *Session) Clone() *Session {
	out := *s
	out.StateStack = append([]State(nil), s.StateStack...)
	out.Profile = s.Profile.Clone()
	out.History = make([]Turn, len(s.History))
	for i, t := range s.History {
		out.History[i] = t
		out.History[i].Mentions = append([]Mention(nil), t.Mentions...)
	}
	out.Context.OfferedSchemes = append([]string(nil), s.Context.OfferedSchemes...)
	if s.Context.Extra != nil {
		out.Context.Extra = make(map[string]string, len(s.Context.Extra))
		for k, v := range s.Context.Extra {
			out.Context.Extra[k] = v
		}
	}
	return &out
}
