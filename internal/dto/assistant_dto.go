package dto

import "time"

// --- Session lifecycle ---

type CreateSessionRequest struct {
	Language         string `json:"language" validate:"omitempty,oneof=en hi"`
	ReturningUserRef string `json:"returning_user_ref,omitempty" validate:"omitempty,max=128"`
	// Consent records the user's opt-ins up front; without profile
	// retention consent an end with persist=true falls back to scrubbing.
	Consent *ConsentRequest `json:"consent,omitempty"`
}

type ConsentRequest struct {
	AudioRetention   bool `json:"audio_retention"`
	ProfileRetention bool `json:"profile_retention"`
}

type SessionResponse struct {
	SessionId string `json:"session_id"`
	Language  string `json:"language"`
	State     string `json:"state"`
	Greeting  string `json:"greeting,omitempty"`
}

// SessionSnapshotResponse exposes the live session for diagnostics: current
// state, stack, pending question and the transcript tail.
type SessionSnapshotResponse struct {
	SessionId      string         `json:"session_id"`
	Language       string         `json:"language"`
	State          string         `json:"state"`
	StateStack     []string       `json:"state_stack,omitempty"`
	ActiveSchemeId string         `json:"active_scheme_id,omitempty"`
	ActiveQuestion string         `json:"active_question,omitempty"`
	TurnCount      int            `json:"turn_count"`
	History        []TurnSnapshot `json:"history,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
}

type TurnSnapshot struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// --- Turns ---

type TurnRequest struct {
	SessionId  string  `json:"session_id" validate:"required,uuid4"`
	Utterance  string  `json:"utterance" validate:"required,max=1024"`
	Language   string  `json:"language,omitempty" validate:"omitempty,oneof=en hi"`
	Confidence float64 `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
	// Intent lets a caller that already classified the utterance skip the
	// built-in classifier.
	Intent string `json:"intent,omitempty"`
}

type AudioTurnRequest struct {
	SessionId string `json:"session_id" validate:"required,uuid4"`
	// Audio is base64-encoded clip content.
	Audio string `json:"audio" validate:"required"`
	MIME  string `json:"mime,omitempty"`
}

type TurnResponse struct {
	SessionId    string   `json:"session_id"`
	ResponseText string   `json:"response_text"`
	State        string   `json:"state"`
	Suggestions  []string `json:"suggestions,omitempty"`
	Ended        bool     `json:"ended,omitempty"`
	// Audio carries the synthesized response for audio turns,
	// base64-encoded.
	Audio     string `json:"audio,omitempty"`
	AudioMIME string `json:"audio_mime,omitempty"`
}

type EndSessionRequest struct {
	// Persist archives the transcript; requires recorded consent.
	Persist bool `query:"persist"`
}

// --- Admin: scheme catalog ---

type SchemeUpsertRequest struct {
	Id          string              `json:"id" validate:"required,max=64"`
	Code        string              `json:"code" validate:"required,max=64"`
	Category    string              `json:"category" validate:"required,max=64"`
	Name        map[string]string   `json:"name" validate:"required"`
	Description map[string]string   `json:"description" validate:"required"`
	Criteria    []CriterionPayload  `json:"criteria" validate:"required,min=1,dive"`
	Steps       []map[string]string `json:"steps" validate:"required,min=1"`
	Documents   []map[string]string `json:"documents,omitempty"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
}

type CriterionPayload struct {
	Name      string           `json:"name" validate:"required"`
	Field     string           `json:"field" validate:"required"`
	Predicate PredicatePayload `json:"predicate" validate:"required"`
}

type PredicatePayload struct {
	Kind   string   `json:"kind" validate:"required,oneof=range membership custom"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	OneOf  []string `json:"one_of,omitempty"`
	Custom string   `json:"custom,omitempty"`
	Param  string   `json:"param,omitempty"`
}

type SchemeResponse struct {
	Id          string     `json:"id"`
	Code        string     `json:"code"`
	Category    string     `json:"category"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Steps       []string   `json:"steps"`
	Documents   []string   `json:"documents,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Version     int        `json:"version"`
}

type SchemeListRequest struct {
	Category string `query:"category"`
	Language string `query:"language" validate:"omitempty,oneof=en hi"`
}

// --- Admin: metrics ---

type SessionMetricsResponse struct {
	Sessions       int64   `json:"sessions"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
	AvgDuration    float64 `json:"avg_duration_seconds"`
	AvgTurns       float64 `json:"avg_turns"`
	ErrorRate      float64 `json:"error_rate"`
}
