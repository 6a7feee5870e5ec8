// Package speech is the capability boundary for voice input and output.
// Implementations wrap a cloud provider; the orchestrator only sees these
// interfaces and retries them through the shared retry policy.
package speech

import (
	"context"

	"sahayak-be/pkg/i18n"
)

// Audio is a short utterance clip uploaded with an audio turn.
type Audio struct {
	Content []byte
	MIME    string
}

// Transcript is the recognizer output. Confidence is in [0,1]; the
// orchestrator short-circuits low-confidence turns to a clarification
// response instead of resolving an intent from unreliable text.
type Transcript struct {
	Text       string
	Confidence float64
}

// AudioHandle is synthesized speech ready to hand back to the client. Raw
// audio is never stored server-side; the handle is returned inline.
type AudioHandle struct {
	Content []byte
	MIME    string
	Voice   string
}

type Recognizer interface {
	Transcribe(ctx context.Context, audio Audio, langHint i18n.Language) (Transcript, error)
}

type Synthesizer interface {
	// Synthesize renders text in lang at the given speaking rate
	// (1.0 = normal). rate <= 0 means provider default.
	Synthesize(ctx context.Context, text string, lang i18n.Language, rate float64) (AudioHandle, error)
}
