package gcp

import (
	"context"
	"time"

	ttsapi "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/speech"
)

const synthesizeTimeout = 30 * time.Second

// Synthesizer renders assistant responses with Google Cloud Text-to-Speech.
// Output is MP3 returned inline; nothing is written to storage.
type Synthesizer struct {
	client *ttsapi.Client
}

func NewSynthesizer(ctx context.Context) (*Synthesizer, error) {
	c, err := ttsapi.NewClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindTransient, err, "texttospeech client")
	}
	return &Synthesizer{client: c}, nil
}

func (s *Synthesizer) Close() error {
	return s.client.Close()
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string, lang i18n.Language, rate float64) (speech.AudioHandle, error) {
	if text == "" {
		return speech.AudioHandle{}, apperror.New(apperror.KindValidation, "empty text")
	}
	if rate <= 0 {
		rate = 1.0
	}

	ctx, cancel := context.WithTimeout(ctx, synthesizeTimeout)
	defer cancel()

	voice := voiceFor(lang)
	resp, err := s.client.SynthesizeSpeech(ctx, &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: text},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: languageCode(lang),
			Name:         voice,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding: ttspb.AudioEncoding_MP3,
			SpeakingRate:  rate,
		},
	})
	if err != nil {
		return speech.AudioHandle{}, classify(err, "speech synthesize")
	}
	return speech.AudioHandle{
		Content: resp.AudioContent,
		MIME:    "audio/mpeg",
		Voice:   voice,
	}, nil
}

func voiceFor(lang i18n.Language) string {
	switch lang {
	case i18n.Hindi:
		return "hi-IN-Wavenet-A"
	default:
		return "en-IN-Wavenet-A"
	}
}
