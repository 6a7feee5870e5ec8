package gcp

import (
	"context"
	"strings"
	"time"

	speechapi "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/speech"
)

const recognizeTimeout = 30 * time.Second

// Recognizer transcribes short utterance clips with Google Cloud
// Speech-to-Text. Conversation turns are seconds long, so the synchronous
// Recognize API is enough; no long-running jobs.
type Recognizer struct {
	client *speechapi.Client
	model  string
}

func NewRecognizer(ctx context.Context) (*Recognizer, error) {
	c, err := speechapi.NewClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindTransient, err, "speech client")
	}
	return &Recognizer{client: c, model: "latest_short"}, nil
}

func (r *Recognizer) Close() error {
	return r.client.Close()
}

func (r *Recognizer) Transcribe(ctx context.Context, audio speech.Audio, langHint i18n.Language) (speech.Transcript, error) {
	if len(audio.Content) == 0 {
		return speech.Transcript{}, apperror.New(apperror.KindValidation, "empty audio")
	}

	ctx, cancel := context.WithTimeout(ctx, recognizeTimeout)
	defer cancel()

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               languageCode(langHint),
			Model:                      r.model,
			Encoding:                   inferEncoding(audio.MIME),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio.Content},
		},
	}

	resp, err := r.client.Recognize(ctx, req)
	if err != nil {
		return speech.Transcript{}, classify(err, "speech recognize")
	}
	return parseRecognition(resp), nil
}

func parseRecognition(resp *speechpb.RecognizeResponse) speech.Transcript {
	if resp == nil || len(resp.Results) == 0 {
		return speech.Transcript{}
	}

	var full strings.Builder
	var confSum float64
	var confN int
	for _, result := range resp.Results {
		if result == nil || len(result.Alternatives) == 0 || result.Alternatives[0] == nil {
			continue
		}
		alt := result.Alternatives[0]
		text := strings.TrimSpace(alt.Transcript)
		if text == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(text)
		confSum += float64(alt.Confidence)
		confN++
	}

	t := speech.Transcript{Text: full.String()}
	if confN > 0 {
		t.Confidence = confSum / float64(confN)
	}
	return t
}

func inferEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(m, "wav"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3"):
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "ogg") || strings.Contains(m, "opus"):
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
