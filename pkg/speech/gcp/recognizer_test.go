package gcp

import (
	"math"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"sahayak-be/pkg/i18n"
)

func TestParseRecognition(t *testing.T) {
	resp := &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{
				{Transcript: " am I eligible ", Confidence: 0.9},
			}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{
				{Transcript: "for pm kisan", Confidence: 0.7},
			}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{
				{Transcript: "   "},
			}},
		},
	}

	got := parseRecognition(resp)
	if got.Text != "am I eligible for pm kisan" {
		t.Fatalf("text = %q", got.Text)
	}
	if math.Abs(got.Confidence-0.8) > 1e-6 {
		t.Fatalf("confidence = %f, want 0.8", got.Confidence)
	}
}

func TestParseRecognitionEmpty(t *testing.T) {
	got := parseRecognition(&speechpb.RecognizeResponse{})
	if got.Text != "" || got.Confidence != 0 {
		t.Fatalf("got %+v, want zero transcript", got)
	}
}

func TestInferEncoding(t *testing.T) {
	cases := []struct {
		mime string
		want speechpb.RecognitionConfig_AudioEncoding
	}{
		{"audio/wav", speechpb.RecognitionConfig_LINEAR16},
		{"audio/flac", speechpb.RecognitionConfig_FLAC},
		{"audio/mp3", speechpb.RecognitionConfig_MP3},
		{"audio/ogg; codecs=opus", speechpb.RecognitionConfig_OGG_OPUS},
		{"application/octet-stream", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED},
	}
	for _, tc := range cases {
		if got := inferEncoding(tc.mime); got != tc.want {
			t.Errorf("inferEncoding(%q) = %v, want %v", tc.mime, got, tc.want)
		}
	}
}

func TestLanguageCode(t *testing.T) {
	if got := languageCode(i18n.Hindi); got != "hi-IN" {
		t.Fatalf("hindi code = %q", got)
	}
	if got := languageCode(i18n.English); got != "en-IN" {
		t.Fatalf("english code = %q", got)
	}
}
