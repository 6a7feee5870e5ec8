package i18n

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Language
	}{
		{"english lowercase", "en", English},
		{"english uppercase", "EN", English},
		{"english word", "english", English},
		{"english bcp47", "en-IN", English},
		{"hindi code", "hi", Hindi},
		{"hindi word", "hindi", Hindi},
		{"hindi native", "हिंदी", Hindi},
		{"hindi bcp47", "hi-IN", Hindi},
		{"whitespace", "  hi  ", Hindi},
		{"unknown falls back", "fr", DefaultLanguage},
		{"empty falls back", "", DefaultLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.raw); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTextIn(t *testing.T) {
	txt := Text{English: "hello", Hindi: "नमस्ते"}

	if got := txt.In(Hindi); got != "नमस्ते" {
		t.Errorf("In(Hindi) = %q", got)
	}
	if got := txt.In(English); got != "hello" {
		t.Errorf("In(English) = %q", got)
	}

	partial := Text{English: "only english"}
	if got := partial.In(Hindi); got != "only english" {
		t.Errorf("In(Hindi) on partial text = %q, want default language fallback", got)
	}
}

func TestTextValidate(t *testing.T) {
	full := Text{English: "a", Hindi: "b"}
	if err := full.Validate(); err != nil {
		t.Fatalf("Validate() on complete text: %v", err)
	}

	missing := Text{English: "a"}
	if err := missing.Validate(); err == nil {
		t.Fatal("Validate() accepted text missing a supported language")
	}

	blank := Text{English: "a", Hindi: "   "}
	if err := blank.Validate(); err == nil {
		t.Fatal("Validate() accepted blank translation")
	}
}

func TestCatalogCoversAllLanguages(t *testing.T) {
	if err := ValidateCatalog(); err != nil {
		t.Fatalf("catalog incomplete: %v", err)
	}
}

func TestRender(t *testing.T) {
	got := Render(English, MsgEligibilityIntro, "PM-KISAN")
	if !strings.Contains(got, "PM-KISAN") {
		t.Errorf("Render did not substitute scheme name: %q", got)
	}

	hi := Render(Hindi, MsgAskAge)
	en := Render(English, MsgAskAge)
	if hi == en {
		t.Error("Hindi and English templates should differ for ask_age")
	}

	// Unknown keys must not panic and should stay visible.
	if got := Render(English, Key("no_such_key")); got != "no_such_key" {
		t.Errorf("Render(unknown) = %q", got)
	}
}
