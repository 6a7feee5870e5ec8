package i18n

import (
	"fmt"
	"strings"
)

// Language is a BCP-47 style primary subtag for a supported locale.
type Language string

const (
	English Language = "en"
	Hindi   Language = "hi"
)

// DefaultLanguage is used before the caller has picked one.
const DefaultLanguage = English

// Supported returns every language a complete record must cover, in a fixed
// order so validation failures are reported deterministically.
func Supported() []Language {
	return []Language{English, Hindi}
}

// IsSupported reports whether lang is one of the supported languages.
func IsSupported(lang Language) bool {
	for _, l := range Supported() {
		if l == lang {
			return true
		}
	}
	return false
}

// Parse normalizes a raw language tag ("EN", "hi-IN", "hindi") to a supported
// Language. Unknown tags fall back to the default so a turn never fails on a
// locale header.
func Parse(raw string) Language {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	switch tag {
	case "en", "english":
		return English
	case "hi", "hindi", "हिंदी", "हिन्दी":
		return Hindi
	default:
		return DefaultLanguage
	}
}

// Text is a per-language string map. Records that must render in every
// supported language hold their name/description as Text and validate
// completeness at construction rather than at render time.
type Text map[Language]string

// NewText builds a Text and fails fast when any supported language is missing
// or blank.
func NewText(values map[Language]string) (Text, error) {
	t := Text{}
	for l, v := range values {
		t[l] = v
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the map covers every supported language with a non-blank
// value.
func (t Text) Validate() error {
	var missing []string
	for _, l := range Supported() {
		if strings.TrimSpace(t[l]) == "" {
			missing = append(missing, string(l))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete language map: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// In returns the value for lang, falling back to the default language. A
// validated Text never reaches the fallback; it exists so render paths stay
// total on unvalidated data.
func (t Text) In(lang Language) string {
	if v, ok := t[lang]; ok && v != "" {
		return v
	}
	return t[DefaultLanguage]
}
