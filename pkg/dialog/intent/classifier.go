package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

// RuleClassifier is the deterministic default classifier: keyword and pattern
// rules over the normalized utterance, biased by session hints. It exists so
// the assistant works without a remote model and so conversation transcripts
// are reproducible in tests.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

var numberRe = regexp.MustCompile(`-?\d+(\.\d+)?`)

// keyword rule, ordered: first match wins.
type rule struct {
	intent   Type
	keywords []string
}

// Shared rules checked for every language; utterances are matched lowercase.
var rules = []rule{
	{GoBack, []string{"go back", "back", "previous", "पीछे", "वापस"}},
	{EndSession, []string{"end session", "end the session", "goodbye", "bye", "quit", "exit", "सत्र समाप्त", "अलविदा", "बंद करो"}},
	{SubmitApplication, []string{"submit", "जमा"}},
	{MainMenu, []string{"main menu", "menu", "start over", "मुख्य मेनू", "मेनू"}},
	{BrowseSchemes, []string{"browse", "schemes", "scheme list", "show me schemes", "yojana", "योजनाएँ", "योजनाएं", "योजना दिख"}},
	{CheckEligibility, []string{"eligib", "qualify", "am i eligible", "पात्रता", "पात्र"}},
	{ApplicationGuide, []string{"how to apply", "apply", "application", "आवेदन"}},
	{NextStep, []string{"next step", "next", "continue", "अगला", "आगे"}},
	{Repeat, []string{"repeat", "say that again", "pardon", "दोहरा", "फिर से बोल"}},
	{Help, []string{"help", "what can you do", "मदद", "सहायता"}},
	{SelectLanguage, []string{"change language", "switch language", "भाषा बदल"}},
	{Affirm, []string{"yes", "yeah", "sure", "ok", "okay", "confirm", "haan", "हाँ", "हां", "जी", "ठीक है"}},
	{Deny, []string{"no", "nope", "cancel", "nahi", "नहीं", "रद्द"}},
}

func (r *RuleClassifier) Classify(_ context.Context, utterance string, lang i18n.Language, sess *store.Session) (Candidate, error) {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return Candidate{Type: Unknown, Confidence: 0}, nil
	}

	// Language selection answers before anything else: "English"/"हिंदी"
	// are only language picks while the session is still choosing one.
	if sess != nil && sess.State == store.StateLanguageSelection {
		if tag, ok := languageMention(text); ok {
			return Candidate{
				Type:       SelectLanguage,
				Slots:      map[string]string{SlotLanguage: string(tag)},
				Confidence: 0.95,
			}, nil
		}
	}

	// A pending question makes bare numbers meaningful: "32", "120000".
	// Free-text answers are only claimed after the control rules below had
	// their chance, so "go back" is never eaten as an occupation.
	if sess != nil && sess.Context.ActiveQuestion != "" && sess.State == store.StateEligibilityCheck {
		if m := numberRe.FindString(text); m != "" {
			return Candidate{
				Type:       ProvideValue,
				Slots:      map[string]string{SlotField: sess.Context.ActiveQuestion, SlotValue: m},
				Confidence: 0.9,
			}, nil
		}
	}

	// Ordinals and scheme names resolve against what was last offered.
	if sess != nil && len(sess.Context.OfferedSchemes) > 0 {
		if c, ok := schemeSelection(text, sess.Context.OfferedSchemes); ok {
			return c, nil
		}
	}

	for _, rl := range rules {
		for _, kw := range rl.keywords {
			if matchKeyword(text, kw) {
				c := Candidate{Type: rl.intent, Confidence: 0.8}
				if rl.intent == SelectLanguage {
					if tag, ok := languageMention(text); ok {
						c.Slots = map[string]string{SlotLanguage: string(tag)}
					}
				}
				return c, nil
			}
		}
	}

	// No control rule claimed the utterance: short free text answers the
	// pending question ("farmer", "uttar pradesh").
	if sess != nil && sess.Context.ActiveQuestion != "" && sess.State == store.StateEligibilityCheck {
		if c, ok := valueAnswer(text, sess.Context.ActiveQuestion); ok {
			return c, nil
		}
	}

	_ = lang
	return Candidate{Type: Unknown, Confidence: 0.3}, nil
}

func languageMention(text string) (i18n.Language, bool) {
	switch {
	case strings.Contains(text, "english"), strings.Contains(text, "अंग्रेज़ी"), text == "en":
		return i18n.English, true
	case strings.Contains(text, "hindi"), strings.Contains(text, "हिंदी"), strings.Contains(text, "हिन्दी"), text == "hi":
		return i18n.Hindi, true
	}
	return "", false
}

func valueAnswer(text, field string) (Candidate, bool) {
	if m := numberRe.FindString(text); m != "" {
		return Candidate{
			Type:       ProvideValue,
			Slots:      map[string]string{SlotField: field, SlotValue: m},
			Confidence: 0.9,
		}, true
	}
	// Short free-text answers (location, occupation) are taken verbatim.
	if len(strings.Fields(text)) <= 4 {
		return Candidate{
			Type:       ProvideValue,
			Slots:      map[string]string{SlotField: field, SlotValue: strings.TrimSpace(text)},
			Confidence: 0.7,
		}, true
	}
	return Candidate{}, false
}

var ordinals = map[string]int{
	"first": 1, "1": 1, "one": 1, "पहली": 1, "पहला": 1,
	"second": 2, "2": 2, "two": 2, "दूसरी": 2, "दूसरा": 2,
	"third": 3, "3": 3, "three": 3, "तीसरी": 3, "तीसरा": 3,
	"fourth": 4, "4": 4, "four": 4, "चौथी": 4, "चौथा": 4,
	"fifth": 5, "5": 5, "five": 5, "पाँचवीं": 5, "पांचवां": 5,
}

func schemeSelection(text string, offered []string) (Candidate, bool) {
	// Scan the utterance left to right so "the second one" resolves to 2,
	// not to whichever ordinal a map walk found first.
	for _, f := range strings.Fields(text) {
		idx, ok := ordinals[strings.Trim(f, ".,!?।")]
		if !ok {
			continue
		}
		if idx <= len(offered) {
			return Candidate{
				Type:       SelectScheme,
				Slots:      map[string]string{SlotScheme: offered[idx-1]},
				Confidence: 0.85,
			}, true
		}
	}
	for _, id := range offered {
		if strings.Contains(text, strings.ToLower(id)) {
			return Candidate{
				Type:       SelectScheme,
				Slots:      map[string]string{SlotScheme: id},
				Confidence: 0.9,
			}, true
		}
	}
	return Candidate{}, false
}

// matchKeyword matches phrases by substring and single keywords by word
// boundary. Longer single keywords match as word prefixes so inflected forms
// ("eligible", "eligibility"; "दोहराएँ") still hit.
func matchKeyword(text, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(text, kw)
	}
	allowPrefix := len([]rune(kw)) >= 4
	for _, f := range strings.Fields(text) {
		f = strings.Trim(f, ".,!?।")
		if f == kw {
			return true
		}
		if allowPrefix && strings.HasPrefix(f, kw) {
			return true
		}
	}
	return false
}

// ParseNumber converts an extracted value slot to a float.
func ParseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}
