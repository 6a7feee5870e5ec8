package intent

import (
	"context"

	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

// Type is a resolved user intention.
type Type string

const (
	SelectLanguage    Type = "SELECT_LANGUAGE"
	MainMenu          Type = "MAIN_MENU"
	BrowseSchemes     Type = "BROWSE_SCHEMES"
	SelectScheme      Type = "SELECT_SCHEME"
	CheckEligibility  Type = "CHECK_ELIGIBILITY"
	ProvideValue      Type = "PROVIDE_VALUE"
	ApplicationGuide  Type = "APPLICATION_GUIDE"
	NextStep          Type = "NEXT_STEP"
	GoBack            Type = "GO_BACK"
	Affirm            Type = "AFFIRM"
	Deny              Type = "DENY"
	Help              Type = "HELP"
	Repeat            Type = "REPEAT"
	EndSession        Type = "END_SESSION"
	SubmitApplication Type = "SUBMIT_APPLICATION"
	Unknown           Type = "UNKNOWN"
)

// Known lists every intent the transition table must cover, in a fixed order.
func Known() []Type {
	return []Type{
		SelectLanguage,
		MainMenu,
		BrowseSchemes,
		SelectScheme,
		CheckEligibility,
		ProvideValue,
		ApplicationGuide,
		NextStep,
		GoBack,
		Affirm,
		Deny,
		Help,
		Repeat,
		EndSession,
		SubmitApplication,
		Unknown,
	}
}

// Slot names filled by classification.
const (
	SlotLanguage = "language"
	SlotScheme   = "scheme"
	SlotValue    = "value"
	SlotField    = "field"
	SlotCategory = "category"
)

// Candidate is one classified utterance: the intent plus any extracted slots.
type Candidate struct {
	Type       Type              `json:"type"`
	Slots      map[string]string `json:"slots,omitempty"`
	Confidence float64           `json:"confidence"`
}

// Slot returns a slot value or "".
func (c Candidate) Slot(name string) string {
	if c.Slots == nil {
		return ""
	}
	return c.Slots[name]
}

// Classifier turns an utterance into an intent candidate. Implementations may
// call remote models; the hints from the live session (active question,
// offered schemes) keep short answers like "2" or "yes" resolvable.
type Classifier interface {
	Classify(ctx context.Context, utterance string, lang i18n.Language, sess *store.Session) (Candidate, error)
}
