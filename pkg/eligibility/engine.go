package eligibility

import (
	"sort"
	"strings"

	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

// DefaultAlternativeLimit caps the alternative-scheme suggestions.
const DefaultAlternativeLimit = 3

// SchemeRef points at an alternative scheme a user may qualify for.
type SchemeRef struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Version  int    `json:"version"`
}

// Result is the outcome of one evaluation. It is always produced fresh from
// the current profile and criteria, never cached.
type Result struct {
	Eligible bool `json:"eligible"`

	// Complete is true once no criterion field is missing from the
	// profile; only then is Eligible meaningful.
	Complete bool `json:"complete"`

	Matched   []string `json:"matched,omitempty"`
	Unmatched []string `json:"unmatched,omitempty"`
	Missing   []string `json:"missing,omitempty"`

	// NextField is the highest-priority missing field to ask for next;
	// empty when complete.
	NextField string `json:"next_field,omitempty"`

	// Explanation concatenates one localized sentence per decided
	// criterion; never empty once any criterion was decided.
	Explanation string `json:"explanation,omitempty"`

	// Confidence is the share of criteria already decided, 1.0 once
	// complete.
	Confidence float64 `json:"confidence"`

	Alternatives []SchemeRef `json:"alternatives,omitempty"`
}

// Engine evaluates structured eligibility criteria against partial user
// profiles. Evaluation is pure: no side effects, safe to recompute on any
// retry.
type Engine struct {
	registry *Registry
}

func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Engine{registry: registry}
}

// Evaluate runs every criterion against the profile. Missing fields are
// recorded, not failed; the decision is a pure conjunction once complete.
func (e *Engine) Evaluate(criteria Criteria, profile store.UserProfile, lang i18n.Language) Result {
	res := Result{}
	var sentences []string

	for _, cr := range criteria {
		v, ok := profile[cr.Field]
		if !ok {
			res.Missing = append(res.Missing, cr.Field)
			continue
		}
		if e.matches(cr.Predicate, v) {
			res.Matched = append(res.Matched, cr.Name)
			sentences = append(sentences, i18n.Render(lang, i18n.MsgCriterionMet, fieldLabel(lang, cr.Field), cr.Predicate.describe(lang)))
		} else {
			res.Unmatched = append(res.Unmatched, cr.Name)
			sentences = append(sentences, i18n.Render(lang, i18n.MsgCriterionUnmet, fieldLabel(lang, cr.Field), cr.Predicate.describe(lang)))
		}
	}

	decided := len(res.Matched) + len(res.Unmatched)
	if len(criteria) > 0 {
		res.Confidence = float64(decided) / float64(len(criteria))
	}
	res.Complete = len(res.Missing) == 0
	res.Eligible = res.Complete && len(res.Unmatched) == 0
	res.Explanation = strings.Join(sentences, " ")

	if !res.Complete {
		res.NextField = nextField(criteria, res.Missing)
	}
	return res
}

// NextQuestion names the i18n template asking for a field.
func NextQuestion(field string) i18n.Key {
	switch field {
	case store.FieldAge:
		return i18n.MsgAskAge
	case store.FieldIncome:
		return i18n.MsgAskIncome
	case store.FieldLocation:
		return i18n.MsgAskLocation
	case store.FieldOccupation:
		return i18n.MsgAskOccupation
	default:
		return i18n.MsgAskCustom
	}
}

// nextField picks the highest-priority missing field: the canonical order
// first, then custom fields in criteria order. Fixed so transcripts are
// reproducible.
func nextField(criteria Criteria, missing []string) string {
	missingSet := make(map[string]bool, len(missing))
	for _, f := range missing {
		missingSet[f] = true
	}
	for _, f := range store.PriorityFields() {
		if missingSet[f] {
			return f
		}
	}
	for _, cr := range criteria {
		if missingSet[cr.Field] {
			return cr.Field
		}
	}
	return ""
}

func (e *Engine) matches(p Predicate, v store.FieldValue) bool {
	switch p.Kind {
	case KindRange:
		if v.Kind != store.FieldNumber {
			return false
		}
		if p.Min != nil && v.Num < *p.Min {
			return false
		}
		if p.Max != nil && v.Num > *p.Max {
			return false
		}
		return true
	case KindMembership:
		val := valueString(v)
		for _, allowed := range p.OneOf {
			if strings.EqualFold(val, allowed) {
				return true
			}
		}
		return false
	case KindCustom:
		fn, ok := e.registry.lookup(p.Custom)
		if !ok {
			// Unregistered evaluators never match; the criterion
			// shows up as unmatched rather than crashing a turn.
			return false
		}
		return fn(v, p.Param)
	default:
		return false
	}
}

// Candidate is the slice of a scheme the alternative search needs.
type Candidate struct {
	ID       string
	Category string
	Version  int
	Criteria Criteria
}

// Alternatives re-evaluates every candidate scheme against the same profile
// and keeps the fully eligible ones: category matches of the original scheme
// first, then newest version, then id for a stable order. Call it only for
// ineligible results.
func (e *Engine) Alternatives(original Candidate, profile store.UserProfile, candidates []Candidate, limit int) []SchemeRef {
	if limit <= 0 {
		limit = DefaultAlternativeLimit
	}

	var refs []SchemeRef
	for _, c := range candidates {
		if c.ID == original.ID {
			continue
		}
		r := e.Evaluate(c.Criteria, profile, i18n.DefaultLanguage)
		if r.Complete && r.Eligible {
			refs = append(refs, SchemeRef{ID: c.ID, Category: c.Category, Version: c.Version})
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		im := refs[i].Category == original.Category
		jm := refs[j].Category == original.Category
		if im != jm {
			return im
		}
		if refs[i].Version != refs[j].Version {
			return refs[i].Version > refs[j].Version
		}
		return refs[i].ID < refs[j].ID
	})

	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs
}

// fieldLabel localizes a profile field name for explanation sentences.
func fieldLabel(lang i18n.Language, field string) string {
	labels := map[string]i18n.Text{
		store.FieldAge:        {i18n.English: "age", i18n.Hindi: "आयु"},
		store.FieldIncome:     {i18n.English: "income", i18n.Hindi: "आय"},
		store.FieldLocation:   {i18n.English: "location", i18n.Hindi: "स्थान"},
		store.FieldOccupation: {i18n.English: "occupation", i18n.Hindi: "व्यवसाय"},
	}
	if t, ok := labels[field]; ok {
		return t.In(lang)
	}
	return field
}
