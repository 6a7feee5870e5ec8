package eligibility

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

// PredicateKind selects how a criterion is evaluated.
type PredicateKind string

const (
	KindRange      PredicateKind = "range"
	KindMembership PredicateKind = "membership"
	KindCustom     PredicateKind = "custom"
)

// Predicate is the rule half of a criterion. Range predicates apply to
// numeric fields; membership predicates to text fields; custom predicates
// dispatch to a registered evaluator by name.
type Predicate struct {
	Kind PredicateKind `json:"kind" validate:"required,oneof=range membership custom"`

	// Range bounds; a nil bound is open.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Membership values, matched case-insensitively.
	OneOf []string `json:"one_of,omitempty"`

	// Custom evaluator name plus an opaque parameter passed through.
	Custom string `json:"custom,omitempty"`
	Param  string `json:"param,omitempty"`
}

// Criterion is one named eligibility predicate over one profile field.
type Criterion struct {
	Name      string    `json:"name" validate:"required"`
	Field     string    `json:"field" validate:"required"`
	Predicate Predicate `json:"predicate" validate:"required"`
}

// Criteria is an ordered set of criteria. Order matters for custom-field
// question priority and for explanation output.
type Criteria []Criterion

// Validate rejects structurally broken criteria before they are persisted.
func (c Criteria) Validate() error {
	if len(c) == 0 {
		return apperror.New(apperror.KindValidation, "criteria must not be empty")
	}
	seen := make(map[string]bool, len(c))
	for i, cr := range c {
		if cr.Name == "" || cr.Field == "" {
			return apperror.Newf(apperror.KindValidation, "criterion %d: name and field are required", i)
		}
		if seen[cr.Name] {
			return apperror.Newf(apperror.KindValidation, "duplicate criterion name %q", cr.Name)
		}
		seen[cr.Name] = true
		switch cr.Predicate.Kind {
		case KindRange:
			if cr.Predicate.Min == nil && cr.Predicate.Max == nil {
				return apperror.Newf(apperror.KindValidation, "criterion %q: range needs min or max", cr.Name)
			}
		case KindMembership:
			if len(cr.Predicate.OneOf) == 0 {
				return apperror.Newf(apperror.KindValidation, "criterion %q: membership needs values", cr.Name)
			}
		case KindCustom:
			if cr.Predicate.Custom == "" {
				return apperror.Newf(apperror.KindValidation, "criterion %q: custom needs an evaluator name", cr.Name)
			}
		default:
			return apperror.Newf(apperror.KindValidation, "criterion %q: unknown predicate kind %q", cr.Name, cr.Predicate.Kind)
		}
	}
	return nil
}

// CustomFunc evaluates one custom predicate against a present field value.
type CustomFunc func(v store.FieldValue, param string) bool

// Registry holds pluggable custom evaluators so new criterion kinds never
// touch the conjunction logic.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]CustomFunc
}

func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]CustomFunc)}
	r.Register("equals", func(v store.FieldValue, param string) bool {
		return strings.EqualFold(valueString(v), param)
	})
	r.Register("min_count", func(v store.FieldValue, param string) bool {
		min, ok := parseFloat(param)
		return ok && v.Kind == store.FieldNumber && v.Num >= min
	})
	return r
}

// Register installs an evaluator under name, replacing any previous one.
func (r *Registry) Register(name string, fn CustomFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

func (r *Registry) lookup(name string) (CustomFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names lists registered evaluators, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// describe renders the localized requirement fragment of a predicate for
// explanation sentences.
func (p Predicate) describe(lang i18n.Language) string {
	switch p.Kind {
	case KindRange:
		switch {
		case p.Min != nil && p.Max != nil:
			return i18n.Render(lang, i18n.MsgRequireBetween, trimFloat(*p.Min), trimFloat(*p.Max))
		case p.Min != nil:
			return i18n.Render(lang, i18n.MsgRequireAtLeast, trimFloat(*p.Min))
		default:
			return i18n.Render(lang, i18n.MsgRequireAtMost, trimFloat(*p.Max))
		}
	case KindMembership:
		return i18n.Render(lang, i18n.MsgRequireOneOf, strings.Join(p.OneOf, ", "))
	default:
		return i18n.Render(lang, i18n.MsgRequireSatisfied, p.Custom)
	}
}

func valueString(v store.FieldValue) string {
	if v.Kind == store.FieldNumber {
		return trimFloat(v.Num)
	}
	return v.Str
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func parseFloat(s string) (float64, bool) {
	var f float64
	_, err := fmt.Sscanf(s, "%g", &f)
	return f, err == nil
}
