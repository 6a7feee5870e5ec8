package eligibility

import (
	"reflect"
	"testing"
	"time"

	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

func f(v float64) *float64 { return &v }

func farmerCriteria() Criteria {
	return Criteria{
		{Name: "age_band", Field: store.FieldAge, Predicate: Predicate{Kind: KindRange, Min: f(18), Max: f(60)}},
		{Name: "income_cap", Field: store.FieldIncome, Predicate: Predicate{Kind: KindRange, Max: f(200000)}},
		{Name: "occupation", Field: store.FieldOccupation, Predicate: Predicate{Kind: KindMembership, OneOf: []string{"farmer", "laborer"}}},
	}
}

func profile(fields map[string]store.FieldValue) store.UserProfile {
	p := store.UserProfile{}
	for k, v := range fields {
		p[k] = v
	}
	return p
}

func TestEvaluateEligible(t *testing.T) {
	e := NewEngine(nil)
	now := time.Now()
	p := profile(map[string]store.FieldValue{
		store.FieldAge:        store.NumberValue(35, now),
		store.FieldIncome:     store.NumberValue(150000, now),
		store.FieldOccupation: store.TextValue("Farmer", now),
	})

	res := e.Evaluate(farmerCriteria(), p, i18n.English)

	if !res.Complete || !res.Eligible {
		t.Fatalf("result = %+v, want complete and eligible", res)
	}
	if len(res.Matched) != 3 || len(res.Unmatched) != 0 {
		t.Fatalf("matched=%v unmatched=%v", res.Matched, res.Unmatched)
	}
	if res.Explanation == "" {
		t.Fatal("explanation must never be empty for a decided result")
	}
	if res.Confidence != 1.0 {
		t.Fatalf("confidence = %v, want 1.0", res.Confidence)
	}
}

func TestEvaluateConjunction(t *testing.T) {
	e := NewEngine(nil)
	now := time.Now()
	p := profile(map[string]store.FieldValue{
		store.FieldAge:        store.NumberValue(35, now),
		store.FieldIncome:     store.NumberValue(500000, now), // over the cap
		store.FieldOccupation: store.TextValue("farmer", now),
	})

	res := e.Evaluate(farmerCriteria(), p, i18n.English)

	if res.Eligible {
		t.Fatal("one failing criterion must fail the conjunction")
	}
	if !res.Complete {
		t.Fatal("all fields present, result must be complete")
	}
	if !reflect.DeepEqual(res.Unmatched, []string{"income_cap"}) {
		t.Fatalf("unmatched = %v, want [income_cap]", res.Unmatched)
	}
	if res.Explanation == "" {
		t.Fatal("ineligible result still needs an explanation")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	e := NewEngine(nil)
	now := time.Now()
	p := profile(map[string]store.FieldValue{
		store.FieldAge:        store.NumberValue(35, now),
		store.FieldIncome:     store.NumberValue(150000, now),
		store.FieldOccupation: store.TextValue("farmer", now),
	})

	first := e.Evaluate(farmerCriteria(), p, i18n.Hindi)
	for i := 0; i < 10; i++ {
		again := e.Evaluate(farmerCriteria(), p, i18n.Hindi)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged: %+v vs %+v", i, first, again)
		}
	}
}

func TestNextFieldFixedPriority(t *testing.T) {
	e := NewEngine(nil)
	now := time.Now()

	// Only age supplied: income must come next, never age again.
	p := profile(map[string]store.FieldValue{
		store.FieldAge: store.NumberValue(35, now),
	})
	res := e.Evaluate(farmerCriteria(), p, i18n.English)
	if res.Complete {
		t.Fatal("result must be incomplete")
	}
	if res.NextField != store.FieldIncome {
		t.Fatalf("NextField = %q, want income", res.NextField)
	}

	// Empty profile: age comes first even though criteria order differs.
	reversed := Criteria{farmerCriteria()[2], farmerCriteria()[1], farmerCriteria()[0]}
	res = e.Evaluate(reversed, store.UserProfile{}, i18n.English)
	if res.NextField != store.FieldAge {
		t.Fatalf("NextField = %q, want age", res.NextField)
	}
}

func TestNextFieldCustomAfterCanonical(t *testing.T) {
	e := NewEngine(nil)
	crit := Criteria{
		{Name: "land", Field: "land_holding", Predicate: Predicate{Kind: KindRange, Max: f(2)}},
		{Name: "age_band", Field: store.FieldAge, Predicate: Predicate{Kind: KindRange, Min: f(18)}},
	}
	res := e.Evaluate(crit, store.UserProfile{}, i18n.English)
	if res.NextField != store.FieldAge {
		t.Fatalf("NextField = %q, want age before custom fields", res.NextField)
	}

	now := time.Now()
	p := profile(map[string]store.FieldValue{store.FieldAge: store.NumberValue(30, now)})
	res = e.Evaluate(crit, p, i18n.English)
	if res.NextField != "land_holding" {
		t.Fatalf("NextField = %q, want land_holding", res.NextField)
	}
}

func TestCustomPredicateRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("has_document", func(v store.FieldValue, param string) bool {
		return v.Str == param
	})
	e := NewEngine(reg)
	now := time.Now()

	crit := Criteria{
		{Name: "bpl", Field: "ration_card", Predicate: Predicate{Kind: KindCustom, Custom: "has_document", Param: "bpl"}},
	}

	p := profile(map[string]store.FieldValue{"ration_card": store.TextValue("bpl", now)})
	if res := e.Evaluate(crit, p, i18n.English); !res.Eligible {
		t.Fatal("custom predicate should match")
	}

	p = profile(map[string]store.FieldValue{"ration_card": store.TextValue("apl", now)})
	if res := e.Evaluate(crit, p, i18n.English); res.Eligible {
		t.Fatal("custom predicate should not match")
	}

	// Unregistered evaluators fail closed instead of erroring the turn.
	crit[0].Predicate.Custom = "missing_evaluator"
	res := e.Evaluate(crit, p, i18n.English)
	if res.Eligible || len(res.Unmatched) != 1 {
		t.Fatalf("unregistered evaluator = %+v, want unmatched", res)
	}
}

func TestAlternativesAllEligible(t *testing.T) {
	e := NewEngine(nil)
	now := time.Now()
	p := profile(map[string]store.FieldValue{
		store.FieldAge:    store.NumberValue(70, now),
		store.FieldIncome: store.NumberValue(50000, now),
	})

	loose := Criteria{{Name: "age_min", Field: store.FieldAge, Predicate: Predicate{Kind: KindRange, Min: f(60)}}}
	strict := Criteria{{Name: "age_max", Field: store.FieldAge, Predicate: Predicate{Kind: KindRange, Max: f(40)}}}
	incomplete := Criteria{{Name: "land", Field: "land_holding", Predicate: Predicate{Kind: KindRange, Max: f(2)}}}

	original := Candidate{ID: "orig", Category: "pension", Criteria: strict}
	candidates := []Candidate{
		original,
		{ID: "a", Category: "pension", Version: 1, Criteria: loose},
		{ID: "b", Category: "housing", Version: 3, Criteria: loose},
		{ID: "c", Category: "pension", Version: 2, Criteria: loose},
		{ID: "d", Category: "pension", Version: 9, Criteria: strict},     // ineligible
		{ID: "e", Category: "pension", Version: 9, Criteria: incomplete}, // missing field
	}

	refs := e.Alternatives(original, p, candidates, 0)

	if len(refs) != 3 {
		t.Fatalf("got %d alternatives, want 3 (capped)", len(refs))
	}
	// Every returned scheme must independently evaluate eligible.
	byID := map[string]Candidate{}
	for _, c := range candidates {
		byID[c.ID] = c
	}
	for _, ref := range refs {
		r := e.Evaluate(byID[ref.ID].Criteria, p, i18n.English)
		if !r.Eligible {
			t.Errorf("alternative %s is not actually eligible", ref.ID)
		}
	}
	// Category matches first, then newest version.
	want := []string{"c", "a", "b"}
	for i, ref := range refs {
		if ref.ID != want[i] {
			t.Fatalf("order = %v, want %v", refs, want)
		}
	}
}

func TestCriteriaValidate(t *testing.T) {
	tests := []struct {
		name    string
		crit    Criteria
		wantErr bool
	}{
		{"valid", farmerCriteria(), false},
		{"empty", Criteria{}, true},
		{"missing field", Criteria{{Name: "x", Predicate: Predicate{Kind: KindRange, Min: f(1)}}}, true},
		{"range without bounds", Criteria{{Name: "x", Field: "age", Predicate: Predicate{Kind: KindRange}}}, true},
		{"membership without values", Criteria{{Name: "x", Field: "occupation", Predicate: Predicate{Kind: KindMembership}}}, true},
		{"custom without evaluator", Criteria{{Name: "x", Field: "age", Predicate: Predicate{Kind: KindCustom}}}, true},
		{"duplicate names", Criteria{
			{Name: "x", Field: "age", Predicate: Predicate{Kind: KindRange, Min: f(1)}},
			{Name: "x", Field: "income", Predicate: Predicate{Kind: KindRange, Min: f(1)}},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.crit.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
