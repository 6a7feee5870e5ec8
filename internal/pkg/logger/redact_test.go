package logger

import "testing"

func TestRedactMasksPII(t *testing.T) {
	in := map[string]interface{}{
		"session_id": "abc",
		"utterance":  "my income is 50000",
		"turn":       3,
		"nested": map[string]interface{}{
			"profile": map[string]interface{}{"age": 42},
			"state":   "MAIN_MENU",
		},
	}

	out := Redact(in)

	if out["session_id"] != "abc" || out["turn"] != 3 {
		t.Fatal("non-PII fields must pass through")
	}
	if out["utterance"] != "[REDACTED]" {
		t.Fatalf("utterance = %v", out["utterance"])
	}
	nested := out["nested"].(map[string]interface{})
	if nested["profile"] != "[REDACTED]" {
		t.Fatalf("nested profile = %v", nested["profile"])
	}
	if nested["state"] != "MAIN_MENU" {
		t.Fatalf("nested state = %v", nested["state"])
	}
	if in["utterance"] != "my income is 50000" {
		t.Fatal("input map was mutated")
	}
}

func TestRedactNil(t *testing.T) {
	out := Redact(nil)
	if out == nil || len(out) != 0 {
		t.Fatalf("got %v, want empty map", out)
	}
}
