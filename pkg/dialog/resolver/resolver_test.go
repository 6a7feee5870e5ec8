package resolver

import (
	"testing"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/store"
)

func turnWithScheme(id string) store.Turn {
	return store.Turn{
		Role:     store.RoleAssistant,
		Text:     "about " + id,
		Mentions: []store.Mention{{Kind: store.MentionScheme, Value: id}},
	}
}

func TestResolveMostRecentWins(t *testing.T) {
	sess := &store.Session{}
	sess.AppendTurn(turnWithScheme("pm-kisan"))
	sess.AppendTurn(store.Turn{Role: store.RoleUser, Text: "ok"})
	sess.AppendTurn(turnWithScheme("pm-awas"))

	r := New(0)
	got, err := r.ResolveScheme(sess)
	if err != nil {
		t.Fatalf("ResolveScheme() error: %v", err)
	}
	if got != "pm-awas" {
		t.Fatalf("ResolveScheme() = %q, want pm-awas (most recent)", got)
	}
}

func TestResolveKindCompatibility(t *testing.T) {
	sess := &store.Session{}
	sess.AppendTurn(store.Turn{
		Text:     "what about my income",
		Mentions: []store.Mention{{Kind: store.MentionProfileField, Value: store.FieldIncome}},
	})
	sess.AppendTurn(turnWithScheme("pm-kisan"))

	r := New(0)
	// A field reference must skip the newer scheme mention.
	field, err := r.Resolve(sess, store.MentionProfileField)
	if err != nil {
		t.Fatalf("Resolve(profile_field) error: %v", err)
	}
	if field != store.FieldIncome {
		t.Fatalf("Resolve(profile_field) = %q, want income", field)
	}
}

func TestResolveNoMentionIsAmbiguous(t *testing.T) {
	sess := &store.Session{}
	sess.AppendTurn(store.Turn{Role: store.RoleUser, Text: "hello"})

	r := New(0)
	_, err := r.ResolveScheme(sess)
	if !apperror.Is(err, apperror.KindAmbiguous) {
		t.Fatalf("error = %v, want ambiguous", err)
	}
}

func TestResolveTieIsAmbiguous(t *testing.T) {
	sess := &store.Session{}
	sess.AppendTurn(store.Turn{
		Text: "you could try pm-kisan or pm-awas",
		Mentions: []store.Mention{
			{Kind: store.MentionScheme, Value: "pm-kisan"},
			{Kind: store.MentionScheme, Value: "pm-awas"},
		},
	})

	r := New(0)
	_, err := r.ResolveScheme(sess)
	if !apperror.Is(err, apperror.KindAmbiguous) {
		t.Fatalf("error = %v, want ambiguous on equally recent candidates", err)
	}
}

func TestResolveDuplicateMentionNotAmbiguous(t *testing.T) {
	sess := &store.Session{}
	sess.AppendTurn(store.Turn{
		Text: "pm-kisan, yes pm-kisan",
		Mentions: []store.Mention{
			{Kind: store.MentionScheme, Value: "pm-kisan"},
			{Kind: store.MentionScheme, Value: "pm-kisan"},
		},
	})

	r := New(0)
	got, err := r.ResolveScheme(sess)
	if err != nil || got != "pm-kisan" {
		t.Fatalf("Resolve() = %q, %v; repeated identical mentions are not a tie", got, err)
	}
}

func TestResolveWindowBound(t *testing.T) {
	sess := &store.Session{}
	sess.AppendTurn(turnWithScheme("old-scheme"))
	for i := 0; i < DefaultWindow; i++ {
		sess.AppendTurn(store.Turn{Role: store.RoleUser, Text: "chitchat"})
	}

	r := New(0)
	_, err := r.ResolveScheme(sess)
	if !apperror.Is(err, apperror.KindAmbiguous) {
		t.Fatalf("mention outside the window must not resolve, got %v", err)
	}
}
