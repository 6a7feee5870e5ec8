package state

import (
	"testing"

	"sahayak-be/pkg/dialog/intent"
	"sahayak-be/pkg/store"
)

func newSession(s store.State) *store.Session {
	return &store.Session{State: s, Profile: store.UserProfile{}}
}

func step(t *testing.T, m *Machine, sess *store.Session, in intent.Type) Transition {
	t.Helper()
	return m.Step(sess, intent.Candidate{Type: in})
}

// Every state crossed with every known intent must yield a defined next
// state; unknown intents take the clarify fallback.
func TestTransitionTableIsTotal(t *testing.T) {
	m := NewMachine()
	valid := make(map[store.State]bool)
	for _, s := range store.AllStates() {
		valid[s] = true
	}

	for _, s := range store.AllStates() {
		for _, in := range intent.Known() {
			sess := newSession(s)
			sess.Context.PendingState = store.StateEnded
			tr := m.Step(sess, intent.Candidate{Type: in})
			if !valid[tr.Next] {
				t.Errorf("state %s x intent %s -> undefined next state %q", s, in, tr.Next)
			}
			if sess.State != tr.Next {
				t.Errorf("state %s x intent %s: session state %s diverges from transition %s", s, in, sess.State, tr.Next)
			}
		}
		// One extra unknown-intent case beyond the known set.
		sess := newSession(s)
		tr := m.Step(sess, intent.Candidate{Type: intent.Type("NO_SUCH_INTENT")})
		if !valid[tr.Next] {
			t.Errorf("state %s x unknown intent -> undefined next state %q", s, tr.Next)
		}
	}
}

func TestClarifyFallbackKeepsState(t *testing.T) {
	m := NewMachine()
	sess := newSession(store.StateSchemeDetails)

	tr := step(t, m, sess, intent.ProvideValue) // no entry for this pair
	if !tr.Fallback {
		t.Fatal("expected fallback transition")
	}
	if tr.Next != store.StateSchemeDetails || sess.State != store.StateSchemeDetails {
		t.Fatalf("clarify changed state to %s", tr.Next)
	}
}

func TestGoBackScenario(t *testing.T) {
	m := NewMachine()
	sess := newSession(store.StateSchemeDetails)
	sess.StateStack = []store.State{store.StateMainMenu, store.StateSchemeBrowsing}

	tr := step(t, m, sess, intent.GoBack)
	if tr.Next != store.StateSchemeBrowsing {
		t.Fatalf("first GO_BACK -> %s, want SCHEME_BROWSING", tr.Next)
	}
	if len(sess.StateStack) != 1 || sess.StateStack[0] != store.StateMainMenu {
		t.Fatalf("stack after first GO_BACK = %v, want [MAIN_MENU]", sess.StateStack)
	}

	tr = step(t, m, sess, intent.GoBack)
	if tr.Next != store.StateMainMenu {
		t.Fatalf("second GO_BACK -> %s, want MAIN_MENU", tr.Next)
	}
	if len(sess.StateStack) != 0 {
		t.Fatalf("stack after second GO_BACK = %v, want empty", sess.StateStack)
	}

	// Popping an empty stack lands on MAIN_MENU.
	tr = step(t, m, sess, intent.GoBack)
	if tr.Next != store.StateMainMenu {
		t.Fatalf("GO_BACK on empty stack -> %s, want MAIN_MENU", tr.Next)
	}
}

func TestForwardTransitionPushesPriorState(t *testing.T) {
	m := NewMachine()
	sess := newSession(store.StateSchemeBrowsing)

	tr := step(t, m, sess, intent.SelectScheme)
	if tr.Next != store.StateSchemeDetails {
		t.Fatalf("SELECT_SCHEME -> %s", tr.Next)
	}
	if len(sess.StateStack) != 1 || sess.StateStack[0] != store.StateSchemeBrowsing {
		t.Fatalf("stack = %v, want [SCHEME_BROWSING]", sess.StateStack)
	}
}

func TestTopicSwitchDiscardsStack(t *testing.T) {
	m := NewMachine()
	sess := newSession(store.StateEligibilityCheck)
	sess.StateStack = []store.State{store.StateMainMenu, store.StateSchemeDetails}

	tr := step(t, m, sess, intent.BrowseSchemes)
	if tr.Next != store.StateSchemeBrowsing {
		t.Fatalf("BROWSE_SCHEMES -> %s", tr.Next)
	}
	if len(sess.StateStack) != 0 {
		t.Fatalf("topic switch kept stack %v, want empty", sess.StateStack)
	}
}

func TestConfirmationGateEndSession(t *testing.T) {
	m := NewMachine()
	sess := newSession(store.StateMainMenu)

	tr := step(t, m, sess, intent.EndSession)
	if tr.Next != store.StateConfirmation {
		t.Fatalf("END_SESSION -> %s, want CONFIRMATION", tr.Next)
	}
	if sess.Context.PendingState != store.StateEnded {
		t.Fatalf("pending state = %s, want ENDED", sess.Context.PendingState)
	}

	tr = step(t, m, sess, intent.Affirm)
	if tr.Next != store.StateEnded {
		t.Fatalf("AFFIRM -> %s, want ENDED", tr.Next)
	}
	if !hasEffect(tr, EffectEndSession) {
		t.Fatal("AFFIRM on end confirmation must carry END_SESSION effect")
	}
	if sess.Context.PendingState != "" {
		t.Fatal("pending state not cleared after commit")
	}
}

func TestConfirmationDenyRestoresStackedState(t *testing.T) {
	m := NewMachine()
	sess := newSession(store.StateApplicationGuide)

	step(t, m, sess, intent.SubmitApplication)
	if sess.State != store.StateConfirmation {
		t.Fatalf("state = %s, want CONFIRMATION", sess.State)
	}

	tr := step(t, m, sess, intent.Deny)
	if tr.Next != store.StateApplicationGuide {
		t.Fatalf("DENY -> %s, want APPLICATION_GUIDE", tr.Next)
	}
	if sess.Context.PendingState != "" || sess.Context.PendingIntent != "" {
		t.Fatal("pending transition survived DENY")
	}
}

func TestConfirmationAffirmSubmit(t *testing.T) {
	m := NewMachine()
	sess := newSession(store.StateApplicationGuide)

	step(t, m, sess, intent.SubmitApplication)
	tr := step(t, m, sess, intent.Affirm)

	if tr.Next != store.StateApplicationGuide {
		t.Fatalf("AFFIRM -> %s, want APPLICATION_GUIDE", tr.Next)
	}
	if !hasEffect(tr, EffectSubmit) {
		t.Fatal("AFFIRM on submit confirmation must carry SUBMIT effect")
	}
	if len(sess.StateStack) != 0 {
		t.Fatalf("stack after committed confirmation = %v, want empty", sess.StateStack)
	}
}

func TestConfirmationOffTopicReasks(t *testing.T) {
	m := NewMachine()
	sess := newSession(store.StateMainMenu)
	step(t, m, sess, intent.EndSession)

	tr := step(t, m, sess, intent.BrowseSchemes)
	if tr.Next != store.StateConfirmation || !tr.Fallback {
		t.Fatalf("off-topic reply in CONFIRMATION -> %+v, want re-ask", tr)
	}
}

func TestEndedIsTerminal(t *testing.T) {
	m := NewMachine()
	for _, in := range intent.Known() {
		sess := newSession(store.StateEnded)
		tr := m.Step(sess, intent.Candidate{Type: in})
		if tr.Next != store.StateEnded {
			t.Errorf("intent %s escaped ENDED to %s", in, tr.Next)
		}
	}
}

func hasEffect(tr Transition, e Effect) bool {
	for _, got := range tr.Effects {
		if got == e {
			return true
		}
	}
	return false
}
