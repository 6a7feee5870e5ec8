package state

import (
	"sahayak-be/pkg/dialog/intent"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/store"
)

// Effect is a side effect the orchestrator must perform after a transition.
// The machine itself never touches schemes or the eligibility engine; it only
// names what has to happen.
type Effect string

const (
	EffectSetLanguage  Effect = "SET_LANGUAGE"
	EffectListSchemes  Effect = "LIST_SCHEMES"
	EffectShowScheme   Effect = "SHOW_SCHEME"
	EffectAskNext      Effect = "ASK_NEXT"      // evaluate criteria, ask next missing field or announce result
	EffectRecordAnswer Effect = "RECORD_ANSWER" // merge the provided value, then ASK_NEXT
	EffectShowStep     Effect = "SHOW_STEP"
	EffectAdvanceStep  Effect = "ADVANCE_STEP"
	EffectSubmit       Effect = "SUBMIT"
	EffectEndSession   Effect = "END_SESSION"
	EffectResolveTopic Effect = "RESOLVE_TOPIC" // resolve "that scheme" against history
)

// Transition is the outcome of one step: the state the session is now in,
// the side effects to run and the prompt to render when no effect overrides
// it.
type Transition struct {
	Next    store.State
	Effects []Effect
	Prompt  i18n.Key

	// Fallback marks the clarify transition taken when the table has no
	// explicit entry.
	Fallback bool
}

type tableKey struct {
	state store.State
	in    intent.Type
}

// Machine is the conversation state machine: an exhaustive transition table
// with stack-based back-navigation and confirmation gating layered on top.
// Intents without a table entry fall back to a clarify transition that keeps
// the state unchanged, so every (state, intent) pair is defined.
type Machine struct {
	table map[tableKey]Transition
}

func NewMachine() *Machine {
	m := &Machine{table: make(map[tableKey]Transition)}

	// Intents honored identically in every non-terminal state.
	for _, s := range store.AllStates() {
		if s == store.StateEnded {
			continue
		}
		m.set(s, intent.Help, Transition{Next: s, Prompt: i18n.MsgHelp})
		m.set(s, intent.Repeat, Transition{Next: s, Prompt: i18n.MsgClarify})
		m.set(s, intent.MainMenu, Transition{Next: store.StateMainMenu, Prompt: i18n.MsgMainMenu})
		m.set(s, intent.BrowseSchemes, Transition{Next: store.StateSchemeBrowsing, Effects: []Effect{EffectListSchemes}})
		m.set(s, intent.SelectLanguage, Transition{Next: store.StateLanguageSelection, Prompt: i18n.MsgChooseLanguage})
		m.set(s, intent.EndSession, Transition{Next: store.StateEnded, Effects: []Effect{EffectEndSession}, Prompt: i18n.MsgGoodbye})
	}

	m.set(store.StateLanguageSelection, intent.SelectLanguage, Transition{
		Next: store.StateMainMenu, Effects: []Effect{EffectSetLanguage}, Prompt: i18n.MsgMainMenu,
	})

	m.set(store.StateMainMenu, intent.CheckEligibility, Transition{
		Next: store.StateEligibilityCheck, Effects: []Effect{EffectResolveTopic, EffectAskNext},
	})
	m.set(store.StateMainMenu, intent.ApplicationGuide, Transition{
		Next: store.StateApplicationGuide, Effects: []Effect{EffectResolveTopic, EffectShowStep},
	})
	m.set(store.StateMainMenu, intent.SelectScheme, Transition{
		Next: store.StateSchemeDetails, Effects: []Effect{EffectShowScheme},
	})

	m.set(store.StateSchemeBrowsing, intent.SelectScheme, Transition{
		Next: store.StateSchemeDetails, Effects: []Effect{EffectShowScheme},
	})
	m.set(store.StateSchemeBrowsing, intent.CheckEligibility, Transition{
		Next: store.StateEligibilityCheck, Effects: []Effect{EffectResolveTopic, EffectAskNext},
	})
	m.set(store.StateSchemeBrowsing, intent.NextStep, Transition{
		Next: store.StateSchemeBrowsing, Effects: []Effect{EffectListSchemes},
	})

	m.set(store.StateSchemeDetails, intent.CheckEligibility, Transition{
		Next: store.StateEligibilityCheck, Effects: []Effect{EffectAskNext},
	})
	m.set(store.StateSchemeDetails, intent.ApplicationGuide, Transition{
		Next: store.StateApplicationGuide, Effects: []Effect{EffectShowStep},
	})
	m.set(store.StateSchemeDetails, intent.SelectScheme, Transition{
		Next: store.StateSchemeDetails, Effects: []Effect{EffectShowScheme},
	})

	m.set(store.StateEligibilityCheck, intent.ProvideValue, Transition{
		Next: store.StateEligibilityCheck, Effects: []Effect{EffectRecordAnswer, EffectAskNext},
	})
	m.set(store.StateEligibilityCheck, intent.ApplicationGuide, Transition{
		Next: store.StateApplicationGuide, Effects: []Effect{EffectShowStep},
	})
	m.set(store.StateEligibilityCheck, intent.SubmitApplication, Transition{
		Next: store.StateEligibilityCheck, Prompt: i18n.MsgConfirmSubmit,
	})

	m.set(store.StateApplicationGuide, intent.NextStep, Transition{
		Next: store.StateApplicationGuide, Effects: []Effect{EffectAdvanceStep, EffectShowStep},
	})
	m.set(store.StateApplicationGuide, intent.Affirm, Transition{
		Next: store.StateApplicationGuide, Effects: []Effect{EffectAdvanceStep, EffectShowStep},
	})
	m.set(store.StateApplicationGuide, intent.SubmitApplication, Transition{
		Next: store.StateApplicationGuide, Prompt: i18n.MsgConfirmSubmit,
	})
	m.set(store.StateApplicationGuide, intent.CheckEligibility, Transition{
		Next: store.StateEligibilityCheck, Effects: []Effect{EffectAskNext},
	})

	return m
}

func (m *Machine) set(s store.State, in intent.Type, t Transition) {
	m.table[tableKey{state: s, in: in}] = t
}

// topicSwitches are interrupts: entering their target discards the current
// state instead of stacking it, so "back" never returns into an abandoned
// topic.
var topicSwitches = map[intent.Type]bool{
	intent.MainMenu:       true,
	intent.BrowseSchemes:  true,
	intent.SelectLanguage: true,
}

// importantIntents route through CONFIRMATION before committing.
var importantIntents = map[intent.Type]bool{
	intent.EndSession:        true,
	intent.SubmitApplication: true,
}

// Step computes and applies the transition for one classified intent. It
// mutates the session's state, stack and pending-confirmation context; all
// other session changes belong to the returned effects.
func (m *Machine) Step(sess *store.Session, in intent.Candidate) Transition {
	current := sess.State

	if current == store.StateEnded {
		return Transition{Next: store.StateEnded, Prompt: i18n.MsgErrExpired, Fallback: true}
	}

	// Confirmation gate resolution has priority over the table.
	if current == store.StateConfirmation {
		return m.resolveConfirmation(sess, in)
	}

	if in.Type == intent.GoBack {
		prev, ok := sess.PopState()
		if !ok {
			prev = store.StateMainMenu
		}
		sess.State = prev
		return reenter(prev)
	}

	// Important transitions park their target and divert to CONFIRMATION.
	if importantIntents[in.Type] {
		target, ok := m.lookup(current, in.Type)
		if !ok {
			return m.clarify(sess)
		}
		sess.PushState(current)
		sess.State = store.StateConfirmation
		sess.Context.PendingState = target.Next
		sess.Context.PendingIntent = string(in.Type)
		prompt := i18n.MsgConfirmEnd
		if in.Type == intent.SubmitApplication {
			prompt = i18n.MsgConfirmSubmit
		}
		return Transition{Next: store.StateConfirmation, Prompt: prompt}
	}

	t, ok := m.lookup(current, in.Type)
	if !ok {
		return m.clarify(sess)
	}

	if t.Next != current && t.Next != store.StateEnded {
		if topicSwitches[in.Type] {
			// Destructive switch: the interrupted state is discarded.
			sess.StateStack = sess.StateStack[:0]
		} else {
			sess.PushState(current)
		}
	}
	sess.State = t.Next
	return t
}

func (m *Machine) resolveConfirmation(sess *store.Session, in intent.Candidate) Transition {
	switch in.Type {
	case intent.Affirm:
		pending := sess.Context.PendingState
		pendingIntent := intent.Type(sess.Context.PendingIntent)
		sess.Context.ClearPending()
		// Drop the state stacked for a potential DENY restore.
		sess.PopState()
		sess.State = pending
		switch pendingIntent {
		case intent.EndSession:
			return Transition{Next: pending, Effects: []Effect{EffectEndSession}, Prompt: i18n.MsgGoodbye}
		case intent.SubmitApplication:
			return Transition{Next: pending, Effects: []Effect{EffectSubmit}, Prompt: i18n.MsgSubmitted}
		default:
			return Transition{Next: pending, Prompt: promptFor(pending)}
		}
	case intent.Deny:
		sess.Context.ClearPending()
		prev, ok := sess.PopState()
		if !ok {
			prev = store.StateMainMenu
		}
		sess.State = prev
		t := reenter(prev)
		t.Prompt = i18n.MsgConfirmCancelled
		return t
	default:
		// Anything else re-asks the pending question.
		prompt := i18n.MsgConfirmEnd
		if intent.Type(sess.Context.PendingIntent) == intent.SubmitApplication {
			prompt = i18n.MsgConfirmSubmit
		}
		return Transition{Next: store.StateConfirmation, Prompt: prompt, Fallback: true}
	}
}

func (m *Machine) lookup(s store.State, in intent.Type) (Transition, bool) {
	t, ok := m.table[tableKey{state: s, in: in}]
	return t, ok
}

func (m *Machine) clarify(sess *store.Session) Transition {
	return Transition{Next: sess.State, Prompt: i18n.MsgClarify, Fallback: true}
}

// reenter builds the transition for landing in a state via back-navigation
// or a cancelled confirmation: the state's content is re-presented.
func reenter(s store.State) Transition {
	switch s {
	case store.StateLanguageSelection:
		return Transition{Next: s, Prompt: i18n.MsgChooseLanguage}
	case store.StateSchemeBrowsing:
		return Transition{Next: s, Effects: []Effect{EffectListSchemes}}
	case store.StateSchemeDetails:
		return Transition{Next: s, Effects: []Effect{EffectShowScheme}}
	case store.StateEligibilityCheck:
		return Transition{Next: s, Effects: []Effect{EffectAskNext}}
	case store.StateApplicationGuide:
		return Transition{Next: s, Effects: []Effect{EffectShowStep}}
	case store.StateEnded:
		return Transition{Next: s, Prompt: i18n.MsgGoodbye}
	default:
		return Transition{Next: store.StateMainMenu, Prompt: i18n.MsgMainMenu}
	}
}

func promptFor(s store.State) i18n.Key {
	return reenter(s).Prompt
}
