package resolver

import (
	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/store"
)

// DefaultWindow is how many recent turns are scanned for entity mentions.
const DefaultWindow = 10

// Resolver resolves referring expressions ("that scheme", "the last one")
// against a bounded window of conversation history. It never guesses: when
// no compatible mention exists, or equally recent candidates of different
// values compete, it reports an ambiguous reference for the orchestrator to
// turn into a clarification prompt.
type Resolver struct {
	window int
}

func New(window int) *Resolver {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Resolver{window: window}
}

// Resolve scans the window newest to oldest for a mention compatible with
// kind. The first compatible match wins; two distinct values inside the same
// turn are an ambiguity.
func (r *Resolver) Resolve(sess *store.Session, kind store.MentionKind) (string, error) {
	turns := sess.RecentTurns(r.window)
	for i := len(turns) - 1; i >= 0; i-- {
		var found string
		for _, m := range turns[i].Mentions {
			if m.Kind != kind {
				continue
			}
			if found != "" && m.Value != found {
				return "", apperror.Newf(apperror.KindAmbiguous,
					"turn mentions both %q and %q", found, m.Value)
			}
			found = m.Value
		}
		if found != "" {
			return found, nil
		}
	}
	return "", apperror.Newf(apperror.KindAmbiguous, "no %s mention in the last %d turns", kind, r.window)
}

// ResolveScheme is Resolve specialized for scheme references.
func (r *Resolver) ResolveScheme(sess *store.Session) (string, error) {
	return r.Resolve(sess, store.MentionScheme)
}
