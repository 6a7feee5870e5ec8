package contract

import "sahayak-be/pkg/session"

// SessionStore is the live-session backend contract. The in-memory and Redis
// implementations both satisfy it; the lifecycle manager consumes it via
// pkg/session.
type SessionStore = session.Store
