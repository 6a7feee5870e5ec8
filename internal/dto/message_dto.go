package dto

import (
	"time"

	"sahayak-be/pkg/store"
)

// ArchiveSessionMessage carries a consented session to the archive worker.
// The session is a pre-scrub clone; it never re-enters the live store.
type ArchiveSessionMessage struct {
	Session *store.Session `json:"session"`
	EndedAt time.Time      `json:"ended_at"`
}
