package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByUserRef filters session records by the pseudonymous user reference.
type ByUserRef struct {
	UserRef string
}

func (s ByUserRef) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_ref = ?", s.UserRef)
}

// CreatedSince keeps rows created inside the retention window.
type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}

// EndedOnly keeps records of sessions that actually terminated.
type EndedOnly struct{}

func (s EndedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ended_at IS NOT NULL")
}
