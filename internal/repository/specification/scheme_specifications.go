package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByCategory filters schemes by catalog category.
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

// ByCode filters schemes by their stable code.
type ByCode struct {
	Code string
}

func (s ByCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("code = ?", s.Code)
}

// OpenDeadline keeps schemes still accepting applications at the given time.
// Schemes without a deadline are always open.
type OpenDeadline struct {
	At time.Time
}

func (s OpenDeadline) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("deadline IS NULL OR deadline > ?", s.At)
}
