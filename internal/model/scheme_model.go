package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Scheme is the persisted catalog record. Localized fields and the ordered
// criteria list are JSON columns; the live representation is
// pkg/scheme.Snapshot, produced by the mapper.
type Scheme struct {
	Id           string         `gorm:"type:varchar(64);primaryKey"`
	Code         string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	Category     string         `gorm:"type:varchar(64);not null;index"`
	Names        datatypes.JSON `gorm:"type:jsonb;not null"`
	Descriptions datatypes.JSON `gorm:"type:jsonb;not null"`
	Criteria     datatypes.JSON `gorm:"type:jsonb;not null"`
	Steps        datatypes.JSON `gorm:"type:jsonb;not null"`
	Documents    datatypes.JSON `gorm:"type:jsonb"`
	Deadline     *time.Time
	Version      int            `gorm:"not null;default:1"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Scheme) TableName() string {
	return "schemes"
}
