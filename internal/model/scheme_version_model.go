package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SchemeVersion is the history row written before every scheme update; the
// payload is the full prior snapshot so any version can be reconstructed.
type SchemeVersion struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SchemeId  string         `gorm:"type:varchar(64);not null;index:idx_scheme_versions_scheme_version"`
	Version   int            `gorm:"not null;index:idx_scheme_versions_scheme_version"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (SchemeVersion) TableName() string {
	return "scheme_versions"
}
