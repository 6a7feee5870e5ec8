package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionRecord is the durable skeleton of a conversation. Profile and
// transcript exist only for consented sessions: the profile as a JSON column
// here, the transcript as turn_records rows.
type SessionRecord struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserRef    string    `gorm:"type:varchar(128);index"`
	Language   string    `gorm:"type:varchar(8);not null"`
	Completed  bool      `gorm:"not null;default:false"`
	Consented  bool      `gorm:"not null;default:false"`
	TurnCount  int       `gorm:"not null;default:0"`
	ErrorCount int       `gorm:"not null;default:0"`
	Profile    datatypes.JSON
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	EndedAt    *time.Time
}

func (SessionRecord) TableName() string {
	return "session_records"
}

// TurnRecord is one archived transcript row, written only on consented end.
type TurnRecord struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Seq       int       `gorm:"not null"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Text      string    `gorm:"type:text;not null"`
	Intent    string    `gorm:"type:varchar(64)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (TurnRecord) TableName() string {
	return "turn_records"
}

// SessionMetric is the anonymized aggregate kept for every session
// regardless of consent. No session or user reference on purpose.
type SessionMetric struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Language        string    `gorm:"type:varchar(8);not null"`
	DurationSeconds int       `gorm:"not null"`
	TurnCount       int       `gorm:"not null"`
	ErrorCount      int       `gorm:"not null"`
	Completed       bool      `gorm:"not null"`
	ExpiredRead     bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (SessionMetric) TableName() string {
	return "session_metrics"
}
