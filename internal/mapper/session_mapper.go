package mapper

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"sahayak-be/internal/model"
	"sahayak-be/pkg/store"
)

// SessionMapper derives persistent records from a live session. All mappings
// are one-way: live sessions are never reconstructed from records.
type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// ToRecord builds the durable skeleton. The structured profile crosses into
// the record only when the user consented to retention; without consent it
// lives and dies with the session. Transcripts go through ToTurnRecords.
func (m *SessionMapper) ToRecord(s *store.Session, endedAt time.Time) (*model.SessionRecord, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return nil, err
	}
	ended := endedAt
	record := &model.SessionRecord{
		Id:         id,
		UserRef:    s.UserRef,
		Language:   string(s.Language),
		Completed:  s.Completed,
		Consented:  s.Consent.ProfileRetention,
		TurnCount:  s.TurnCount,
		ErrorCount: s.ErrorCount,
		CreatedAt:  s.CreatedAt,
		EndedAt:    &ended,
	}
	if s.Consent.ProfileRetention && len(s.Profile) > 0 {
		raw, err := json.Marshal(s.Profile)
		if err != nil {
			return nil, err
		}
		record.Profile = datatypes.JSON(raw)
	}
	return record, nil
}

// ToTurnRecords flattens the transcript for consented archival.
func (m *SessionMapper) ToTurnRecords(s *store.Session) ([]*model.TurnRecord, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return nil, err
	}
	records := make([]*model.TurnRecord, 0, len(s.History))
	for i, turn := range s.History {
		records = append(records, &model.TurnRecord{
			SessionId: id,
			Seq:       i,
			Role:      string(turn.Role),
			Text:      turn.Text,
			Intent:    turn.Intent,
			CreatedAt: turn.Timestamp,
		})
	}
	return records, nil
}

// ToMetric computes the anonymized aggregate; deliberately keeps no link back
// to the session.
func (m *SessionMapper) ToMetric(s *store.Session, endedAt time.Time) *model.SessionMetric {
	return &model.SessionMetric{
		Language:        string(s.Language),
		DurationSeconds: int(endedAt.Sub(s.CreatedAt).Seconds()),
		TurnCount:       s.TurnCount,
		ErrorCount:      s.ErrorCount,
		Completed:       s.Completed,
	}
}
