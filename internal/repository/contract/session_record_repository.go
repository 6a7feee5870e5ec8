package contract

import (
	"context"

	"sahayak-be/internal/model"
	"sahayak-be/internal/repository/specification"
)

// SessionRecordRepository persists session skeletons. Records are created at
// session start and finalized on end; they survive the live session.
type SessionRecordRepository interface {
	Create(ctx context.Context, record *model.SessionRecord) error
	Update(ctx context.Context, record *model.SessionRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*model.SessionRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.SessionRecord, error)
}

// TurnRecordRepository stores archived transcripts (consented ends only).
type TurnRecordRepository interface {
	CreateBatch(ctx context.Context, records []*model.TurnRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.TurnRecord, error)
}

// SessionMetricRepository stores the anonymized per-session aggregates the
// admin metrics endpoint reads.
type SessionMetricRepository interface {
	Create(ctx context.Context, metric *model.SessionMetric) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.SessionMetric, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
