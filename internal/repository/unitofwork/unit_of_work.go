package unitofwork

import (
	"context"

	"sahayak-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SchemeRepository() contract.SchemeRepository
	SessionRecordRepository() contract.SessionRecordRepository
	TurnRecordRepository() contract.TurnRecordRepository
	SessionMetricRepository() contract.SessionMetricRepository
}
