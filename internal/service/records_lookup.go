package service

import (
	"context"
	"time"

	"sahayak-be/internal/repository/specification"
	"sahayak-be/internal/repository/unitofwork"
	"sahayak-be/pkg/i18n"
	"sahayak-be/pkg/session"
)

// recordsLookup resolves a returning user's last language from archived
// session records, bounded by the retention window.
type recordsLookup struct {
	uowFactory unitofwork.RepositoryFactory
	retention  time.Duration
}

func NewRecordsLookup(uowFactory unitofwork.RepositoryFactory, retentionDays int) session.Records {
	return &recordsLookup{
		uowFactory: uowFactory,
		retention:  time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (r *recordsLookup) LastLanguage(ctx context.Context, userRef string) (i18n.Language, bool, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.SessionRecordRepository().FindAll(ctx,
		specification.ByUserRef{UserRef: userRef},
		specification.CreatedSince{Since: time.Now().Add(-r.retention)},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 1},
	)
	if err != nil {
		return "", false, err
	}
	if len(records) == 0 {
		return "", false, nil
	}
	return i18n.Parse(records[0].Language), true, nil
}
