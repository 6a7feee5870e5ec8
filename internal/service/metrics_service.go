package service

import (
	"context"
	"time"

	"sahayak-be/internal/dto"
	"sahayak-be/internal/mapper"
	"sahayak-be/internal/model"
	"sahayak-be/internal/pkg/logger"
	"sahayak-be/internal/repository/unitofwork"
	"sahayak-be/pkg/store"
)

// IMetricsService records anonymized per-session aggregates and serves the
// admin summary. Recording never fails a conversation: errors are logged and
// swallowed.
type IMetricsService interface {
	RecordEnd(ctx context.Context, sess *store.Session, endedAt time.Time)
	RecordExpiredRead(sessionID string)
	Summary(ctx context.Context) (*dto.SessionMetricsResponse, error)
}

type metricsService struct {
	uowFactory    unitofwork.RepositoryFactory
	sessionMapper *mapper.SessionMapper
	logger        logger.ILogger
}

func NewMetricsService(
	uowFactory unitofwork.RepositoryFactory,
	sessionMapper *mapper.SessionMapper,
	logger logger.ILogger,
) IMetricsService {
	return &metricsService{
		uowFactory:    uowFactory,
		sessionMapper: sessionMapper,
		logger:        logger,
	}
}

func (ms *metricsService) RecordEnd(ctx context.Context, sess *store.Session, endedAt time.Time) {
	metric := ms.sessionMapper.ToMetric(sess, endedAt)
	uow := ms.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionMetricRepository().Create(ctx, metric); err != nil {
		ms.logger.Warn("METRICS", "Failed to record session metric", map[string]interface{}{"error": err.Error()})
	}
}

// RecordExpiredRead counts an attempt to use an expired session. Fired from
// the lifecycle manager's read path, so the write happens off the hot path.
func (ms *metricsService) RecordExpiredRead(sessionID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		uow := ms.uowFactory.NewUnitOfWork(ctx)
		metric := &model.SessionMetric{ExpiredRead: true}
		if err := uow.SessionMetricRepository().Create(ctx, metric); err != nil {
			ms.logger.Warn("METRICS", "Failed to record expired read", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}()
}

func (ms *metricsService) Summary(ctx context.Context) (*dto.SessionMetricsResponse, error) {
	uow := ms.uowFactory.NewUnitOfWork(ctx)
	metrics, err := uow.SessionMetricRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.SessionMetricsResponse{}
	var durations, turns, errors int64
	for _, m := range metrics {
		if m.ExpiredRead {
			continue
		}
		res.Sessions++
		if m.Completed {
			res.Completed++
		}
		durations += int64(m.DurationSeconds)
		turns += int64(m.TurnCount)
		errors += int64(m.ErrorCount)
	}
	if res.Sessions > 0 {
		res.CompletionRate = float64(res.Completed) / float64(res.Sessions)
		res.AvgDuration = float64(durations) / float64(res.Sessions)
		res.AvgTurns = float64(turns) / float64(res.Sessions)
	}
	if turns > 0 {
		res.ErrorRate = float64(errors) / float64(turns)
	}
	return res, nil
}
