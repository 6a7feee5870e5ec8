package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sahayak-be/internal/model"
	"sahayak-be/internal/repository/contract"
	"sahayak-be/internal/repository/specification"
)

type SessionRecordRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionRecordRepository(db *gorm.DB) contract.SessionRecordRepository {
	return &SessionRecordRepositoryImpl{db: db}
}

func (r *SessionRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRecordRepositoryImpl) Create(ctx context.Context, record *model.SessionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *SessionRecordRepositoryImpl) Update(ctx context.Context, record *model.SessionRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *SessionRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*model.SessionRecord, error) {
	var m model.SessionRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *SessionRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.SessionRecord, error) {
	var records []*model.SessionRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

type TurnRecordRepositoryImpl struct {
	db *gorm.DB
}

func NewTurnRecordRepository(db *gorm.DB) contract.TurnRecordRepository {
	return &TurnRecordRepositoryImpl{db: db}
}

func (r *TurnRecordRepositoryImpl) CreateBatch(ctx context.Context, records []*model.TurnRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(records, 100).Error
}

func (r *TurnRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.TurnRecord, error) {
	var records []*model.TurnRecord
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Order("seq ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

type SessionMetricRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionMetricRepository(db *gorm.DB) contract.SessionMetricRepository {
	return &SessionMetricRepositoryImpl{db: db}
}

func (r *SessionMetricRepositoryImpl) Create(ctx context.Context, metric *model.SessionMetric) error {
	return r.db.WithContext(ctx).Create(metric).Error
}

func (r *SessionMetricRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.SessionMetric, error) {
	var metrics []*model.SessionMetric
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}

func (r *SessionMetricRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.SessionMetric{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
