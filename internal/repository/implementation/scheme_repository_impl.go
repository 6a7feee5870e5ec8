package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sahayak-be/internal/mapper"
	"sahayak-be/internal/model"
	"sahayak-be/internal/repository/contract"
	"sahayak-be/internal/repository/specification"
	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/scheme"
)

type SchemeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SchemeMapper
}

func NewSchemeRepository(db *gorm.DB) contract.SchemeRepository {
	return &SchemeRepositoryImpl{
		db:     db,
		mapper: mapper.NewSchemeMapper(),
	}
}

func (r *SchemeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SchemeRepositoryImpl) Create(ctx context.Context, snap *scheme.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if snap.Version == 0 {
		snap.Version = 1
	}
	m, err := r.mapper.ToModel(snap)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// Update bumps the version and snapshots the prior record into the history
// table inside one transaction.
func (r *SchemeRepositoryImpl) Update(ctx context.Context, snap *scheme.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior model.Scheme
		if err := tx.First(&prior, "id = ?", snap.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Newf(apperror.KindNotFound, "scheme %s", snap.ID)
			}
			return err
		}

		payload := model.SchemeVersion{
			SchemeId: prior.Id,
			Version:  prior.Version,
		}
		raw, err := schemeRowJSON(&prior)
		if err != nil {
			return err
		}
		payload.Payload = raw
		if err := tx.Create(&payload).Error; err != nil {
			return err
		}

		snap.Version = prior.Version + 1
		m, err := r.mapper.ToModel(snap)
		if err != nil {
			return err
		}
		m.CreatedAt = prior.CreatedAt
		return tx.Save(m).Error
	})
}

func (r *SchemeRepositoryImpl) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Scheme{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.Newf(apperror.KindNotFound, "scheme %s", id)
	}
	return nil
}

func (r *SchemeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*scheme.Snapshot, error) {
	var m model.Scheme
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToSnapshot(&m)
}

func (r *SchemeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*scheme.Snapshot, error) {
	var models []*model.Scheme
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToSnapshots(models)
}

func (r *SchemeRepositoryImpl) FindVersion(ctx context.Context, id string, version int) (*scheme.Snapshot, error) {
	// The live row is the current version; older ones come from history.
	var current model.Scheme
	err := r.db.WithContext(ctx).First(&current, "id = ?", id).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil && current.Version == version {
		return r.mapper.ToSnapshot(&current)
	}

	var hist model.SchemeVersion
	err = r.db.WithContext(ctx).
		First(&hist, "scheme_id = ? AND version = ?", id, version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindNotFound, "scheme %s version %d", id, version)
		}
		return nil, err
	}

	var row model.Scheme
	if err := unmarshalSchemeRow(hist.Payload, &row); err != nil {
		return nil, err
	}
	return r.mapper.ToSnapshot(&row)
}

func (r *SchemeRepositoryImpl) CurrentVersion(ctx context.Context, id string) (int, error) {
	var version int
	err := r.db.WithContext(ctx).
		Model(&model.Scheme{}).
		Select("version").
		Where("id = ?", id).
		Scan(&version).Error
	if err != nil {
		return 0, err
	}
	if version == 0 {
		return 0, apperror.Newf(apperror.KindNotFound, "scheme %s", id)
	}
	return version, nil
}

func (r *SchemeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Scheme{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
