package service

import (
	"context"
	"time"

	"sahayak-be/internal/dto"
	"sahayak-be/internal/pkg/logger"
	"sahayak-be/internal/repository/specification"
	"sahayak-be/internal/repository/unitofwork"
	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/eligibility"
	"sahayak-be/pkg/events"
	"sahayak-be/pkg/i18n"
	pkgNats "sahayak-be/pkg/nats"
	"sahayak-be/pkg/scheme"
)

// ISchemeService is the admin surface of the scheme catalog. Every write
// invalidates the read cache and emits a scheme.updated event so other
// instances drop their copies too.
type ISchemeService interface {
	Create(ctx context.Context, req *dto.SchemeUpsertRequest) (*dto.SchemeResponse, error)
	Update(ctx context.Context, id string, req *dto.SchemeUpsertRequest) (*dto.SchemeResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req *dto.SchemeListRequest) ([]*dto.SchemeResponse, error)
	Get(ctx context.Context, id string, lang i18n.Language) (*dto.SchemeResponse, error)
	History(ctx context.Context, id string, version int) (*dto.SchemeResponse, error)
	Warm(ctx context.Context) (int, error)
}

type schemeService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *scheme.Cache
	natsPub    *pkgNats.Publisher
	logger     logger.ILogger
}

func NewSchemeService(
	uowFactory unitofwork.RepositoryFactory,
	cache *scheme.Cache,
	natsPub *pkgNats.Publisher,
	logger logger.ILogger,
) ISchemeService {
	return &schemeService{
		uowFactory: uowFactory,
		cache:      cache,
		natsPub:    natsPub,
		logger:     logger,
	}
}

func (s *schemeService) Create(ctx context.Context, req *dto.SchemeUpsertRequest) (*dto.SchemeResponse, error) {
	snap, err := snapshotFromRequest(req.Id, req)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SchemeRepository().Create(ctx, snap); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, snap)
	return toSchemeResponse(snap, i18n.DefaultLanguage), nil
}

func (s *schemeService) Update(ctx context.Context, id string, req *dto.SchemeUpsertRequest) (*dto.SchemeResponse, error) {
	snap, err := snapshotFromRequest(id, req)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	// Update stamps the bumped version onto snap.
	if err := uow.SchemeRepository().Update(ctx, snap); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, snap)
	return toSchemeResponse(snap, i18n.DefaultLanguage), nil
}

func (s *schemeService) Delete(ctx context.Context, id string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SchemeRepository().Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(id)
	return nil
}

func (s *schemeService) List(ctx context.Context, req *dto.SchemeListRequest) ([]*dto.SchemeResponse, error) {
	lang := i18n.Parse(req.Language)

	specs := []specification.Specification{}
	if req.Category != "" {
		specs = append(specs, specification.ByCategory{Category: req.Category})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	snaps, err := uow.SchemeRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SchemeResponse, 0, len(snaps))
	for _, snap := range snaps {
		result = append(result, toSchemeResponse(snap, lang))
	}
	return result, nil
}

func (s *schemeService) Get(ctx context.Context, id string, lang i18n.Language) (*dto.SchemeResponse, error) {
	snap, err := s.cache.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSchemeResponse(snap, lang), nil
}

func (s *schemeService) History(ctx context.Context, id string, version int) (*dto.SchemeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	snap, err := uow.SchemeRepository().FindVersion(ctx, id, version)
	if err != nil {
		return nil, err
	}
	return toSchemeResponse(snap, i18n.DefaultLanguage), nil
}

func (s *schemeService) Warm(ctx context.Context) (int, error) {
	return s.cache.Warm(ctx)
}

func (s *schemeService) afterWrite(ctx context.Context, snap *scheme.Snapshot) {
	s.cache.Invalidate(snap.ID)

	if s.natsPub == nil {
		return
	}
	evt := events.SchemeUpdated(snap.ID, snap.Version, time.Now())
	if err := s.natsPub.Publish(ctx, evt); err != nil {
		s.logger.Warn("SCHEME", "Failed to publish scheme.updated", map[string]interface{}{
			"scheme_id": snap.ID,
			"error":     err.Error(),
		})
	}
}

func snapshotFromRequest(id string, req *dto.SchemeUpsertRequest) (*scheme.Snapshot, error) {
	name, err := textFromMap(req.Name)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err, "scheme name")
	}
	desc, err := textFromMap(req.Description)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err, "scheme description")
	}

	criteria := make(eligibility.Criteria, 0, len(req.Criteria))
	for _, c := range req.Criteria {
		criteria = append(criteria, eligibility.Criterion{
			Name:  c.Name,
			Field: c.Field,
			Predicate: eligibility.Predicate{
				Kind:   eligibility.PredicateKind(c.Predicate.Kind),
				Min:    c.Predicate.Min,
				Max:    c.Predicate.Max,
				OneOf:  c.Predicate.OneOf,
				Custom: c.Predicate.Custom,
				Param:  c.Predicate.Param,
			},
		})
	}

	steps, err := textsFromMaps(req.Steps)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err, "application steps")
	}
	documents, err := textsFromMaps(req.Documents)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err, "required documents")
	}

	snap := &scheme.Snapshot{
		ID:          id,
		Code:        req.Code,
		Category:    req.Category,
		Name:        name,
		Description: desc,
		Criteria:    criteria,
		Steps:       steps,
		Documents:   documents,
		Deadline:    req.Deadline,
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func textFromMap(values map[string]string) (i18n.Text, error) {
	byLang := make(map[i18n.Language]string, len(values))
	for raw, v := range values {
		byLang[i18n.Language(raw)] = v
	}
	return i18n.NewText(byLang)
}

func textsFromMaps(values []map[string]string) ([]i18n.Text, error) {
	out := make([]i18n.Text, 0, len(values))
	for _, v := range values {
		t, err := textFromMap(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func toSchemeResponse(snap *scheme.Snapshot, lang i18n.Language) *dto.SchemeResponse {
	view := snap.View(lang)
	return &dto.SchemeResponse{
		Id:          view.ID,
		Code:        view.Code,
		Category:    view.Category,
		Name:        view.Name,
		Description: view.Description,
		Steps:       view.Steps,
		Documents:   view.Documents,
		Deadline:    view.Deadline,
		Version:     view.Version,
	}
}
