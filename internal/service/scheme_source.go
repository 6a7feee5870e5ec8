package service

import (
	"context"

	"sahayak-be/internal/repository/specification"
	"sahayak-be/internal/repository/unitofwork"
	"sahayak-be/pkg/scheme"
)

// schemeSource backs the scheme cache with the catalog tables.
type schemeSource struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSchemeSource(uowFactory unitofwork.RepositoryFactory) scheme.Source {
	return &schemeSource{uowFactory: uowFactory}
}

func (s *schemeSource) FetchByID(ctx context.Context, id string) (*scheme.Snapshot, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SchemeRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (s *schemeSource) FetchAll(ctx context.Context) ([]*scheme.Snapshot, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SchemeRepository().FindAll(ctx)
}

func (s *schemeSource) CurrentVersion(ctx context.Context, id string) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SchemeRepository().CurrentVersion(ctx, id)
}
