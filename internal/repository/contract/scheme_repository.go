package contract

import (
	"context"

	"sahayak-be/internal/repository/specification"
	"sahayak-be/pkg/scheme"
)

// SchemeRepository persists the scheme catalog. Update bumps the record
// version and writes the prior revision to the version history first, so
// FindVersion can reconstruct any previously published state.
type SchemeRepository interface {
	Create(ctx context.Context, snap *scheme.Snapshot) error
	Update(ctx context.Context, snap *scheme.Snapshot) error
	Delete(ctx context.Context, id string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*scheme.Snapshot, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*scheme.Snapshot, error)
	FindVersion(ctx context.Context, id string, version int) (*scheme.Snapshot, error)
	CurrentVersion(ctx context.Context, id string) (int, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
