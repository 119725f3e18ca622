package vectorstore

import (
	"context"

	"tabvec/internal/domain"
)

// Storage holds one vector per row identifier for the duration of a run.
// All enumerates the stored records in no particular order; callers must
// restore row order themselves.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []domain.VectorRecord) error
	All(ctx context.Context) ([]domain.VectorRecord, error)
	Clear(ctx context.Context) error
}
