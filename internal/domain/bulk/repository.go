package bulk

import (
	"context"

	"github.com/google/uuid"

	"github.com/riskledger/backend/internal/domain/shared"
)

// ImportRunRepository is the persistence contract for import runs
type ImportRunRepository interface {
	Save(ctx context.Context, run *ImportRun) error
	Update(ctx context.Context, run *ImportRun) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*ImportRun, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[*ImportRun], error)
}
