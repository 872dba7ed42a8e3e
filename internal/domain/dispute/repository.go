package dispute

import (
	"context"

	"github.com/google/uuid"

	"github.com/riskledger/backend/internal/domain/shared"
)

// RecordRepository is the persistence contract for dispute records.
// All reads and writes are owner-scoped.
type RecordRepository interface {
	// FindByOrderNos loads the existing records for a batch of order
	// numbers, keyed by order number. Missing order numbers are simply
	// absent from the map.
	FindByOrderNos(ctx context.Context, ownerID uuid.UUID, orderNos []string) (map[string]*DisputeRecord, error)

	// FindByOrderNo loads a single record, shared.ErrNotFound when absent
	FindByOrderNo(ctx context.Context, ownerID uuid.UUID, orderNo string) (*DisputeRecord, error)

	// FindAllForOwner lists records with pagination. The filter's Filters
	// map supports "category" (snapshot category) and "quarantined" keys.
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[*DisputeRecord], error)

	// CountForOwner counts all records for an owner
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// UpsertBatch writes a batch of records atomically, inserting new
	// order numbers and replacing existing ones
	UpsertBatch(ctx context.Context, records []*DisputeRecord) error

	// PurgeForOwner deletes every record for an owner and returns the
	// number removed. Deletion is total; there is no partial purge.
	PurgeForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
