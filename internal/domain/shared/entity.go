package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and bookkeeping timestamps every persisted
// ledger object shares. Aggregates embed it through BaseAggregateRoot and the
// persistence models copy its fields both ways.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity creates a base entity with a generated ID and both
// timestamps set to now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
