package shared

import (
	"github.com/google/uuid"
)

// BaseAggregateRoot adds an optimistic-lock version on top of BaseEntity
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// IncrementVersion bumps the version after a state change
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// OwnerAggregateRoot extends BaseAggregateRoot with owner (merchant) scoping.
// Ledger data is partitioned by owner; the owner ID is always an explicit
// parameter threaded through services, never ambient state.
type OwnerAggregateRoot struct {
	BaseAggregateRoot
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// NewOwnerAggregateRoot creates a new owner-scoped aggregate root
func NewOwnerAggregateRoot(ownerID uuid.UUID) OwnerAggregateRoot {
	return OwnerAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		OwnerID:           ownerID,
	}
}
