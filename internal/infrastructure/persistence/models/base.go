package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/riskledger/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// OwnerAggregateModel provides common persistence fields for owner-scoped
// aggregate roots
type OwnerAggregateModel struct {
	AggregateModel
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainOwnerAggregateRoot populates OwnerAggregateModel from domain OwnerAggregateRoot
func (m *OwnerAggregateModel) FromDomainOwnerAggregateRoot(o shared.OwnerAggregateRoot) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OwnerID = o.OwnerID
}

// PopulateOwnerAggregateRoot populates a domain OwnerAggregateRoot from the model
func (m *OwnerAggregateModel) PopulateOwnerAggregateRoot(o *shared.OwnerAggregateRoot) {
	o.BaseAggregateRoot.BaseEntity.ID = m.ID
	o.BaseAggregateRoot.BaseEntity.CreatedAt = m.CreatedAt
	o.BaseAggregateRoot.BaseEntity.UpdatedAt = m.UpdatedAt
	o.BaseAggregateRoot.Version = m.Version
	o.OwnerID = m.OwnerID
}
