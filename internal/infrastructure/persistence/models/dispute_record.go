package models

import (
	"encoding/json"
	"time"

	"github.com/riskledger/backend/internal/domain/dispute"
)

// DisputeRecordModel is the persistence model for the DisputeRecord aggregate.
// The dispute state is stored under its compact label and the latest order
// snapshot is kept as a jsonb document.
type DisputeRecordModel struct {
	OwnerAggregateModel
	// unique per owner; the composite index lives in the migrations
	OrderNo        string    `gorm:"type:varchar(64);not null;index"`
	DisputeState   string    `gorm:"type:varchar(16);not null;default:'none'"`
	RiskLabel      string    `gorm:"type:varchar(16);not null;default:''"`
	Sources        string    `gorm:"type:jsonb;default:'[]'"`
	Snapshot       string    `gorm:"type:jsonb;not null;default:'{}'"`
	LastImportedAt time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (DisputeRecordModel) TableName() string {
	return "dispute_records"
}

// ToDomain converts the persistence model to a domain DisputeRecord
func (m *DisputeRecordModel) ToDomain() *dispute.DisputeRecord {
	record := &dispute.DisputeRecord{
		OrderNo:            m.OrderNo,
		LatestDisputeState: dispute.DisputeStateFromLabel(m.DisputeState),
		LatestRiskLabel:    dispute.RiskLabel(m.RiskLabel),
		Sources:            make(map[string]bool),
		LastImportedAt:     m.LastImportedAt,
	}
	m.PopulateOwnerAggregateRoot(&record.OwnerAggregateRoot)

	if m.Sources != "" {
		var sources []string
		if err := json.Unmarshal([]byte(m.Sources), &sources); err == nil {
			for _, s := range sources {
				record.Sources[s] = true
			}
		}
	}

	if m.Snapshot != "" && m.Snapshot != "{}" {
		_ = json.Unmarshal([]byte(m.Snapshot), &record.Snapshot)
	}
	if record.Snapshot.Tags == nil {
		record.Snapshot.Tags = dispute.NewTagSet()
	}

	return record
}

// FromDomain populates the persistence model from a domain DisputeRecord
func (m *DisputeRecordModel) FromDomain(r *dispute.DisputeRecord) {
	m.FromDomainOwnerAggregateRoot(r.OwnerAggregateRoot)
	m.OrderNo = r.OrderNo
	m.DisputeState = r.LatestDisputeState.PersistedLabel()
	m.RiskLabel = string(r.LatestRiskLabel)
	m.LastImportedAt = r.LastImportedAt

	if sources, err := json.Marshal(r.SourceList()); err == nil {
		m.Sources = string(sources)
	} else {
		m.Sources = "[]"
	}

	if snapshot, err := json.Marshal(r.Snapshot); err == nil {
		m.Snapshot = string(snapshot)
	} else {
		m.Snapshot = "{}"
	}
}

// DisputeRecordModelFromDomain creates a persistence model from a domain DisputeRecord
func DisputeRecordModelFromDomain(r *dispute.DisputeRecord) *DisputeRecordModel {
	m := &DisputeRecordModel{}
	m.FromDomain(r)
	return m
}
