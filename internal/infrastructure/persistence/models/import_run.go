package models

import (
	"encoding/json"
	"time"

	"github.com/riskledger/backend/internal/domain/bulk"
)

// ImportRunModel is the persistence model for the ImportRun aggregate
type ImportRunModel struct {
	OwnerAggregateModel
	Source           string     `gorm:"type:varchar(16);not null"`
	FileName         string     `gorm:"type:varchar(255)"`
	TotalOrders      int        `gorm:"not null;default:0"`
	MergedOrders     int        `gorm:"not null;default:0"`
	QuarantinedCount int        `gorm:"not null;default:0"`
	SkippedRows      int        `gorm:"not null;default:0"`
	Status           string     `gorm:"type:varchar(16);not null;default:'pending'"`
	ErrorDetails     string     `gorm:"type:jsonb;default:'[]'"`
	StartedAt        *time.Time `gorm:"type:timestamptz"`
	CompletedAt      *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (ImportRunModel) TableName() string {
	return "import_runs"
}

// ToDomain converts the persistence model to a domain ImportRun
func (m *ImportRunModel) ToDomain() *bulk.ImportRun {
	run := &bulk.ImportRun{
		Source:           bulk.ImportSource(m.Source),
		FileName:         m.FileName,
		TotalOrders:      m.TotalOrders,
		MergedOrders:     m.MergedOrders,
		QuarantinedCount: m.QuarantinedCount,
		SkippedRows:      m.SkippedRows,
		Status:           bulk.ImportStatus(m.Status),
		StartedAt:        m.StartedAt,
		CompletedAt:      m.CompletedAt,
	}
	m.PopulateOwnerAggregateRoot(&run.OwnerAggregateRoot)

	if m.ErrorDetails != "" && m.ErrorDetails != "[]" {
		var details []bulk.ImportErrorDetail
		if err := json.Unmarshal([]byte(m.ErrorDetails), &details); err == nil {
			run.ErrorDetails = details
		}
	}
	if run.ErrorDetails == nil {
		run.ErrorDetails = make([]bulk.ImportErrorDetail, 0)
	}

	return run
}

// FromDomain populates the persistence model from a domain ImportRun
func (m *ImportRunModel) FromDomain(r *bulk.ImportRun) {
	m.FromDomainOwnerAggregateRoot(r.OwnerAggregateRoot)
	m.Source = string(r.Source)
	m.FileName = r.FileName
	m.TotalOrders = r.TotalOrders
	m.MergedOrders = r.MergedOrders
	m.QuarantinedCount = r.QuarantinedCount
	m.SkippedRows = r.SkippedRows
	m.Status = string(r.Status)
	m.StartedAt = r.StartedAt
	m.CompletedAt = r.CompletedAt

	if details, err := json.Marshal(r.ErrorDetails); err == nil {
		m.ErrorDetails = string(details)
	} else {
		m.ErrorDetails = "[]"
	}
}

// ImportRunModelFromDomain creates a persistence model from a domain ImportRun
func ImportRunModelFromDomain(r *bulk.ImportRun) *ImportRunModel {
	m := &ImportRunModel{}
	m.FromDomain(r)
	return m
}
