package bulk

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/riskledger/backend/internal/domain/shared"
)

// ImportSource identifies where a batch came from
type ImportSource string

const (
	ImportSourceCSV  ImportSource = "csv"
	ImportSourceFeed ImportSource = "feed"
)

// IsValid checks if the source is valid
func (s ImportSource) IsValid() bool {
	return s == ImportSourceCSV || s == ImportSourceFeed
}

// ImportStatus represents the status of an import run
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusPending, ImportStatusProcessing, ImportStatusCompleted, ImportStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// ImportErrorDetail records one per-row problem encountered during a run
type ImportErrorDetail struct {
	Line    int    `json:"line"`
	OrderNo string `json:"order_no,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportRun tracks one ingestion batch for an owner, CSV upload or feed sync
type ImportRun struct {
	shared.OwnerAggregateRoot
	Source           ImportSource        `json:"source"`
	FileName         string              `json:"file_name,omitempty"`
	TotalOrders      int                 `json:"total_orders"`
	MergedOrders     int                 `json:"merged_orders"`
	QuarantinedCount int                 `json:"quarantined_count"`
	SkippedRows      int                 `json:"skipped_rows"`
	Status           ImportStatus        `json:"status"`
	ErrorDetails     []ImportErrorDetail `json:"error_details,omitempty"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
}

// NewImportRun creates a pending run for an owner
func NewImportRun(ownerID uuid.UUID, source ImportSource, fileName string) (*ImportRun, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", fmt.Sprintf("Invalid import source: %s", source))
	}
	return &ImportRun{
		OwnerAggregateRoot: shared.NewOwnerAggregateRoot(ownerID),
		Source:             source,
		FileName:           fileName,
		Status:             ImportStatusPending,
		ErrorDetails:       make([]ImportErrorDetail, 0),
	}, nil
}

// StartProcessing marks the run as started
func (r *ImportRun) StartProcessing(totalOrders int) error {
	if r.Status != ImportStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", r.Status))
	}
	if totalOrders < 0 {
		return shared.NewDomainError("INVALID_TOTAL", "Total orders cannot be negative")
	}
	r.Status = ImportStatusProcessing
	r.TotalOrders = totalOrders
	now := time.Now()
	r.StartedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// Complete marks the run as finished with its final counts
func (r *ImportRun) Complete(merged, quarantined, skipped int, errors []ImportErrorDetail) error {
	if r.Status != ImportStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", r.Status))
	}
	r.Status = ImportStatusCompleted
	r.MergedOrders = merged
	r.QuarantinedCount = quarantined
	r.SkippedRows = skipped
	r.ErrorDetails = errors
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// Fail marks the run as failed
func (r *ImportRun) Fail(errors []ImportErrorDetail) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", r.Status))
	}
	r.Status = ImportStatusFailed
	r.ErrorDetails = errors
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// HasErrors returns true if any per-row problems were recorded
func (r *ImportRun) HasErrors() bool {
	return len(r.ErrorDetails) > 0
}
