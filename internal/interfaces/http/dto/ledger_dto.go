package dto

import (
	"time"

	"github.com/riskledger/backend/internal/domain/bulk"
	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared"
	"github.com/riskledger/backend/internal/infrastructure/feed"
)

// ImportCSVForm carries the multipart form fields next to the uploaded file
type ImportCSVForm struct {
	Category string `form:"category" binding:"omitempty,oneof=AUTO RISK DISPUTE_OPEN DISPUTE_SUBMITTED DISPUTE_WON DISPUTE_LOST"`
}

// ImportCSVRequest is the JSON alternative to the multipart upload: the CSV
// body arrives base64-encoded
type ImportCSVRequest struct {
	FileName string `json:"file_name" binding:"omitempty,max=255"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"omitempty,oneof=AUTO RISK DISPUTE_OPEN DISPUTE_SUBMITTED DISPUTE_WON DISPUTE_LOST"`
}

// SyncFeedRequest is the body for a feed sync: nodes already fetched upstream
type SyncFeedRequest struct {
	Orders []feed.OrderNode `json:"orders" binding:"required"`
}

// ListRecordsRequest narrows the record listing
type ListRecordsRequest struct {
	ListRequest
	Category     string `form:"category" binding:"omitempty,oneof=AUTO RISK DISPUTE_OPEN DISPUTE_SUBMITTED DISPUTE_WON DISPUTE_LOST INVALID"`
	DisputeState string `form:"dispute_state" binding:"omitempty,oneof=none open submitted won lost"`
	Quarantined  *bool  `form:"quarantined"`
}

// ToFilter converts the request into a repository filter
func (r *ListRecordsRequest) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 {
		filter.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		filter.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		filter.OrderDir = r.OrderDir
	}
	if r.Category != "" {
		filter.Filters["category"] = r.Category
	}
	if r.DisputeState != "" {
		filter.Filters["dispute_state"] = r.DisputeState
	}
	if r.Quarantined != nil {
		filter.Filters["quarantined"] = *r.Quarantined
	}
	return filter
}

// RecordResponse is the client view of one persisted record
type RecordResponse struct {
	OrderNo        string                 `json:"order_no"`
	DisputeState   string                 `json:"dispute_state"`
	RiskLabel      string                 `json:"risk_label,omitempty"`
	Sources        []string               `json:"sources"`
	Snapshot       dispute.CanonicalOrder `json:"snapshot"`
	LastImportedAt time.Time              `json:"last_imported_at"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// NewRecordResponse maps a domain record to its client view
func NewRecordResponse(r *dispute.DisputeRecord) RecordResponse {
	return RecordResponse{
		OrderNo:        r.OrderNo,
		DisputeState:   r.LatestDisputeState.PersistedLabel(),
		RiskLabel:      string(r.LatestRiskLabel),
		Sources:        r.SourceList(),
		Snapshot:       r.Snapshot,
		LastImportedAt: r.LastImportedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// NewRecordResponses maps a page of domain records
func NewRecordResponses(records []*dispute.DisputeRecord) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, r := range records {
		out[i] = NewRecordResponse(r)
	}
	return out
}

// PurgeResponse reports the result of a total purge
type PurgeResponse struct {
	Removed int64 `json:"removed"`
}

// ImportRunResponse is the client view of one import run
type ImportRunResponse struct {
	ID               string                   `json:"id"`
	Source           string                   `json:"source"`
	FileName         string                   `json:"file_name,omitempty"`
	TotalOrders      int                      `json:"total_orders"`
	MergedOrders     int                      `json:"merged_orders"`
	QuarantinedCount int                      `json:"quarantined_count"`
	SkippedRows      int                      `json:"skipped_rows"`
	Status           string                   `json:"status"`
	ErrorDetails     []bulk.ImportErrorDetail `json:"error_details,omitempty"`
	StartedAt        *time.Time               `json:"started_at,omitempty"`
	CompletedAt      *time.Time               `json:"completed_at,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

// NewImportRunResponse maps a domain import run to its client view
func NewImportRunResponse(r *bulk.ImportRun) ImportRunResponse {
	return ImportRunResponse{
		ID:               r.ID.String(),
		Source:           string(r.Source),
		FileName:         r.FileName,
		TotalOrders:      r.TotalOrders,
		MergedOrders:     r.MergedOrders,
		QuarantinedCount: r.QuarantinedCount,
		SkippedRows:      r.SkippedRows,
		Status:           string(r.Status),
		ErrorDetails:     r.ErrorDetails,
		StartedAt:        r.StartedAt,
		CompletedAt:      r.CompletedAt,
		CreatedAt:        r.CreatedAt,
	}
}

// NewImportRunResponses maps a page of import runs
func NewImportRunResponses(runs []*bulk.ImportRun) []ImportRunResponse {
	out := make([]ImportRunResponse, len(runs))
	for i, r := range runs {
		out[i] = NewImportRunResponse(r)
	}
	return out
}
