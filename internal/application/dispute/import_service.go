package disputeapp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riskledger/backend/internal/domain/bulk"
	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared"
	"github.com/riskledger/backend/internal/domain/shared/valueobject"
	csvimport "github.com/riskledger/backend/internal/infrastructure/import"
)

// ImportResult is the envelope returned for one CSV import
type ImportResult struct {
	RunID       uuid.UUID            `json:"run_id"`
	TotalOrders int                  `json:"total_orders"`
	Merged      int                  `json:"merged"`
	Created     int                  `json:"created"`
	Updated     int                  `json:"updated"`
	Quarantined int                  `json:"quarantined"`
	SkippedRows int                  `json:"skipped_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// ImportService turns a CSV export into canonical orders and reconciles them
// into the ledger
type ImportService struct {
	reconciler *Reconciler
	runRepo    bulk.ImportRunRepository
	logger     *zap.Logger
	maxErrors  int
}

// NewImportService creates a new ImportService
func NewImportService(reconciler *Reconciler, runRepo bulk.ImportRunRepository, logger *zap.Logger, maxErrors int) *ImportService {
	return &ImportService{
		reconciler: reconciler,
		runRepo:    runRepo,
		logger:     logger.Named("csv_import"),
		maxErrors:  maxErrors,
	}
}

// ImportCSV runs the full CSV pipeline for one owner: parse, group, classify,
// reconcile. operatorCategory applies to every order in the batch; AUTO
// falls back to tag detection per order. A missing identity column fails the
// whole batch.
func (s *ImportService) ImportCSV(ctx context.Context, ownerID uuid.UUID, fileName string, reader io.Reader, operatorCategory dispute.Category) (*ImportResult, error) {
	if !operatorCategory.IsSelectable() {
		return nil, shared.NewDomainError("INVALID_CATEGORY",
			fmt.Sprintf("Category %q cannot be selected for import", operatorCategory))
	}

	run, err := bulk.NewImportRun(ownerID, bulk.ImportSourceCSV, fileName)
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	result, err := s.runImport(ctx, ownerID, reader, operatorCategory, run)
	if err != nil {
		_ = run.Fail([]bulk.ImportErrorDetail{{Code: "IMPORT_FAILED", Message: err.Error()}})
		if updateErr := s.runRepo.Update(ctx, run); updateErr != nil {
			s.logger.Warn("failed to record import failure", zap.Error(updateErr))
		}
		return nil, err
	}

	result.RunID = run.ID
	return result, nil
}

func (s *ImportService) runImport(ctx context.Context, ownerID uuid.UUID, reader io.Reader, operatorCategory dispute.Category, run *bulk.ImportRun) (*ImportResult, error) {
	parser, err := csvimport.NewCSVParser(reader)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	columns, err := csvimport.NewColumnMap(parser.Headers())
	if err != nil {
		return nil, err
	}

	grouper := csvimport.NewRowGrouper(columns)
	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		grouper.Add(row)
	}

	groups := grouper.Groups()
	if err := run.StartProcessing(len(groups)); err != nil {
		return nil, err
	}

	errorCollection := csvimport.NewErrorCollection(s.maxErrors)
	orders := make([]*dispute.CanonicalOrder, 0, len(groups))
	for _, group := range groups {
		order, err := mapGroupedRow(columns, group)
		if err != nil {
			errorCollection.Add(csvimport.NewRowError(
				group.First.LineNumber, csvimport.ColOrderNo,
				csvimport.ErrCodeImportValidation, err.Error()))
			continue
		}
		order.ApplyClassification(dispute.Classify(order.Tags, order.RiskFlag, operatorCategory))
		orders = append(orders, order)
	}

	reconcileResult, err := s.reconciler.Reconcile(ctx, ownerID, orders, operatorCategory.IsExplicit())
	if err != nil {
		return nil, err
	}

	if err := run.Complete(reconcileResult.Merged, reconcileResult.Quarantined, grouper.SkippedRows(), runErrorDetails(errorCollection)); err != nil {
		return nil, err
	}
	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.Warn("failed to record import completion", zap.Error(err))
	}

	return &ImportResult{
		TotalOrders: len(groups),
		Merged:      reconcileResult.Merged,
		Created:     reconcileResult.Created,
		Updated:     reconcileResult.Updated,
		Quarantined: reconcileResult.Quarantined,
		SkippedRows: grouper.SkippedRows(),
		Errors:      errorCollection.Errors(),
		IsTruncated: errorCollection.Truncated(),
		TotalErrors: errorCollection.TotalCount(),
	}, nil
}

// mapGroupedRow reshapes one grouped CSV order into the canonical shape.
// Classification and validation run downstream.
func mapGroupedRow(columns *csvimport.ColumnMap, group *csvimport.GroupedRow) (*dispute.CanonicalOrder, error) {
	order, err := dispute.NewCanonicalOrder(group.OrderNo)
	if err != nil {
		return nil, err
	}

	fields := group.First.RawFields
	rawCreatedAt := columns.Get(fields, csvimport.ColCreatedAt)
	order.SetOccurredAt(parseCreatedAt(rawCreatedAt), rawCreatedAt)

	order.Customer = dispute.CustomerInfo{
		Email: columns.Get(fields, csvimport.ColEmail),
		Location: joinNonEmpty(
			columns.Get(fields, csvimport.ColShippingCity),
			columns.Get(fields, csvimport.ColShippingProvince),
			columns.Get(fields, csvimport.ColShippingCountry),
		),
	}

	if amount := columns.Get(fields, csvimport.ColTotal); amount != "" {
		currency := valueobject.Currency(strings.ToUpper(columns.Get(fields, csvimport.ColCurrency)))
		if money, err := valueobject.NewMoneyFromString(amount, currency); err == nil {
			order.Total = money
		}
	}

	order.PaymentState = dispute.ParsePaymentState(columns.Get(fields, csvimport.ColFinancialStatus))
	order.FulfillmentState = dispute.ParseFulfillmentState(columns.Get(fields, csvimport.ColFulfillmentStatus))
	order.Tags = dispute.ParseTagList(columns.Get(fields, csvimport.ColTags))
	order.RiskFlag = strings.EqualFold(columns.Get(fields, csvimport.ColRiskLevel), "high")
	order.ShippingMethod = columns.Get(fields, csvimport.ColShippingMethod)
	order.Cancelled = columns.Get(fields, csvimport.ColCancelledAt) != ""
	order.ItemsCount = group.ItemsCount
	order.ExtraFields = columns.ExtraFields(fields)

	return order, nil
}

// createdAtLayouts are tried in order when parsing the timestamp column
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

func parseCreatedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func runErrorDetails(collection *csvimport.ErrorCollection) []bulk.ImportErrorDetail {
	rowErrors := collection.Errors()
	details := make([]bulk.ImportErrorDetail, len(rowErrors))
	for i, rowErr := range rowErrors {
		details[i] = bulk.ImportErrorDetail{
			Line:    rowErr.Row,
			Code:    rowErr.Code,
			Message: rowErr.Message,
		}
	}
	return details
}
