package disputeapp

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riskledger/backend/internal/domain/bulk"
	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared"
)

// LedgerService serves reads and the manual operations on persisted records
type LedgerService struct {
	recordRepo dispute.RecordRepository
	runRepo    bulk.ImportRunRepository
	logger     *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(recordRepo dispute.RecordRepository, runRepo bulk.ImportRunRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		recordRepo: recordRepo,
		runRepo:    runRepo,
		logger:     logger.Named("ledger"),
	}
}

// ListRecords returns a page of records for an owner
func (s *LedgerService) ListRecords(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[*dispute.DisputeRecord], error) {
	if ownerID == uuid.Nil {
		return shared.Paginated[*dispute.DisputeRecord]{}, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	return s.recordRepo.FindAllForOwner(ctx, ownerID, filter)
}

// GetRecord returns one record by order number
func (s *LedgerService) GetRecord(ctx context.Context, ownerID uuid.UUID, orderNo string) (*dispute.DisputeRecord, error) {
	if orderNo == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NO", "Order number cannot be empty")
	}
	return s.recordRepo.FindByOrderNo(ctx, ownerID, orderNo)
}

// ApproveRecord is the manual recovery path for a quarantined order. It
// refuses with AMBIGUOUS_RECOVERY when the tags cannot disambiguate a
// category; the operator must supply a tag first.
func (s *LedgerService) ApproveRecord(ctx context.Context, ownerID uuid.UUID, orderNo string) (*dispute.DisputeRecord, error) {
	record, err := s.recordRepo.FindByOrderNo(ctx, ownerID, orderNo)
	if err != nil {
		return nil, err
	}

	if err := record.Snapshot.Approve(); err != nil {
		return nil, err
	}

	// fold the recovered snapshot back into the record's latest state
	snapshot := record.Snapshot
	record.Merge(&snapshot)

	if err := s.recordRepo.UpsertBatch(ctx, []*dispute.DisputeRecord{record}); err != nil {
		return nil, err
	}

	s.logger.Info("record approved",
		zap.String("owner_id", ownerID.String()),
		zap.String("order_no", orderNo),
		zap.String("category", record.Snapshot.Category.String()))

	return record, nil
}

// PurgeRecords deletes every record for an owner. The purge is total, there
// is no partial delete.
func (s *LedgerService) PurgeRecords(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if ownerID == uuid.Nil {
		return 0, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	removed, err := s.recordRepo.PurgeForOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("records purged",
		zap.String("owner_id", ownerID.String()),
		zap.Int64("removed", removed))
	return removed, nil
}

// ListImportRuns returns a page of import runs for an owner
func (s *LedgerService) ListImportRuns(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[*bulk.ImportRun], error) {
	if ownerID == uuid.Nil {
		return shared.Paginated[*bulk.ImportRun]{}, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	return s.runRepo.FindAllForOwner(ctx, ownerID, filter)
}
