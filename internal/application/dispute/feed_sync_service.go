package disputeapp

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riskledger/backend/internal/domain/bulk"
	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/infrastructure/feed"
)

// SyncResult is the envelope returned for one feed sync
type SyncResult struct {
	RunID       uuid.UUID `json:"run_id"`
	TotalOrders int       `json:"total_orders"`
	Merged      int       `json:"merged"`
	Created     int       `json:"created"`
	Updated     int       `json:"updated"`
	Quarantined int       `json:"quarantined"`
	SkippedRows int       `json:"skipped_rows"`
}

// FeedSyncService reconciles already-fetched live feed nodes into the ledger.
// Transport is upstream; the pipeline from the canonical shape on is shared
// with CSV imports.
type FeedSyncService struct {
	reconciler *Reconciler
	runRepo    bulk.ImportRunRepository
	logger     *zap.Logger
}

// NewFeedSyncService creates a new FeedSyncService
func NewFeedSyncService(reconciler *Reconciler, runRepo bulk.ImportRunRepository, logger *zap.Logger) *FeedSyncService {
	return &FeedSyncService{
		reconciler: reconciler,
		runRepo:    runRepo,
		logger:     logger.Named("feed_sync"),
	}
}

// SyncNodes maps feed nodes to canonical orders, classifies them in auto
// mode and reconciles the batch. Nodes without an order name carry no
// identity and are skipped.
func (s *FeedSyncService) SyncNodes(ctx context.Context, ownerID uuid.UUID, nodes []feed.OrderNode) (*SyncResult, error) {
	run, err := bulk.NewImportRun(ownerID, bulk.ImportSourceFeed, "")
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	result, err := s.runSync(ctx, ownerID, nodes, run)
	if err != nil {
		_ = run.Fail([]bulk.ImportErrorDetail{{Code: "SYNC_FAILED", Message: err.Error()}})
		if updateErr := s.runRepo.Update(ctx, run); updateErr != nil {
			s.logger.Warn("failed to record sync failure", zap.Error(updateErr))
		}
		return nil, err
	}

	result.RunID = run.ID
	return result, nil
}

func (s *FeedSyncService) runSync(ctx context.Context, ownerID uuid.UUID, nodes []feed.OrderNode, run *bulk.ImportRun) (*SyncResult, error) {
	skipped := 0
	orders := make([]*dispute.CanonicalOrder, 0, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		order, err := feed.MapOrderNode(node)
		if err != nil {
			skipped++
			continue
		}
		order.ApplyClassification(dispute.Classify(order.Tags, node.NativeRiskHint(), dispute.CategoryAuto))
		orders = append(orders, order)
	}

	if err := run.StartProcessing(len(orders)); err != nil {
		return nil, err
	}

	reconcileResult, err := s.reconciler.Reconcile(ctx, ownerID, orders, false)
	if err != nil {
		return nil, err
	}

	if err := run.Complete(reconcileResult.Merged, reconcileResult.Quarantined, skipped, nil); err != nil {
		return nil, err
	}
	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.Warn("failed to record sync completion", zap.Error(err))
	}

	return &SyncResult{
		TotalOrders: len(orders),
		Merged:      reconcileResult.Merged,
		Created:     reconcileResult.Created,
		Updated:     reconcileResult.Updated,
		Quarantined: reconcileResult.Quarantined,
		SkippedRows: skipped,
	}, nil
}
