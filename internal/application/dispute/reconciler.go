package disputeapp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared"
	"github.com/riskledger/backend/internal/infrastructure/cache"
	"github.com/riskledger/backend/internal/infrastructure/config"
)

// ReconcileResult summarizes one merge pass over a batch
type ReconcileResult struct {
	Merged      int `json:"merged"`
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Quarantined int `json:"quarantined"`
}

// Reconciler folds classified orders into persisted records. It is the only
// writer of dispute records: read existing, run the quarantine transition
// against the previous snapshot, merge, and upsert the whole chunk.
type Reconciler struct {
	recordRepo dispute.RecordRepository
	locker     cache.OwnerLocker
	logger     *zap.Logger
	cfg        config.ImportConfig
}

// NewReconciler creates a new Reconciler
func NewReconciler(
	recordRepo dispute.RecordRepository,
	locker cache.OwnerLocker,
	logger *zap.Logger,
	cfg config.ImportConfig,
) *Reconciler {
	return &Reconciler{
		recordRepo: recordRepo,
		locker:     locker,
		logger:     logger.Named("reconciler"),
		cfg:        cfg,
	}
}

// Reconcile merges a batch of classified orders for one owner.
// explicitCategory marks the batch as carrying an operator-chosen category,
// which waives the missing-tags check. The per-owner lock serializes
// concurrent imports; a held lock fails the batch with ErrOwnerLocked.
func (r *Reconciler) Reconcile(ctx context.Context, ownerID uuid.UUID, orders []*dispute.CanonicalOrder, explicitCategory bool) (*ReconcileResult, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}

	result := &ReconcileResult{}
	if len(orders) == 0 {
		return result, nil
	}

	if err := r.locker.Acquire(ctx, ownerID.String(), r.cfg.LockTTL); err != nil {
		return nil, err
	}
	defer func() {
		if err := r.locker.Release(context.WithoutCancel(ctx), ownerID.String()); err != nil {
			r.logger.Warn("failed to release import lock",
				zap.String("owner_id", ownerID.String()),
				zap.Error(err))
		}
	}()

	for start := 0; start < len(orders); start += r.chunkSize() {
		end := start + r.chunkSize()
		if end > len(orders) {
			end = len(orders)
		}
		if err := r.reconcileChunk(ctx, ownerID, orders[start:end], explicitCategory, result); err != nil {
			return nil, err
		}
	}

	r.logger.Info("batch reconciled",
		zap.String("owner_id", ownerID.String()),
		zap.Int("orders", len(orders)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("quarantined", result.Quarantined))

	return result, nil
}

// reconcileChunk runs read-transition-merge-upsert for one chunk, retrying
// the whole chunk on transient storage failures. Re-applying an already
// merged chunk is a no-op, ranks and source unions are idempotent.
func (r *Reconciler) reconcileChunk(ctx context.Context, ownerID uuid.UUID, orders []*dispute.CanonicalOrder, explicitCategory bool, result *ReconcileResult) error {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MergeRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.cfg.MergeRetryWait):
			}
			r.logger.Warn("retrying chunk merge",
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
		}

		chunkResult, err := r.applyChunk(ctx, ownerID, orders, explicitCategory)
		if err == nil {
			result.Merged += chunkResult.Merged
			result.Created += chunkResult.Created
			result.Updated += chunkResult.Updated
			result.Quarantined += chunkResult.Quarantined
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (r *Reconciler) applyChunk(ctx context.Context, ownerID uuid.UUID, orders []*dispute.CanonicalOrder, explicitCategory bool) (*ReconcileResult, error) {
	orderNos := make([]string, 0, len(orders))
	for _, o := range orders {
		orderNos = append(orderNos, o.OrderNo)
	}

	existing, err := r.recordRepo.FindByOrderNos(ctx, ownerID, orderNos)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	records := make([]*dispute.DisputeRecord, 0, len(orders))
	// a batch can legitimately carry the same order number twice, e.g. from
	// overlapping feed pages; later occurrences fold into the record built
	// for the first so the upsert sees each (owner, order_no) once
	byOrderNo := make(map[string]*dispute.DisputeRecord, len(orders))
	for _, order := range orders {
		record, inBatch := byOrderNo[order.OrderNo]
		if !inBatch {
			record = existing[order.OrderNo]
		}

		var previous *dispute.CanonicalOrder
		if record != nil {
			previous = &record.Snapshot
		}
		dispute.Transition(order, previous, explicitCategory)

		if record != nil {
			record.Merge(order)
			result.Updated++
		} else {
			record, err = dispute.NewDisputeRecord(ownerID, order)
			if err != nil {
				return nil, err
			}
			result.Created++
		}
		if !inBatch {
			byOrderNo[order.OrderNo] = record
			records = append(records, record)
		}
		if order.IsQuarantined() {
			result.Quarantined++
		}
		result.Merged++
	}

	if err := r.recordRepo.UpsertBatch(ctx, records); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Reconciler) chunkSize() int {
	if r.cfg.ChunkSize < 1 {
		return 500
	}
	return r.cfg.ChunkSize
}

// isTransient decides whether a storage error is worth a whole-chunk retry.
// Domain errors and context cancellation are final.
func isTransient(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
