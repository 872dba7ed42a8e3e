package disputeapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared"
	"github.com/riskledger/backend/internal/infrastructure/cache"
	"github.com/riskledger/backend/internal/infrastructure/config"
)

// Mock implementations

type mockRecordRepository struct {
	mock.Mock
}

func (m *mockRecordRepository) FindByOrderNos(ctx context.Context, ownerID uuid.UUID, orderNos []string) (map[string]*dispute.DisputeRecord, error) {
	args := m.Called(ctx, ownerID, orderNos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*dispute.DisputeRecord), args.Error(1)
}

func (m *mockRecordRepository) FindByOrderNo(ctx context.Context, ownerID uuid.UUID, orderNo string) (*dispute.DisputeRecord, error) {
	args := m.Called(ctx, ownerID, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.DisputeRecord), args.Error(1)
}

func (m *mockRecordRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[*dispute.DisputeRecord], error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(shared.Paginated[*dispute.DisputeRecord]), args.Error(1)
}

func (m *mockRecordRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecordRepository) UpsertBatch(ctx context.Context, records []*dispute.DisputeRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *mockRecordRepository) PurgeForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// Test helpers

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{
		ChunkSize:      500,
		MaxRowErrors:   100,
		LockTTL:        time.Minute,
		MergeRetries:   2,
		MergeRetryWait: time.Millisecond,
	}
}

func newTestReconciler(repo *mockRecordRepository) *Reconciler {
	return NewReconciler(repo, cache.NewInMemoryOwnerLocker(), zap.NewNop(), testImportConfig())
}

func classifiedTestOrder(t *testing.T, orderNo string, tags ...string) *dispute.CanonicalOrder {
	t.Helper()
	order, err := dispute.NewCanonicalOrder(orderNo)
	require.NoError(t, err)
	order.SetOccurredAt(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), "")
	for _, tag := range tags {
		order.Tags.Add(tag)
	}
	order.ApplyClassification(dispute.Classify(order.Tags, false, dispute.CategoryAuto))
	return order
}

// ============================================================================
// Reconcile
// ============================================================================

func TestReconcile_CreatesNewRecords(t *testing.T) {
	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, []string{"#1001", "#1002"}).
		Return(map[string]*dispute.DisputeRecord{}, nil)

	var upserted []*dispute.DisputeRecord
	repo.On("UpsertBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			upserted = args.Get(1).([]*dispute.DisputeRecord)
		}).
		Return(nil)

	ownerID := uuid.New()
	orders := []*dispute.CanonicalOrder{
		classifiedTestOrder(t, "#1001", "chargeback"),
		classifiedTestOrder(t, "#1002", "vip"),
	}

	result, err := newTestReconciler(repo).Reconcile(context.Background(), ownerID, orders, false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Merged)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Quarantined)

	require.Len(t, upserted, 2)
	assert.Equal(t, ownerID, upserted[0].OwnerID)
	assert.Equal(t, dispute.DisputeStateNeedsResponse, upserted[0].LatestDisputeState)
	repo.AssertExpectations(t)
}

func TestReconcile_UpdatesExistingRecords(t *testing.T) {
	ownerID := uuid.New()

	existing, err := dispute.NewDisputeRecord(ownerID, classifiedTestOrder(t, "#1001", "chargeback"))
	require.NoError(t, err)

	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, ownerID, []string{"#1001"}).
		Return(map[string]*dispute.DisputeRecord{"#1001": existing}, nil)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	result, err := newTestReconciler(repo).Reconcile(
		context.Background(), ownerID,
		[]*dispute.CanonicalOrder{classifiedTestOrder(t, "#1001", "won")},
		false)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, dispute.DisputeStateWon, existing.LatestDisputeState)
}

func TestReconcile_CountsQuarantined(t *testing.T) {
	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]*dispute.DisputeRecord{}, nil)

	var upserted []*dispute.DisputeRecord
	repo.On("UpsertBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			upserted = args.Get(1).([]*dispute.DisputeRecord)
		}).
		Return(nil)

	// no tags and no explicit category: quarantined for missing tags
	result, err := newTestReconciler(repo).Reconcile(
		context.Background(), uuid.New(),
		[]*dispute.CanonicalOrder{classifiedTestOrder(t, "#1001")},
		false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Quarantined)
	require.Len(t, upserted, 1)
	assert.True(t, upserted[0].IsQuarantined())
	assert.Equal(t, dispute.DisputeStateNone, upserted[0].LatestDisputeState)
}

func TestReconcile_RecoveryAgainstPreviousSnapshot(t *testing.T) {
	ownerID := uuid.New()

	// previously quarantined record remembering DISPUTE_OPEN
	quarantined := classifiedTestOrder(t, "#1001")
	quarantined.Quarantine([]string{"Missing Tags"}, dispute.CategoryDisputeOpen)
	existing, err := dispute.NewDisputeRecord(ownerID, quarantined)
	require.NoError(t, err)

	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, ownerID, mock.Anything).
		Return(map[string]*dispute.DisputeRecord{"#1001": existing}, nil)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	// clean re-import with a neutral tag recovers via the remembered category
	result, err := newTestReconciler(repo).Reconcile(
		context.Background(), ownerID,
		[]*dispute.CanonicalOrder{classifiedTestOrder(t, "#1001", "vip")},
		false)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Quarantined)
	assert.Equal(t, dispute.CategoryDisputeOpen, existing.Snapshot.Category)
	assert.Equal(t, dispute.DisputeStateNeedsResponse, existing.LatestDisputeState)
}

func TestReconcile_EmptyBatch(t *testing.T) {
	repo := new(mockRecordRepository)

	result, err := newTestReconciler(repo).Reconcile(context.Background(), uuid.New(), nil, false)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Merged)
	repo.AssertNotCalled(t, "FindByOrderNos")
	repo.AssertNotCalled(t, "UpsertBatch")
}

func TestReconcile_NilOwner(t *testing.T) {
	repo := new(mockRecordRepository)

	_, err := newTestReconciler(repo).Reconcile(context.Background(), uuid.Nil, nil, false)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_OWNER", domainErr.Code)
}

func TestReconcile_LockContention(t *testing.T) {
	repo := new(mockRecordRepository)
	locker := cache.NewInMemoryOwnerLocker()
	reconciler := NewReconciler(repo, locker, zap.NewNop(), testImportConfig())

	ownerID := uuid.New()
	require.NoError(t, locker.Acquire(context.Background(), ownerID.String(), time.Minute))

	_, err := reconciler.Reconcile(
		context.Background(), ownerID,
		[]*dispute.CanonicalOrder{classifiedTestOrder(t, "#1001", "fraud")},
		false)

	assert.ErrorIs(t, err, shared.ErrOwnerLocked)
	repo.AssertNotCalled(t, "FindByOrderNos")
}

func TestReconcile_ReleasesLockAfterRun(t *testing.T) {
	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]*dispute.DisputeRecord{}, nil)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	locker := cache.NewInMemoryOwnerLocker()
	reconciler := NewReconciler(repo, locker, zap.NewNop(), testImportConfig())

	ownerID := uuid.New()
	_, err := reconciler.Reconcile(
		context.Background(), ownerID,
		[]*dispute.CanonicalOrder{classifiedTestOrder(t, "#1001", "fraud")},
		false)
	require.NoError(t, err)

	assert.NoError(t, locker.Acquire(context.Background(), ownerID.String(), time.Minute))
}

func TestReconcile_RetriesTransientErrors(t *testing.T) {
	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset")).Once()
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]*dispute.DisputeRecord{}, nil).Once()
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	result, err := newTestReconciler(repo).Reconcile(
		context.Background(), uuid.New(),
		[]*dispute.CanonicalOrder{classifiedTestOrder(t, "#1001", "fraud")},
		false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	repo.AssertExpectations(t)
}

func TestReconcile_RetryKeepsQuarantineMemory(t *testing.T) {
	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]*dispute.DisputeRecord{}, nil)

	var upserted []*dispute.DisputeRecord
	repo.On("UpsertBatch", mock.Anything, mock.Anything).
		Return(errors.New("connection reset")).Once()
	repo.On("UpsertBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			upserted = args.Get(1).([]*dispute.DisputeRecord)
		}).
		Return(nil).Once()

	// chargeback tag with a broken email: quarantined, remembering DISPUTE_OPEN
	order := classifiedTestOrder(t, "#1001", "chargeback")
	order.Customer.Email = "not-an-email"

	result, err := newTestReconciler(repo).Reconcile(
		context.Background(), uuid.New(),
		[]*dispute.CanonicalOrder{order},
		false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Quarantined)
	require.Len(t, upserted, 1)
	assert.True(t, upserted[0].IsQuarantined())
	// the retried pass must not replace the memory with INVALID
	assert.Equal(t, dispute.CategoryDisputeOpen, upserted[0].Snapshot.OriginalCategory)
	repo.AssertExpectations(t)
}

func TestReconcile_FoldsDuplicateOrderNumbers(t *testing.T) {
	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]*dispute.DisputeRecord{}, nil)

	var upserted []*dispute.DisputeRecord
	repo.On("UpsertBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			upserted = args.Get(1).([]*dispute.DisputeRecord)
		}).
		Return(nil)

	// overlapping feed pages can deliver the same order twice in one batch
	orders := []*dispute.CanonicalOrder{
		classifiedTestOrder(t, "#1001", "chargeback"),
		classifiedTestOrder(t, "#1001", "won"),
	}

	result, err := newTestReconciler(repo).Reconcile(context.Background(), uuid.New(), orders, false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Merged)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)

	// one record per order number, carrying both merges
	require.Len(t, upserted, 1)
	assert.Equal(t, dispute.DisputeStateWon, upserted[0].LatestDisputeState)
	assert.Equal(t, dispute.CategoryDisputeWon, upserted[0].Snapshot.Category)
}

func TestReconcile_GivesUpAfterRetries(t *testing.T) {
	transient := errors.New("connection reset")
	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, transient)

	_, err := newTestReconciler(repo).Reconcile(
		context.Background(), uuid.New(),
		[]*dispute.CanonicalOrder{classifiedTestOrder(t, "#1001", "fraud")},
		false)

	assert.ErrorIs(t, err, transient)
	// initial attempt plus MergeRetries retries
	repo.AssertNumberOfCalls(t, "FindByOrderNos", 3)
}

func TestReconcile_DomainErrorsAreFinal(t *testing.T) {
	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("BROKEN", "no retry"))

	_, err := newTestReconciler(repo).Reconcile(
		context.Background(), uuid.New(),
		[]*dispute.CanonicalOrder{classifiedTestOrder(t, "#1001", "fraud")},
		false)

	assert.Error(t, err)
	repo.AssertNumberOfCalls(t, "FindByOrderNos", 1)
}

func TestReconcile_ChunksLargeBatches(t *testing.T) {
	cfg := testImportConfig()
	cfg.ChunkSize = 2

	repo := new(mockRecordRepository)
	repo.On("FindByOrderNos", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]*dispute.DisputeRecord{}, nil)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	reconciler := NewReconciler(repo, cache.NewInMemoryOwnerLocker(), zap.NewNop(), cfg)

	orders := []*dispute.CanonicalOrder{
		classifiedTestOrder(t, "#1001", "fraud"),
		classifiedTestOrder(t, "#1002", "fraud"),
		classifiedTestOrder(t, "#1003", "fraud"),
	}
	result, err := reconciler.Reconcile(context.Background(), uuid.New(), orders, false)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Created)
	repo.AssertNumberOfCalls(t, "FindByOrderNos", 2)
	repo.AssertNumberOfCalls(t, "UpsertBatch", 2)
}
