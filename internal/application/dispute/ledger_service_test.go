package disputeapp

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared"
)

func newTestLedgerService(recordRepo *mockRecordRepository, runRepo *mockImportRunRepository) *LedgerService {
	return NewLedgerService(recordRepo, runRepo, zap.NewNop())
}

func TestApproveRecord_RecoversQuarantinedRecord(t *testing.T) {
	ownerID := uuid.New()

	order := classifiedTestOrder(t, "#1001", "chargeback")
	order.Quarantine([]string{"Invalid Email"}, dispute.CategoryDisputeOpen)
	record, err := dispute.NewDisputeRecord(ownerID, order)
	require.NoError(t, err)

	recordRepo := new(mockRecordRepository)
	recordRepo.On("FindByOrderNo", mock.Anything, ownerID, "#1001").Return(record, nil)
	recordRepo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	service := newTestLedgerService(recordRepo, new(mockImportRunRepository))

	approved, err := service.ApproveRecord(context.Background(), ownerID, "#1001")
	require.NoError(t, err)

	assert.Equal(t, dispute.CategoryDisputeOpen, approved.Snapshot.Category)
	assert.Empty(t, approved.Snapshot.ValidationErrors)
	// the rollup escalates along with the recovered snapshot
	assert.Equal(t, dispute.DisputeStateNeedsResponse, approved.LatestDisputeState)
	assert.Equal(t, dispute.RiskLabelHigh, approved.LatestRiskLabel)
	recordRepo.AssertExpectations(t)
}

func TestApproveRecord_AmbiguousTags(t *testing.T) {
	ownerID := uuid.New()

	order := classifiedTestOrder(t, "#1001", "vip")
	order.Quarantine([]string{"Invalid Email"}, dispute.CategoryAuto)
	record, err := dispute.NewDisputeRecord(ownerID, order)
	require.NoError(t, err)

	recordRepo := new(mockRecordRepository)
	recordRepo.On("FindByOrderNo", mock.Anything, ownerID, "#1001").Return(record, nil)

	service := newTestLedgerService(recordRepo, new(mockImportRunRepository))

	_, err = service.ApproveRecord(context.Background(), ownerID, "#1001")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "AMBIGUOUS_RECOVERY", domainErr.Code)
	recordRepo.AssertNotCalled(t, "UpsertBatch")
}

func TestApproveRecord_NotQuarantined(t *testing.T) {
	ownerID := uuid.New()

	record, err := dispute.NewDisputeRecord(ownerID, classifiedTestOrder(t, "#1001", "chargeback"))
	require.NoError(t, err)

	recordRepo := new(mockRecordRepository)
	recordRepo.On("FindByOrderNo", mock.Anything, ownerID, "#1001").Return(record, nil)

	service := newTestLedgerService(recordRepo, new(mockImportRunRepository))

	_, err = service.ApproveRecord(context.Background(), ownerID, "#1001")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_QUARANTINED", domainErr.Code)
}

func TestApproveRecord_NotFound(t *testing.T) {
	recordRepo := new(mockRecordRepository)
	recordRepo.On("FindByOrderNo", mock.Anything, mock.Anything, "#9999").
		Return(nil, shared.ErrNotFound)

	service := newTestLedgerService(recordRepo, new(mockImportRunRepository))

	_, err := service.ApproveRecord(context.Background(), uuid.New(), "#9999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetRecord_EmptyOrderNo(t *testing.T) {
	service := newTestLedgerService(new(mockRecordRepository), new(mockImportRunRepository))

	_, err := service.GetRecord(context.Background(), uuid.New(), "")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ORDER_NO", domainErr.Code)
}

func TestPurgeRecords(t *testing.T) {
	ownerID := uuid.New()

	recordRepo := new(mockRecordRepository)
	recordRepo.On("PurgeForOwner", mock.Anything, ownerID).Return(int64(7), nil)

	service := newTestLedgerService(recordRepo, new(mockImportRunRepository))

	removed, err := service.PurgeRecords(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
}

func TestPurgeRecords_NilOwner(t *testing.T) {
	service := newTestLedgerService(new(mockRecordRepository), new(mockImportRunRepository))

	_, err := service.PurgeRecords(context.Background(), uuid.Nil)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_OWNER", domainErr.Code)
}

func TestListRecords_NilOwner(t *testing.T) {
	service := newTestLedgerService(new(mockRecordRepository), new(mockImportRunRepository))

	_, err := service.ListRecords(context.Background(), uuid.Nil, shared.DefaultFilter())
	assert.Error(t, err)
}
