package bulk

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskledger/backend/internal/domain/shared"
)

func createTestRun(t *testing.T) *ImportRun {
	t.Helper()
	run, err := NewImportRun(uuid.New(), ImportSourceCSV, "orders_export.csv")
	require.NoError(t, err)
	return run
}

func TestNewImportRun(t *testing.T) {
	run := createTestRun(t)

	assert.Equal(t, ImportSourceCSV, run.Source)
	assert.Equal(t, "orders_export.csv", run.FileName)
	assert.Equal(t, ImportStatusPending, run.Status)
	assert.Empty(t, run.ErrorDetails)
	assert.Nil(t, run.StartedAt)
	assert.Nil(t, run.CompletedAt)
}

func TestNewImportRun_Invalid(t *testing.T) {
	var domainErr *shared.DomainError

	_, err := NewImportRun(uuid.Nil, ImportSourceCSV, "x.csv")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_OWNER", domainErr.Code)

	_, err = NewImportRun(uuid.New(), ImportSource("ftp"), "x.csv")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SOURCE", domainErr.Code)
}

func TestImportStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status     ImportStatus
		isTerminal bool
	}{
		{ImportStatusPending, false},
		{ImportStatusProcessing, false},
		{ImportStatusCompleted, true},
		{ImportStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

func TestImportRun_Lifecycle(t *testing.T) {
	run := createTestRun(t)

	require.NoError(t, run.StartProcessing(42))
	assert.Equal(t, ImportStatusProcessing, run.Status)
	assert.Equal(t, 42, run.TotalOrders)
	assert.NotNil(t, run.StartedAt)

	errs := []ImportErrorDetail{{Line: 7, OrderNo: "#1007", Code: "ROW_INVALID", Message: "bad row"}}
	require.NoError(t, run.Complete(40, 3, 2, errs))
	assert.Equal(t, ImportStatusCompleted, run.Status)
	assert.Equal(t, 40, run.MergedOrders)
	assert.Equal(t, 3, run.QuarantinedCount)
	assert.Equal(t, 2, run.SkippedRows)
	assert.NotNil(t, run.CompletedAt)
	assert.True(t, run.HasErrors())
}

func TestImportRun_StartProcessing_InvalidState(t *testing.T) {
	run := createTestRun(t)
	require.NoError(t, run.StartProcessing(1))

	err := run.StartProcessing(1)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestImportRun_StartProcessing_NegativeTotal(t *testing.T) {
	run := createTestRun(t)

	err := run.StartProcessing(-1)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TOTAL", domainErr.Code)
}

func TestImportRun_Complete_RequiresProcessing(t *testing.T) {
	run := createTestRun(t)

	err := run.Complete(1, 0, 0, nil)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestImportRun_Fail(t *testing.T) {
	run := createTestRun(t)
	require.NoError(t, run.StartProcessing(10))

	errs := []ImportErrorDetail{{Line: 1, Code: "MISSING_COLUMN", Message: "missing Name column"}}
	require.NoError(t, run.Fail(errs))
	assert.Equal(t, ImportStatusFailed, run.Status)
	assert.NotNil(t, run.CompletedAt)

	// terminal states reject another failure
	err := run.Fail(nil)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestImportRun_FailFromPending(t *testing.T) {
	run := createTestRun(t)
	require.NoError(t, run.Fail(nil))
	assert.Equal(t, ImportStatusFailed, run.Status)
}
