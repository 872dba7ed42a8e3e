package handler

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	disputeapp "github.com/riskledger/backend/internal/application/dispute"
	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared"
	csvimport "github.com/riskledger/backend/internal/infrastructure/import"
	"github.com/riskledger/backend/internal/interfaces/http/dto"
)

// LedgerHandler serves the order risk/dispute ledger endpoints
type LedgerHandler struct {
	BaseHandler
	importService *disputeapp.ImportService
	syncService   *disputeapp.FeedSyncService
	ledgerService *disputeapp.LedgerService
	logger        *zap.Logger
	maxFileSize   int64
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(
	importService *disputeapp.ImportService,
	syncService *disputeapp.FeedSyncService,
	ledgerService *disputeapp.LedgerService,
	logger *zap.Logger,
	maxFileSize int64,
) *LedgerHandler {
	return &LedgerHandler{
		importService: importService,
		syncService:   syncService,
		ledgerService: ledgerService,
		logger:        logger.Named("ledger_handler"),
		maxFileSize:   maxFileSize,
	}
}

// RegisterRoutes registers the ledger routes on the API group
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("/import", h.ImportCSV)
		orders.POST("/sync", h.SyncFeed)
		orders.GET("", h.ListRecords)
		orders.GET("/:orderNo", h.GetRecord)
		orders.POST("/:orderNo/approve", h.ApproveRecord)
		orders.DELETE("", h.PurgeRecords)
	}
	rg.GET("/import-runs", h.ListImportRuns)
}

// ImportCSV ingests a CSV order export for the owner.
// Multipart form: "file" is the export, "category" optionally forces a
// bucket for the whole batch (default AUTO). A JSON body with a base64
// "content" field is accepted as an alternative to the multipart upload.
func (h *LedgerHandler) ImportCSV(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	if strings.HasPrefix(c.ContentType(), "application/json") {
		h.importCSVFromJSON(c, ownerID)
		return
	}

	var form dto.ImportCSVForm
	if err := c.ShouldBind(&form); err != nil {
		h.BadRequest(c, "invalid category: "+err.Error())
		return
	}
	category := dispute.CategoryAuto
	if form.Category != "" {
		category = dispute.Category(form.Category)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "missing file upload")
		return
	}
	if fileHeader.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "cannot read file upload")
		return
	}
	defer file.Close()

	result, err := h.importService.ImportCSV(c.Request.Context(), ownerID, fileHeader.Filename, file, category)
	if err != nil {
		if csvimport.IsMissingColumn(err) {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeMissingColumn, err.Error())
			return
		}
		h.importError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *LedgerHandler) importCSVFromJSON(c *gin.Context, ownerID uuid.UUID) {
	var req dto.ImportCSVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		h.BadRequest(c, "content must be base64-encoded")
		return
	}
	if int64(len(content)) > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum allowed size")
		return
	}

	category := dispute.CategoryAuto
	if req.Category != "" {
		category = dispute.Category(req.Category)
	}

	result, err := h.importService.ImportCSV(c.Request.Context(), ownerID, req.FileName, bytes.NewReader(content), category)
	if err != nil {
		if csvimport.IsMissingColumn(err) {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeMissingColumn, err.Error())
			return
		}
		h.importError(c, err)
		return
	}

	h.Success(c, result)
}

// SyncFeed reconciles a batch of already-fetched feed nodes for the owner
func (h *LedgerHandler) SyncFeed(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req dto.SyncFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.syncService.SyncNodes(c.Request.Context(), ownerID, req.Orders)
	if err != nil {
		h.importError(c, err)
		return
	}

	h.Success(c, result)
}

// ListRecords returns a page of ledger records for the owner
func (h *LedgerHandler) ListRecords(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req dto.ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	page, err := h.ledgerService.ListRecords(c.Request.Context(), ownerID, req.ToFilter())
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewRecordResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// GetRecord returns one ledger record by order number
func (h *LedgerHandler) GetRecord(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	record, err := h.ledgerService.GetRecord(c.Request.Context(), ownerID, c.Param("orderNo"))
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.Success(c, dto.NewRecordResponse(record))
}

// ApproveRecord manually recovers a quarantined order. Fails with
// AMBIGUOUS_RECOVERY when the tags cannot disambiguate a category.
func (h *LedgerHandler) ApproveRecord(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	record, err := h.ledgerService.ApproveRecord(c.Request.Context(), ownerID, c.Param("orderNo"))
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.Success(c, dto.NewRecordResponse(record))
}

// PurgeRecords deletes every ledger record for the owner
func (h *LedgerHandler) PurgeRecords(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	removed, err := h.ledgerService.PurgeRecords(c.Request.Context(), ownerID)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.Success(c, dto.PurgeResponse{Removed: removed})
}

// ListImportRuns returns a page of import runs for the owner
func (h *LedgerHandler) ListImportRuns(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if source := c.Query("source"); source != "" {
		filter.Filters["source"] = source
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	page, err := h.ledgerService.ListImportRuns(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewImportRunResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// importError maps pipeline failures, logging unexpected ones
func (h *LedgerHandler) importError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}
	h.logger.Error("import failed", zap.Error(err))
	h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
}
