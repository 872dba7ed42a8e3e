package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riskledger/backend/internal/domain/shared"
	"github.com/riskledger/backend/internal/interfaces/http/dto"
)

// OwnerIDHeader carries the merchant scope for every ledger request.
// The owner is always explicit, never inferred from ambient state.
const OwnerIDHeader = "X-Owner-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getOwnerID extracts and validates the owner ID header
func getOwnerID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(OwnerIDHeader)
	if raw == "" {
		return uuid.Nil, errors.New("missing " + OwnerIDHeader + " header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid " + OwnerIDHeader + " header")
	}
	if id == uuid.Nil {
		return uuid.Nil, errors.New(OwnerIDHeader + " cannot be the nil UUID")
	}
	return id, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// DomainError maps a domain error onto the wire, deriving the status from
// the error code; unknown errors become a 500
func (h *BaseHandler) DomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "internal server error")
}
