package dto

import "net/http"

// Error code constants, format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Domain error codes surfaced directly to clients
const (
	ErrCodeOwnerLocked       = "OWNER_LOCKED"
	ErrCodeAmbiguousRecovery = "AMBIGUOUS_RECOVERY"
	ErrCodeNotQuarantined    = "NOT_QUARANTINED"
	ErrCodeMissingColumn     = "MISSING_COLUMN"
	ErrCodeDomainNotFound    = "NOT_FOUND"
	ErrCodeInvalidOwner      = "INVALID_OWNER"
	ErrCodeInvalidOrderNo    = "INVALID_ORDER_NO"
	ErrCodeInvalidCategory   = "INVALID_CATEGORY"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeOwnerLocked:       http.StatusConflict,
	ErrCodeAmbiguousRecovery: http.StatusUnprocessableEntity,
	ErrCodeNotQuarantined:    http.StatusUnprocessableEntity,
	ErrCodeMissingColumn:     http.StatusBadRequest,
	ErrCodeDomainNotFound:    http.StatusNotFound,
	ErrCodeInvalidOwner:      http.StatusBadRequest,
	ErrCodeInvalidOrderNo:    http.StatusBadRequest,
	ErrCodeInvalidCategory:   http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code,
// defaulting to 422 for unmapped domain codes
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
