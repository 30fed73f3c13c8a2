package dto

import "net/http"

// Error codes returned in ErrorInfo.Code. Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeStorageUnavailable is used when the database cannot be reached
	ErrCodeStorageUnavailable = "ERR_STORAGE_UNAVAILABLE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidSKU is used when a SKU is empty
	ErrCodeInvalidSKU = "ERR_VALIDATION_SKU"
	// ErrCodeInvalidChannel is used for a channel outside the supported set
	ErrCodeInvalidChannel = "ERR_VALIDATION_CHANNEL"
	// ErrCodeInvalidReason is used for an unknown reallocation reason
	ErrCodeInvalidReason = "ERR_VALIDATION_REASON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
)

// Webhook error codes
const (
	// ErrCodeWebhookNotConfigured is used when no signing secret is configured
	ErrCodeWebhookNotConfigured = "ERR_WEBHOOK_NOT_CONFIGURED"
	// ErrCodeSignatureMissing is used when the signature header is absent
	ErrCodeSignatureMissing = "ERR_WEBHOOK_SIGNATURE_MISSING"
	// ErrCodeSignatureInvalid is used when no secret produces the signature
	ErrCodeSignatureInvalid = "ERR_WEBHOOK_SIGNATURE_INVALID"
	// ErrCodeReplayDetected is used for a signature already seen in the replay window
	ErrCodeReplayDetected = "ERR_WEBHOOK_REPLAY"
	// ErrCodeMalformedPayload is used when the body is not a usable order
	ErrCodeMalformedPayload = "ERR_WEBHOOK_MALFORMED_PAYLOAD"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeStorageUnavailable: http.StatusInternalServerError,

	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeInvalidSKU:     http.StatusBadRequest,
	ErrCodeInvalidChannel: http.StatusBadRequest,
	ErrCodeInvalidReason:  http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	// webhook rejections are all 400
	ErrCodeWebhookNotConfigured: http.StatusBadRequest,
	ErrCodeSignatureMissing:     http.StatusBadRequest,
	ErrCodeSignatureInvalid:     http.StatusBadRequest,
	ErrCodeReplayDetected:       http.StatusBadRequest,
	ErrCodeMalformedPayload:     http.StatusBadRequest,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeMapping maps shared.DomainError codes to API codes
var domainCodeMapping = map[string]string{
	"NOT_FOUND":       ErrCodeNotFound,
	"ALREADY_EXISTS":  ErrCodeAlreadyExists,
	"INVALID_INPUT":   ErrCodeInvalidInput,
	"INVALID_SKU":     ErrCodeInvalidSKU,
	"INVALID_CHANNEL": ErrCodeInvalidChannel,
	"INVALID_REASON":  ErrCodeInvalidReason,
	"BAD_REQUEST":     ErrCodeBadRequest,
	"INTERNAL_ERROR":  ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes that are already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
