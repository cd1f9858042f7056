package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeCacheError      ErrorCode = "COMMON_013"
	ErrCodeStorageError    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled ErrorCode = "COMMON_015"
	ErrCodeCancelled       ErrorCode = "COMMON_016"
)

// Dataset Module Error Codes
const (
	ErrCodeDatasetNotFound    ErrorCode = "DATA_001"
	ErrCodeDatasetParseFailed ErrorCode = "DATA_002"
	ErrCodeColumnNotFound     ErrorCode = "DATA_003"
	ErrCodeLabelOutOfDomain   ErrorCode = "DATA_004"
	ErrCodeDatasetEmpty       ErrorCode = "DATA_005"
)

// Chart Module Error Codes
const (
	ErrCodeChartRenderFailed      ErrorCode = "PLOT_001"
	ErrCodeChartFormatUnsupported ErrorCode = "PLOT_002"
)

// Aliases used throughout the codebase.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:        "internal error",
	ErrCodeBadRequest:      "bad request",
	ErrCodeNotFound:        "resource not found",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeCacheError:      "cache error",
	ErrCodeStorageError:    "object storage error",
	ErrCodeFeatureDisabled: "feature disabled",
	ErrCodeCancelled:       "operation cancelled",

	ErrCodeDatasetNotFound:    "dataset file not found",
	ErrCodeDatasetParseFailed: "malformed dataset",
	ErrCodeColumnNotFound:     "column not found",
	ErrCodeLabelOutOfDomain:   "label must be 0 or 1",
	ErrCodeDatasetEmpty:       "dataset has no records",

	ErrCodeChartRenderFailed:      "failed to render chart",
	ErrCodeChartFormatUnsupported: "unsupported chart format",
}

// ErrorCodeExitStatus maps ErrorCodes to process exit statuses for the CLI.
// Codes absent from the map exit with status 1.
var ErrorCodeExitStatus = map[ErrorCode]int{
	ErrCodeDatasetNotFound:    2,
	ErrCodeNotFound:           2,
	ErrCodeDatasetParseFailed: 3,
	ErrCodeLabelOutOfDomain:   3,
	ErrCodeColumnNotFound:     3,
	ErrCodeDatasetEmpty:       3,
	ErrCodeValidation:         4,
	ErrCodeBadRequest:         4,
	ErrCodeCancelled:          130,
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ExitStatusForCode returns the CLI exit status for an ErrorCode.
func ExitStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return 1
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
