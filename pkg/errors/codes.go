package errors

import (
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodePayloadTooLarge    ErrorCode = "COMMON_012"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Aliases used at call sites that predate the module prefixes.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("")
)

// Acquisition Error Codes
const (
	ErrCodeAcquisitionFailed ErrorCode = "ACQ_001"
	ErrCodeUnsupportedFormat ErrorCode = "ACQ_002"
	ErrCodeEmptyDocument     ErrorCode = "ACQ_003"
	ErrCodeOCRUnavailable    ErrorCode = "ACQ_004"
	ErrCodeOCRFailed         ErrorCode = "ACQ_005"
)

// Pipeline Error Codes
const (
	ErrCodeConvertFailed  ErrorCode = "PIPE_001"
	ErrCodeInvalidOptions ErrorCode = "PIPE_002"
)

// Sink Error Codes
const (
	ErrCodeStorageError  ErrorCode = "SINK_001"
	ErrCodeIndexError    ErrorCode = "SINK_002"
	ErrCodePublishError  ErrorCode = "SINK_003"
	ErrCodeDatabaseError ErrorCode = "SINK_004"
	ErrCodeGraphError    ErrorCode = "SINK_005"
	ErrCodeCacheError    ErrorCode = "SINK_006"
	ErrCodeConsumeError  ErrorCode = "SINK_007"
)

// Batch Error Codes
const (
	ErrCodeWalkFailed  ErrorCode = "BATCH_001"
	ErrCodeWriteFailed ErrorCode = "BATCH_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeAcquisitionFailed: http.StatusUnprocessableEntity,
	ErrCodeUnsupportedFormat: http.StatusUnsupportedMediaType,
	ErrCodeEmptyDocument:     http.StatusUnprocessableEntity,
	ErrCodeOCRUnavailable:    http.StatusServiceUnavailable,
	ErrCodeOCRFailed:         http.StatusInternalServerError,

	ErrCodeConvertFailed:  http.StatusInternalServerError,
	ErrCodeInvalidOptions: http.StatusBadRequest,

	ErrCodeStorageError:  http.StatusBadGateway,
	ErrCodeIndexError:    http.StatusBadGateway,
	ErrCodePublishError:  http.StatusBadGateway,
	ErrCodeDatabaseError: http.StatusInternalServerError,
	ErrCodeGraphError:    http.StatusBadGateway,
	ErrCodeCacheError:    http.StatusInternalServerError,
	ErrCodeConsumeError:  http.StatusInternalServerError,

	ErrCodeWalkFailed:  http.StatusInternalServerError,
	ErrCodeWriteFailed: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodePayloadTooLarge:    "payload too large",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeAcquisitionFailed: "document could not be opened",
	ErrCodeUnsupportedFormat: "unsupported document format",
	ErrCodeEmptyDocument:     "document is empty",
	ErrCodeOCRUnavailable:    "OCR engine not available",
	ErrCodeOCRFailed:         "OCR failed",

	ErrCodeConvertFailed:  "conversion failed",
	ErrCodeInvalidOptions: "invalid conversion options",

	ErrCodeStorageError:  "object storage error",
	ErrCodeIndexError:    "search index error",
	ErrCodePublishError:  "message publish error",
	ErrCodeDatabaseError: "database error",
	ErrCodeGraphError:    "graph database error",
	ErrCodeCacheError:    "cache error",
	ErrCodeConsumeError:  "message consume error",

	ErrCodeWalkFailed:  "failed to walk input directory",
	ErrCodeWriteFailed: "failed to write output",
}

// errorCodeGRPC maps ErrorCodes to gRPC status codes.
var errorCodeGRPC = map[ErrorCode]codes.Code{
	ErrCodeBadRequest:         codes.InvalidArgument,
	ErrCodeValidation:         codes.InvalidArgument,
	ErrCodeInvalidOptions:     codes.InvalidArgument,
	ErrCodeNotFound:           codes.NotFound,
	ErrCodeConflict:           codes.AlreadyExists,
	ErrCodeTimeout:            codes.DeadlineExceeded,
	ErrCodeServiceUnavailable: codes.Unavailable,
	ErrCodePayloadTooLarge:    codes.ResourceExhausted,
	ErrCodeNotImplemented:     codes.Unimplemented,
	ErrCodeAcquisitionFailed:  codes.InvalidArgument,
	ErrCodeUnsupportedFormat:  codes.InvalidArgument,
	ErrCodeEmptyDocument:      codes.InvalidArgument,
	ErrCodeOCRUnavailable:     codes.Unavailable,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GRPCCodeForCode returns the gRPC status code for an ErrorCode.
func GRPCCodeForCode(code ErrorCode) codes.Code {
	if c, ok := errorCodeGRPC[code]; ok {
		return c
	}
	return codes.Internal
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
