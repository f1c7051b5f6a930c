// Package errors provides structured, code-carrying errors for CBTA services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Argument errors
	CodeArgumentMissing    Code = "ARGUMENT_MISSING"
	CodeInvalidDate        Code = "INVALID_DATE"
	CodeInvalidDateRange   Code = "INVALID_DATE_RANGE"
	CodeUnsupportedFormat  Code = "UNSUPPORTED_FORMAT"
	CodeReportNeedsInput   Code = "REPORT_NEEDS_INPUT"
	CodeMaintenanceNoTable Code = "MAINTENANCE_UNKNOWN_TABLE"

	// Lookup errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeReportNotFound   Code = "REPORT_NOT_FOUND"
	CodeSalesmanNotFound Code = "SALESMAN_NOT_FOUND"

	// Access errors
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeRateLimited  Code = "RATE_LIMITED"

	// Backend errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeStorageQuery       Code = "STORAGE_QUERY_FAILED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeArgumentMissing,
		CodeInvalidDate,
		CodeInvalidDateRange,
		CodeUnsupportedFormat,
		CodeReportNeedsInput,
		CodeMaintenanceNoTable:
		return http.StatusBadRequest

	case CodeNotFound,
		CodeReportNotFound,
		CodeSalesmanNotFound:
		return http.StatusNotFound

	case CodeUnauthorized:
		return http.StatusUnauthorized

	case CodeRateLimited:
		return http.StatusTooManyRequests

	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
