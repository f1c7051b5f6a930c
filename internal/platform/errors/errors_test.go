package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	cause := stderrors.New("connection refused")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "message only", err: New(CodeNotFound, "user not found"), want: "user not found"},
		{name: "wrapped", err: Wrap(CodeStorageQuery, "list users", cause), want: "list users: connection refused"},
		{name: "cause only", err: Wrap(CodeStorageQuery, "", cause), want: "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("run report: %w", New(CodeReportNotFound, "report \"x\" not found"))
	if !stderrors.Is(err, New(CodeReportNotFound, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeNotFound, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := stderrors.New("boom")
	if !stderrors.Is(Wrap(CodeStorageQuery, "query", cause), cause) {
		t.Fatal("expected cause to be reachable")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(CodeInvalidDate, "bad"), http.StatusBadRequest},
		{New(CodeInvalidDateRange, "bad"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", New(CodeReportNotFound, "missing")), http.StatusNotFound},
		{New(CodeSalesmanNotFound, "missing"), http.StatusNotFound},
		{New(CodeUnauthorized, "no"), http.StatusUnauthorized},
		{New(CodeRateLimited, "slow down"), http.StatusTooManyRequests},
		{New(CodeStorageUnavailable, "down"), http.StatusServiceUnavailable},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeInvalidDate, "invalid start date", map[string]string{"field": "start_date"})
	if err.Metadata["field"] != "start_date" {
		t.Fatalf("metadata field = %q, want %q", err.Metadata["field"], "start_date")
	}
	if CodeOf(err) != CodeInvalidDate {
		t.Fatalf("CodeOf = %q, want %q", CodeOf(err), CodeInvalidDate)
	}
}
