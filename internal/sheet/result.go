package sheet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrSourceMissing means no source URL is configured.
	ErrSourceMissing = errors.New("SHEET_CSV_URL is not set")

	// ErrTimeout means the upstream did not answer within the fetch timeout.
	ErrTimeout = errors.New("timeout fetching csv")

	// ErrEmptyBody means the upstream answered with nothing but whitespace.
	ErrEmptyBody = errors.New("csv response was empty")

	// ErrBodyTooLarge means the upstream body exceeded the configured cap.
	ErrBodyTooLarge = errors.New("csv response exceeds size limit")
)

// StatusError reports an upstream HTTP error status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", e.Code)
}

// Kind enumerates the outcomes of loading a sheet.
type Kind int

const (
	KindSuccess Kind = iota
	KindConfigMissing
	KindTimeout
	KindUpstreamStatus
	KindEmptyBody
	KindUnexpected
)

// String returns a stable snake_case name, used for log fields and metric labels.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindConfigMissing:
		return "config_missing"
	case KindTimeout:
		return "timeout"
	case KindUpstreamStatus:
		return "upstream_status"
	case KindEmptyBody:
		return "empty_body"
	case KindUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one load. Exactly one of Table or Err is set.
type Result struct {
	Kind  Kind
	Table *Table

	// Status is the upstream HTTP status for KindUpstreamStatus.
	Status int

	Err error
}

// Success wraps a parsed table.
func Success(t *Table) Result {
	return Result{Kind: KindSuccess, Table: t}
}

// Classify maps an error from fetching or parsing to its Result.
// A nil error classifies as KindSuccess with no table.
func Classify(err error) Result {
	if err == nil {
		return Result{Kind: KindSuccess}
	}

	var statusErr *StatusError
	var netErr net.Error

	switch {
	case errors.Is(err, ErrSourceMissing):
		return Result{Kind: KindConfigMissing, Err: err}
	case errors.As(err, &statusErr):
		code := statusErr.Code
		if code == 0 {
			code = http.StatusInternalServerError
		}
		return Result{Kind: KindUpstreamStatus, Status: code, Err: err}
	case errors.Is(err, ErrEmptyBody):
		return Result{Kind: KindEmptyBody, Err: err}
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return Result{Kind: KindTimeout, Err: err}
	default:
		return Result{Kind: KindUnexpected, Err: err}
	}
}
