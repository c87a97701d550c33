package models

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptySelection is returned when no asset is selected.
	ErrEmptySelection = errors.New("select at least one asset")
	// ErrMissingField marks a payload that lacks an expected field or asset.
	ErrMissingField = errors.New("missing field")
)

// FetchErrorKind classifies upstream failures.
type FetchErrorKind string

const (
	KindTransport   FetchErrorKind = "transport"
	KindHTTPStatus  FetchErrorKind = "http_status"
	KindDecode      FetchErrorKind = "decode"
	KindRateLimited FetchErrorKind = "rate_limited"
)

// FetchError is the uniform failure value returned by the fetch client.
type FetchError struct {
	Kind    FetchErrorKind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	}
}

// Unwrap returns underlying error.
func (e *FetchError) Unwrap() error { return e.Err }

// NewTransportError wraps a network, DNS or timeout failure.
func NewTransportError(op string, err error) *FetchError {
	return &FetchError{Kind: KindTransport, Op: op, Message: "upstream unreachable", Err: err}
}

// NewHTTPStatusError records a non-2xx upstream response.
func NewHTTPStatusError(op string, status int, body string) *FetchError {
	msg := http.StatusText(status)
	if body != "" {
		msg = body
	}
	return &FetchError{Kind: KindHTTPStatus, Op: op, Status: status, Message: msg}
}

// NewDecodeError wraps a malformed payload.
func NewDecodeError(op string, err error) *FetchError {
	return &FetchError{Kind: KindDecode, Op: op, Message: "malformed payload", Err: err}
}

// NewRateLimitedError is returned when the local request budget is exhausted.
func NewRateLimitedError(op string) *FetchError {
	return &FetchError{Kind: KindRateLimited, Op: op, Status: http.StatusTooManyRequests, Message: "request budget exhausted"}
}

// AsFetchError unwraps err into a *FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// HTTPStatus returns the upstream status carried by err, or 0.
func HTTPStatus(err error) int {
	if fe, ok := AsFetchError(err); ok {
		return fe.Status
	}
	return 0
}

// MissingFieldError reports an asset or field absent from an upstream payload.
type MissingFieldError struct {
	AssetID AssetID
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s missing from payload", e.AssetID, e.Field)
}

// Unwrap lets callers match ErrMissingField.
func (e *MissingFieldError) Unwrap() error { return ErrMissingField }
