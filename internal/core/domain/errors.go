package domain

import (
	"context"
	"errors"
	"net"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates a capability the connector does not offer.
	ErrNotImplemented = errors.New("not implemented")

	// Connector Errors.

	// ErrUnknownConnector indicates an explicitly requested connector ID is not registered.
	ErrUnknownConnector = errors.New("unknown connector")

	// ErrConnectorUnavailable indicates the connector is flagged as unavailable.
	ErrConnectorUnavailable = errors.New("connector unavailable")

	// ErrAuthRequired indicates the connector needs an API key but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrTimeout indicates the connector did not finish before the deadline.
	ErrTimeout = errors.New("timed out")

	// ErrRateLimited indicates the upstream rejected the request with a rate limit.
	ErrRateLimited = errors.New("rate limited")
)

// ErrorKind classifies a connector failure so callers can tell retryable
// conditions from terminal ones.
type ErrorKind string

// Failure kinds.
const (
	ErrorKindConfig      ErrorKind = "config"
	ErrorKindNetwork     ErrorKind = "network"
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindUpstream    ErrorKind = "upstream"
	ErrorKindParse       ErrorKind = "parse"
	ErrorKindUnsupported ErrorKind = "unsupported"
	ErrorKindUnavailable ErrorKind = "unavailable"
	ErrorKindInternal    ErrorKind = "internal"
)

// Retryable returns true for kinds worth retrying.
func (k ErrorKind) Retryable() bool {
	return k == ErrorKindNetwork || k == ErrorKindTimeout
}

// KindedError is implemented by errors that know their own kind.
type KindedError interface {
	error
	ErrorKind() ErrorKind
}

// ClassifyError maps an error onto an ErrorKind.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var kinded KindedError
	if errors.As(err, &kinded) {
		return kinded.ErrorKind()
	}

	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrUnknownConnector), errors.Is(err, ErrInvalidInput):
		return ErrorKindConfig
	case errors.Is(err, ErrNotImplemented):
		return ErrorKindUnsupported
	case errors.Is(err, ErrConnectorUnavailable):
		return ErrorKindUnavailable
	case errors.Is(err, ErrRateLimited):
		return ErrorKindUpstream
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorKindTimeout
		}
		return ErrorKindNetwork
	}

	return ErrorKindInternal
}

// SourceError records why a source failed during a fan-out.
type SourceError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewSourceError builds a SourceError from err.
func NewSourceError(err error) SourceError {
	return SourceError{
		Kind:    ClassifyError(err),
		Message: err.Error(),
	}
}
