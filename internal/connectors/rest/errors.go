package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 512

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// ErrorKind implements domain.KindedError.
func (e *StatusError) ErrorKind() domain.ErrorKind {
	return domain.ErrorKindUpstream
}

// Is lets 429 and 404 responses match the domain sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case domain.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func newStatusError(method, url string, raw *RawResponse) *StatusError {
	body := raw.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{
		StatusCode: raw.StatusCode,
		Method:     method,
		URL:        url,
		Body:       string(body),
	}
}

// DecodeError is returned when a response body cannot be decoded.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrorKind implements domain.KindedError.
func (e *DecodeError) ErrorKind() domain.ErrorKind {
	return domain.ErrorKindParse
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited checks if the error is a 429 response.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
