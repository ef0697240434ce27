package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnknownConnector", ErrUnknownConnector},
		{"ErrConnectorUnavailable", ErrConnectorUnavailable},
		{"ErrAuthRequired", ErrAuthRequired},
		{"ErrTimeout", ErrTimeout},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

type kindedErr struct{ kind ErrorKind }

func (e kindedErr) Error() string        { return "kinded" }
func (e kindedErr) ErrorKind() ErrorKind { return e.kind }

func TestClassifyError(t *testing.T) {
	refused := &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"kinded", fmt.Errorf("wrap: %w", kindedErr{ErrorKindParse}), ErrorKindParse},
		{"deadline", context.DeadlineExceeded, ErrorKindTimeout},
		{"timeout sentinel", fmt.Errorf("b: %w", ErrTimeout), ErrorKindTimeout},
		{"auth", ErrAuthRequired, ErrorKindConfig},
		{"unsupported", ErrNotImplemented, ErrorKindUnsupported},
		{"unavailable", ErrConnectorUnavailable, ErrorKindUnavailable},
		{"network", refused, ErrorKindNetwork},
		{"other", errors.New("boom"), ErrorKindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestErrorKind_Retryable(t *testing.T) {
	assert.True(t, ErrorKindNetwork.Retryable())
	assert.True(t, ErrorKindTimeout.Retryable())
	assert.False(t, ErrorKindUpstream.Retryable())
	assert.False(t, ErrorKindParse.Retryable())
	assert.False(t, ErrorKindConfig.Retryable())
}

func TestNewSourceError(t *testing.T) {
	se := NewSourceError(fmt.Errorf("search: %w", ErrTimeout))

	assert.Equal(t, ErrorKindTimeout, se.Kind)
	assert.Equal(t, "search: timed out", se.Message)
}
