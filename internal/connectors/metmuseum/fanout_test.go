package metmuseum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arkeo/internal/connectors/base"
	"github.com/custodia-labs/arkeo/internal/connectors/rest"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/core/services"
)

func TestSearchAll_RateLimitPastDeadlineIsTimeout(t *testing.T) {
	server := newServer(t)
	registry := services.NewRegistry()
	require.NoError(t, registry.Register(driven.Registration{
		Info: Info,
		New: func(string) driven.Connector {
			client := rest.New(rest.Config{
				BaseURL:           server.URL,
				RequestsPerSecond: 0.2,
				Retry:             rest.RetryConfig{MaxAttempts: 1},
			})
			return New("", base.WithClient(client), base.WithPingURL(server.URL))
		},
	}))
	t.Cleanup(func() { _ = registry.Close() })

	start := time.Now()
	result, err := registry.SearchAll(context.Background(), domain.SearchRequest{
		Dispatch: domain.Dispatch{Timeout: 2 * time.Second},
		Query:    "Augustus",
	})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, result.SourcesSearched)
	assert.Equal(t, []string{ID}, result.SourcesFailed)
	require.Contains(t, result.SourceErrors, ID)
	assert.Equal(t, domain.ErrorKindTimeout, result.SourceErrors[ID].Kind)
	assert.Empty(t, result.Items)
}
