package mcp

import (
	"net/http"

	"github.com/custodia-labs/arkeo/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server drives.
type Ports struct {
	// Registry runs searches and reports connector health.
	Registry driving.Registry

	// Metrics serves /metrics next to the MCP endpoint in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Registry == nil {
		return ErrMissingRegistry
	}
	return nil
}
