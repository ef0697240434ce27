// Package mcp provides an MCP (Model Context Protocol) server adapter for arkeo.
// It lets AI assistants run federated archaeological searches and inspect
// connector health.
package mcp

import "errors"

// ErrMissingRegistry is returned when the registry is not provided.
var ErrMissingRegistry = errors.New("mcp: registry is required")
