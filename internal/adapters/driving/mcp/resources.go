package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for arkeo resources.
	uriScheme = "arkeo://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Registered content connectors",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Cached connector health",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{sourceId}",
		Name:        "source",
		Description: "Metadata and cached health of one connector",
		MIMEType:    "application/json",
	}, s.handleSourceResource)
}

func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := s.ports.Registry.Sources()
	out := make([]SourceOutput, len(infos))
	for i := range infos {
		out[i] = toSourceOutput(&infos[i])
	}
	return jsonResource(req.Params.URI, out)
}

func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	statuses := s.ports.Registry.CachedStatus()
	out := make([]StatusOutput, len(statuses))
	for i := range statuses {
		out[i] = toStatusOutput(&statuses[i])
	}
	return jsonResource(req.Params.URI, out)
}

// handleSourceResource returns one connector's metadata with its cached status.
func (s *Server) handleSourceResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractSourceID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	info, err := s.ports.Registry.Source(id)
	if errors.Is(err, domain.ErrUnknownConnector) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting source: %w", err)
	}

	detail := struct {
		SourceOutput
		Status *StatusOutput `json:"status,omitempty"`
	}{SourceOutput: toSourceOutput(&info)}

	statuses := s.ports.Registry.CachedStatus()
	for i := range statuses {
		if statuses[i].ConnectorID == id {
			st := toStatusOutput(&statuses[i])
			detail.Status = &st
			break
		}
	}
	return jsonResource(req.Params.URI, detail)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSourceID extracts the connector ID from a URI like arkeo://sources/{sourceId}.
func extractSourceID(uri string) string {
	const prefix = uriScheme + "sources/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
