// Package domain defines the core business entities for arkeo.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentItem: A normalised record emitted by a connector
//   - ContentSearchResult: The ranked, aggregated outcome of a fan-out
//   - SourceInfo: Static metadata a connector declares
//   - ConnectorStatus: The cached health view of a connector
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
