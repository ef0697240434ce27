// Package connectors provides implementations of the Connector interface
// for external archaeological and cultural heritage archives. Each
// connector knows how to query one upstream (museum APIs, SPARQL
// endpoints, scraped library catalogues) and normalise its records.
//
// Connectors are registered explicitly with the registry at startup via
// Builtin.
package connectors
