// Package services implements the driving port interfaces.
//
// Registry owns the connector set. It fans queries out to connectors
// concurrently, merges their results by relevance, and caches connector
// health. SettingsService maps the flat config store onto AppSettings.
package services
