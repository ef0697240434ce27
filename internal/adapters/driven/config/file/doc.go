// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.arkeo.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with live reload
package file
