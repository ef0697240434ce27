// Package memory provides in-memory implementations of driven port
// interfaces: a config store for tests and runs without a config file, and
// a bounded status history store.
package memory
