package services

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/core/ports/driving"
	"github.com/custodia-labs/arkeo/internal/logger"
	"github.com/custodia-labs/arkeo/internal/metrics"
)

// Ensure Registry implements the interface.
var _ driving.Registry = (*Registry)(nil)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMetrics records connector calls and health checks.
func WithMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithHistory records every health check to store.
func WithHistory(store driven.StatusHistoryStore) RegistryOption {
	return func(r *Registry) {
		r.history = store
	}
}

// WithSearchSettings overrides fan-out defaults.
func WithSearchSettings(s domain.SearchSettings) RegistryOption {
	return func(r *Registry) {
		r.search = s
	}
}

// WithHealthSettings overrides health-check defaults.
func WithHealthSettings(s domain.HealthSettings) RegistryOption {
	return func(r *Registry) {
		r.health = s
	}
}

// Registry owns the connector set. Instances are built lazily on first use
// and rebuilt when their API key changes.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	regs      map[string]driven.Registration
	instances map[string]driven.Connector
	apiKeys   map[string]string
	status    map[string]domain.ConnectorStatus

	search  domain.SearchSettings
	health  domain.HealthSettings
	metrics *metrics.Metrics
	history driven.StatusHistoryStore
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	defaults := domain.DefaultAppSettings()
	r := &Registry{
		regs:      make(map[string]driven.Registration),
		instances: make(map[string]driven.Connector),
		apiKeys:   make(map[string]string),
		status:    make(map[string]domain.ConnectorStatus),
		search:    defaults.Search,
		health:    defaults.Health,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a connector. IDs must be unique.
func (r *Registry) Register(reg driven.Registration) error {
	if reg.Info.ID == "" || reg.New == nil {
		return fmt.Errorf("%w: registration needs an id and a factory", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regs[reg.Info.ID]; exists {
		return fmt.Errorf("connector %s: %w", reg.Info.ID, domain.ErrAlreadyExists)
	}
	r.regs[reg.Info.ID] = reg
	r.order = append(r.order, reg.Info.ID)
	return nil
}

// RegisterAll registers each connector, stopping at the first error.
func (r *Registry) RegisterAll(regs []driven.Registration) error {
	for _, reg := range regs {
		if err := r.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

// Connector returns the connector instance for id, building it on first use.
func (r *Registry) Connector(id string) (driven.Connector, error) {
	r.mu.RLock()
	conn, ok := r.instances[id]
	r.mu.RUnlock()
	if ok {
		return conn, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.instances[id]; ok {
		return conn, nil
	}
	reg, ok := r.regs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownConnector, id)
	}
	conn = reg.New(r.apiKeys[id])
	r.instances[id] = conn
	logger.Debug("registry: created connector %s", id)
	return conn, nil
}

// SetAPIKeys replaces the configured keys. Instances whose key changed are
// dropped and rebuilt on next use.
func (r *Registry) SetAPIKeys(keys map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]string, len(keys))
	for id, key := range keys {
		if key != "" {
			next[id] = key
		}
	}

	for id, conn := range r.instances {
		if r.apiKeys[id] != next[id] {
			closeConnector(id, conn)
			delete(r.instances, id)
		}
	}
	r.apiKeys = next
}

// HasAPIKey reports whether a key is configured for id.
func (r *Registry) HasAPIKey(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.apiKeys[id] != ""
}

// Sources returns every registered connector's metadata in registration order.
func (r *Registry) Sources() []domain.SourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]domain.SourceInfo, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, r.regs[id].Info)
	}
	return infos
}

// Source returns one connector's metadata.
func (r *Registry) Source(id string) (domain.SourceInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.regs[id]
	if !ok {
		return domain.SourceInfo{}, fmt.Errorf("%w: %s", domain.ErrUnknownConnector, id)
	}
	return reg.Info, nil
}

// ConnectorsFor returns the connectors declaring t, in registration order.
func (r *Registry) ConnectorsFor(t domain.ContentType) []domain.SourceInfo {
	var infos []domain.SourceInfo
	for _, info := range r.Sources() {
		if info.Provides(t) {
			infos = append(infos, info)
		}
	}
	return infos
}

// resolve picks the connectors a fan-out dispatches to. Explicit IDs win
// and may name unavailable connectors; otherwise available connectors whose
// types intersect the requested ones, or every available connector.
func (r *Registry) resolve(d domain.Dispatch) ([]string, error) {
	if len(d.Sources) > 0 {
		ids := make([]string, 0, len(d.Sources))
		seen := make(map[string]bool, len(d.Sources))
		for _, id := range d.Sources {
			if _, err := r.Source(id); err != nil {
				return nil, err
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	var ids []string
	for _, info := range r.Sources() {
		if !info.Available {
			continue
		}
		if len(d.ContentTypes) > 0 && !info.ProvidesAny(d.ContentTypes) {
			continue
		}
		ids = append(ids, info.ID)
	}
	return ids, nil
}

// Close drops every connector instance and the status cache.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, conn := range r.instances {
		if err := closeConnector(id, conn); err != nil {
			errs = append(errs, err)
		}
	}
	r.instances = make(map[string]driven.Connector)
	r.status = make(map[string]domain.ConnectorStatus)
	return errors.Join(errs...)
}

func closeConnector(id string, conn driven.Connector) error {
	closer, ok := conn.(io.Closer)
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		logger.Warn("registry: closing %s: %v", id, err)
		return fmt.Errorf("close %s: %w", id, err)
	}
	return nil
}
