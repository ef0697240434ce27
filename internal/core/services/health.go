package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/logger"
)

const (
	// DefaultHistoryLimit is the number of history entries returned when
	// no limit is given.
	DefaultHistoryLimit = 20

	// DefaultHealthTimeout bounds a health check when settings give none.
	DefaultHealthTimeout = 10 * time.Second
)

// CheckConnectorStatus runs a health check on one connector and caches the
// result. Unavailable connectors are never contacted.
func (r *Registry) CheckConnectorStatus(ctx context.Context, id string) (domain.ConnectorStatus, error) {
	info, err := r.Source(id)
	if err != nil {
		return domain.ConnectorStatus{}, err
	}

	var result domain.HealthCheckResult
	if !info.Available {
		result = domain.HealthCheckResult{
			ConnectorID: id,
			Status:      domain.HealthUnavailable,
			Message:     info.UnavailableReason,
			CheckedAt:   time.Now().UTC(),
		}
	} else {
		conn, err := r.Connector(id)
		if err != nil {
			return domain.ConnectorStatus{}, err
		}
		result = r.healthCheck(ctx, info, conn)
	}

	status := r.statusFrom(info, result)

	r.mu.Lock()
	status.TestResults = r.status[id].TestResults
	r.status[id] = status
	r.mu.Unlock()

	r.metrics.ObserveHealth(result)
	if r.history != nil {
		if err := r.history.Record(ctx, result); err != nil {
			logger.Warn("status history: recording %s: %v", id, err)
		}
	}
	return status, nil
}

// healthCheck runs conn.HealthCheck under the protocol's time budget.
// A check that overruns is reported as an error.
func (r *Registry) healthCheck(ctx context.Context, info domain.SourceInfo, conn driven.Connector) domain.HealthCheckResult {
	timeout := r.healthTimeout(info)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	ch := make(chan domain.HealthCheckResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- domain.HealthCheckResult{
					Status:  domain.HealthError,
					Message: fmt.Sprintf("health check panicked: %v", p),
				}
			}
		}()
		ch <- conn.HealthCheck(ctx)
	}()

	var result domain.HealthCheckResult
	select {
	case result = <-ch:
	case <-ctx.Done():
		result = domain.HealthCheckResult{
			Status:         domain.HealthError,
			Message:        fmt.Sprintf("health check timed out after %s", timeout),
			ResponseTimeMS: time.Since(start).Milliseconds(),
		}
	}

	result.ConnectorID = info.ID
	if result.CheckedAt.IsZero() {
		result.CheckedAt = time.Now().UTC()
	}
	if result.Status == domain.HealthOK && result.ResponseTimeMS > int64(r.health.WarnThresholdMS) && r.health.WarnThresholdMS > 0 {
		result.Status = domain.HealthWarning
		result.Message = fmt.Sprintf("slow response (%dms)", result.ResponseTimeMS)
	}
	return result
}

// healthTimeout is the check budget for a connector: longer for protocols
// known to answer slowly.
func (r *Registry) healthTimeout(info domain.SourceInfo) time.Duration {
	seconds := r.health.TimeoutSeconds
	if info.Protocol.IsSlow() {
		seconds = r.health.SlowTimeoutSeconds
	}
	if seconds <= 0 {
		return DefaultHealthTimeout
	}
	return time.Duration(seconds) * time.Second
}

func (r *Registry) statusFrom(info domain.SourceInfo, result domain.HealthCheckResult) domain.ConnectorStatus {
	checked := result.CheckedAt
	status := r.placeholder(info)
	status.Status = result.Status
	status.ResponseTimeMS = result.ResponseTimeMS
	status.Message = result.Message
	status.LastChecked = &checked

	if status.Status == domain.HealthOK && info.RequiresAuth && !status.HasAPIKey {
		status.Status = domain.HealthWarning
		status.Message = fmt.Sprintf("no API key configured (set api_keys.%s)", info.ID)
	}
	return status
}

// placeholder is the status of a connector that has never been checked.
func (r *Registry) placeholder(info domain.SourceInfo) domain.ConnectorStatus {
	status := domain.ConnectorStatus{
		ConnectorID:       info.ID,
		Name:              info.Name,
		Category:          Categorize(info.ContentTypes),
		Status:            domain.HealthUnknown,
		Message:           "not checked yet",
		Available:         info.Available,
		UnavailableReason: info.UnavailableReason,
		ContentTypes:      info.ContentTypes,
		RequiresAuth:      info.RequiresAuth,
		HasAPIKey:         r.HasAPIKey(info.ID),
	}
	if !info.Available {
		status.Status = domain.HealthUnavailable
		status.Message = info.UnavailableReason
	}
	return status
}

// CheckAllStatus checks every connector concurrently. With runTests the
// canned queries then run against every connector that came back usable.
func (r *Registry) CheckAllStatus(ctx context.Context, runTests bool) ([]domain.ConnectorStatus, error) {
	logger.Section("Health Check")

	g, gctx := errgroup.WithContext(ctx)
	for _, info := range r.Sources() {
		g.Go(func() error {
			_, err := r.CheckConnectorStatus(gctx, info.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if runTests {
		r.RunTestQueries(ctx)
	}
	return r.CachedStatus(), nil
}

// CachedStatus returns the last known status of every connector in
// registration order. Connectors never checked get a placeholder.
func (r *Registry) CachedStatus() []domain.ConnectorStatus {
	infos := r.Sources()
	statuses := make([]domain.ConnectorStatus, 0, len(infos))

	for _, info := range infos {
		r.mu.RLock()
		status, ok := r.status[info.ID]
		r.mu.RUnlock()

		if !ok {
			status = r.placeholder(info)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// StatusHistory returns recent health checks for a connector, newest first.
// Without a history store it returns nothing.
func (r *Registry) StatusHistory(ctx context.Context, id string, limit int) ([]domain.HealthCheckResult, error) {
	if _, err := r.Source(id); err != nil {
		return nil, err
	}
	if r.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return r.history.List(ctx, id, limit)
}
