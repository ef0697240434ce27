package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 30*time.Second, s.Search.Timeout())
	assert.Equal(t, 20, s.Search.LimitPerSource)
	assert.Equal(t, 10, s.Health.TimeoutSeconds)
	assert.Equal(t, 30, s.Health.SlowTimeoutSeconds)
	assert.Equal(t, 5000, s.Health.WarnThresholdMS)
	assert.Equal(t, 5, s.Health.TestConcurrency)
	assert.Equal(t, HistoryMemory, s.Storage.StatusHistory)
	assert.NotNil(t, s.APIKeys)
	assert.Empty(t, s.Metrics.Addr)
}

func TestHistoryBackend_IsValid(t *testing.T) {
	for _, b := range AllHistoryBackends() {
		assert.True(t, b.IsValid(), b)
		assert.NotEqual(t, unknownDescription, b.Description())
	}
	assert.False(t, HistoryBackend("redis").IsValid())
	assert.Equal(t, unknownDescription, HistoryBackend("redis").Description())
}
