package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/interviewd/internal/config"
)

func TestNewDisabled(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NotNil(t, tel)

	assert.False(t, tel.Degraded())
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))
}

func TestNewEnabledRequiresServiceName(t *testing.T) {
	_, err := New(context.Background(), config.TelemetryConfig{
		Enabled:  true,
		Endpoint: "localhost:4317",
	}, "test")
	assert.Error(t, err)
}

func TestNilTelemetryIsSafe(t *testing.T) {
	var tel *Telemetry
	assert.True(t, tel.Degraded())
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))
}

func TestShutdownAppliesConfiguredTimeout(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{
		Enabled:         false,
		ShutdownTimeout: config.Duration(100 * time.Millisecond),
	}, "test")
	require.NoError(t, err)

	// No providers are installed, so shutdown returns immediately even
	// with the short timeout.
	start := time.Now()
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}
