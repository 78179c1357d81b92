package circuitbreaker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_TripsAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Hour})
	boom := fmt.Errorf("boom")

	assert.Error(t, cb.Execute(func() error { return boom }))
	assert.Equal(t, "closed", cb.State())

	assert.Error(t, cb.Execute(func() error { return boom }))
	assert.Equal(t, "open", cb.State())

	// Open breaker short-circuits without calling fn.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.Error(t, err)
	assert.False(t, called)
}

func TestExecute_HalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))
	require.Equal(t, "open", cb.State())

	time.Sleep(20 * time.Millisecond)

	// The probe succeeds and closes the breaker.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, "closed", cb.State())
}

func TestExecute_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(func() error { return fmt.Errorf("still down") }))
	assert.Equal(t, "open", cb.State())
}

func TestExecute_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Hour})

	require.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return fmt.Errorf("boom") }))
	assert.Equal(t, "closed", cb.State())
}
