package health

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/fingate/internal/domain"
	"github.com/mozilla-ai/fingate/internal/errors"
)

func fixedClock() func() time.Time {
	ts := time.Date(2024, 11, 5, 9, 15, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestNewMonitor(t *testing.T) {
	t.Parallel()

	m, err := NewMonitor([]string{"payments", "market-data"})
	require.NoError(t, err)

	all := m.StatusAll()
	require.Len(t, all, 2)
	require.Equal(t, "payments", all[0].ServerID)
	require.Equal(t, "market-data", all[1].ServerID)
	for _, h := range all {
		require.Equal(t, domain.HealthStateUnknown, h.State)
		require.Nil(t, h.LastCheckedAt)
		require.Zero(t, h.ConsecutiveFailures)
	}
	require.Equal(t, DefaultEscalationThreshold(), m.Threshold())

	_, err = NewMonitor([]string{"a", "a"})
	require.EqualError(t, err, "duplicate server: a")

	_, err = NewMonitor([]string{"a"}, WithEscalationThreshold(0))
	require.ErrorContains(t, err, "escalation threshold must be at least 1")
}

func TestMonitor_Record(t *testing.T) {
	t.Parallel()

	m, err := NewMonitor([]string{"market-data"}, WithClock(fixedClock()))
	require.NoError(t, err)

	h, err := m.Record("market-data", domain.Failed(domain.FailureTimeout, "timeout: request timed out"))
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateDegraded, h.State)
	require.Equal(t, 1, h.ConsecutiveFailures)
	require.Equal(t, "timeout: request timed out", h.LastError)
	require.NotNil(t, h.LastCheckedAt)
	require.Nil(t, h.LastSuccessfulAt)
	require.Nil(t, h.LastLatency)

	h, err = m.Record("market-data", domain.Failed(domain.FailureTimeout, ""))
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateDegraded, h.State)
	require.Equal(t, "timeout", h.LastError)

	h, err = m.Record("market-data", domain.Failed(domain.FailureTimeout, ""))
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateUnreachable, h.State)
	require.Equal(t, 3, h.ConsecutiveFailures)

	h, err = m.Record("market-data", domain.Succeeded(42*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateConnected, h.State)
	require.Zero(t, h.ConsecutiveFailures)
	require.Empty(t, h.LastError)
	require.Equal(t, 42*time.Millisecond, *h.LastLatency)
	require.Equal(t, fixedClock()(), *h.LastSuccessfulAt)

	status, err := m.Status("market-data")
	require.NoError(t, err)
	require.Equal(t, h, status)
}

func TestMonitor_UnknownServer(t *testing.T) {
	t.Parallel()

	m, err := NewMonitor([]string{"market-data"})
	require.NoError(t, err)

	_, err = m.Status("crypto")
	require.ErrorIs(t, err, errors.ErrHealthNotTracked)

	_, err = m.Record("crypto", domain.Succeeded(0))
	require.ErrorIs(t, err, errors.ErrHealthNotTracked)

	require.Len(t, m.StatusAll(), 1)
}

func TestMonitor_SnapshotsAreCopies(t *testing.T) {
	t.Parallel()

	m, err := NewMonitor([]string{"market-data"}, WithClock(fixedClock()))
	require.NoError(t, err)

	_, err = m.Record("market-data", domain.Succeeded(10*time.Millisecond))
	require.NoError(t, err)

	snap, err := m.Status("market-data")
	require.NoError(t, err)
	*snap.LastLatency = time.Hour
	snap.State = domain.HealthStateUnreachable

	again, err := m.Status("market-data")
	require.NoError(t, err)
	require.Equal(t, 10*time.Millisecond, *again.LastLatency)
	require.Equal(t, domain.HealthStateConnected, again.State)
}

func TestMonitor_ConcurrentRecords(t *testing.T) {
	t.Parallel()

	ids := []string{"market-data", "payments"}
	m, err := NewMonitor(ids, WithEscalationThreshold(1000))
	require.NoError(t, err)

	const perServer = 200

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < perServer; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = m.Record(id, domain.Failed(domain.FailureUnreachable, "refused"))
				_ = m.StatusAll()
			}()
		}
	}
	wg.Wait()

	for _, h := range m.StatusAll() {
		require.Equal(t, perServer, h.ConsecutiveFailures)
		require.Equal(t, domain.HealthStateDegraded, h.State)
	}
}
