// Package health tracks the connectivity of remote MCP servers.
package health

import (
	"fmt"
	"sync"
	"time"

	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/domain"
	"github.com/mozilla-ai/fingate/internal/errors"
)

var _ contracts.MCPHealthMonitor = (*Monitor)(nil)

// Monitor holds one ServerHealth record per configured server for the lifetime of the process.
// Records are created in the unknown state and are never removed.
type Monitor struct {
	order     []string
	records   map[string]*record
	threshold int
	now       func() time.Time
}

// record guards a single server's health so updates to different servers do not contend.
type record struct {
	mu     sync.Mutex
	health domain.ServerHealth
}

// NewMonitor creates a Monitor tracking the given servers in the given order.
func NewMonitor(serverIDs []string, opts ...MonitorOption) (*Monitor, error) {
	options, err := NewMonitorOptions(opts...)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		order:     make([]string, 0, len(serverIDs)),
		records:   make(map[string]*record, len(serverIDs)),
		threshold: options.EscalationThreshold,
		now:       options.Clock,
	}

	for _, id := range serverIDs {
		if _, exists := m.records[id]; exists {
			return nil, fmt.Errorf("duplicate server: %s", id)
		}
		m.order = append(m.order, id)
		m.records[id] = &record{
			health: domain.ServerHealth{ServerID: id, State: domain.HealthStateUnknown},
		}
	}

	return m, nil
}

// Status returns a snapshot of the health of a single tracked server.
func (m *Monitor) Status(serverID string) (domain.ServerHealth, error) {
	r, ok := m.records[serverID]
	if !ok {
		return domain.ServerHealth{}, fmt.Errorf("%w: %s", errors.ErrHealthNotTracked, serverID)
	}

	return r.snapshot(), nil
}

// StatusAll returns snapshots of every tracked server in configuration order.
func (m *Monitor) StatusAll() []domain.ServerHealth {
	out := make([]domain.ServerHealth, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].snapshot())
	}
	return out
}

// Record applies outcome to the server's record through the transition table
// and returns a snapshot of the updated record.
func (m *Monitor) Record(serverID string, outcome domain.Outcome) (domain.ServerHealth, error) {
	r, ok := m.records[serverID]
	if !ok {
		return domain.ServerHealth{}, fmt.Errorf("%w: %s", errors.ErrHealthNotTracked, serverID)
	}

	now := m.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	h := &r.health
	h.State, h.ConsecutiveFailures = Next(h.State, h.ConsecutiveFailures, outcome, m.threshold)
	h.LastCheckedAt = &now

	if outcome.Success {
		latency := outcome.Latency
		h.LastLatency = &latency
		h.LastSuccessfulAt = &now
		h.LastError = ""
	} else {
		h.LastError = describe(outcome)
	}

	return copyHealth(r.health), nil
}

// Threshold returns the number of consecutive failures that marks a server unreachable.
func (m *Monitor) Threshold() int {
	return m.threshold
}

func (r *record) snapshot() domain.ServerHealth {
	r.mu.Lock()
	defer r.mu.Unlock()

	return copyHealth(r.health)
}

// copyHealth returns a copy that shares no pointers with h.
func copyHealth(h domain.ServerHealth) domain.ServerHealth {
	if h.LastCheckedAt != nil {
		t := *h.LastCheckedAt
		h.LastCheckedAt = &t
	}
	if h.LastSuccessfulAt != nil {
		t := *h.LastSuccessfulAt
		h.LastSuccessfulAt = &t
	}
	if h.LastLatency != nil {
		d := *h.LastLatency
		h.LastLatency = &d
	}
	return h
}

func describe(o domain.Outcome) string {
	if o.Message != "" {
		return o.Message
	}
	return string(o.Kind)
}
