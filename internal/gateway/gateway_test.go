package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/domain"
	"github.com/mozilla-ai/fingate/internal/fallback"
	"github.com/mozilla-ai/fingate/internal/health"
	"github.com/mozilla-ai/fingate/internal/invoker"
	"github.com/mozilla-ai/fingate/internal/registry"
	"github.com/mozilla-ai/fingate/internal/transport"
)

// fakeTransport answers every Send with the current behavior for the target server.
type fakeTransport struct {
	mu     sync.Mutex
	errs   map[string]error
	stalls map[string]bool
	sends  map[string]int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{errs: map[string]error{}, stalls: map[string]bool{}, sends: map[string]int{}}
}

// stall makes Send block until the caller's context is done.
func (f *fakeTransport) stall(serverID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stalls[serverID] = true
}

func (f *fakeTransport) fail(serverID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[serverID] = err
}

func (f *fakeTransport) count(serverID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends[serverID]
}

func (f *fakeTransport) Send(
	ctx context.Context,
	cfg config.ServerConfig,
	_ string,
	toolName string,
	_ map[string]any,
	_ time.Duration,
) (json.RawMessage, error) {
	f.mu.Lock()
	f.sends[cfg.ID]++
	stalled := f.stalls[cfg.ID]
	err := f.errs[cfg.ID]
	f.mu.Unlock()

	if stalled {
		<-ctx.Done()
		return nil, &transport.Error{Kind: transport.KindTimeout, Message: ctx.Err().Error(), Err: ctx.Err()}
	}
	if err != nil {
		return nil, err
	}

	return fallback.NewToolResult(map[string]any{"live": true, "tool": toolName})
}

func (f *fakeTransport) Handshake(context.Context, config.ServerConfig, time.Duration) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeTransport) NewRequestID() string {
	return "req"
}

// failingFallback never produces a payload.
type failingFallback struct{}

func (failingFallback) Fallback(string, string, map[string]any) (json.RawMessage, error) {
	return nil, fmt.Errorf("no synthetic data")
}

func testSettings() config.Settings {
	return config.Settings{
		Gateway: config.GatewaySettings{
			RetryCount:          2,
			EscalationThreshold: 3,
			HealthCheckInterval: 30 * time.Second,
			HealthCheckTimeout:  3 * time.Second,
			PoolSize:            4,
			InitialBackoff:      200 * time.Millisecond,
			MaxBackoff:          5 * time.Second,
			Jitter:              0.2,
		},
		Servers: []config.ServerConfig{
			{
				ID:         "market-data",
				BaseURL:    "https://mcp.kite.trade/mcp",
				Catalog:    registry.CatalogMarketData,
				Credential: "kite-key",
				Timeout:    5 * time.Second,
				RetryCount: 2,
				PoolSize:   4,
				Enabled:    true,
			},
			{
				ID:         "payments",
				BaseURL:    "http://localhost:3000",
				Catalog:    registry.CatalogPayments,
				Timeout:    15 * time.Second,
				RetryCount: 3,
				PoolSize:   4,
				Enabled:    false,
			},
		},
	}
}

type harness struct {
	gateway   *Gateway
	transport *fakeTransport
	monitor   *health.Monitor
}

func newHarness(t *testing.T, fb contracts.FallbackProvider) harness {
	t.Helper()

	logger := hclog.NewNullLogger()
	settings := testSettings()
	tr := newFakeTransport()

	reg, err := registry.New(logger, settings.Servers)
	require.NoError(t, err)

	inv, err := invoker.New(
		logger,
		tr,
		reg,
		invoker.WithSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }),
	)
	require.NoError(t, err)

	monitor, err := health.NewMonitor(settings.ServerIDs(), health.WithEscalationThreshold(3))
	require.NoError(t, err)

	if fb == nil {
		p, err := fallback.New(settings.Servers)
		require.NoError(t, err)
		fb = p
	}

	deps, err := NewDependencies(logger, settings, inv, monitor, fb, reg)
	require.NoError(t, err)

	now := time.Date(2024, time.November, 29, 15, 30, 0, 0, time.UTC)
	gw, err := New(deps, WithMeterProvider(noop.NewMeterProvider()), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	return harness{gateway: gw, transport: tr, monitor: monitor}
}

var quoteArgs = map[string]any{"instruments": []string{"NSE:INFY", "NSE:TCS"}}

func TestGateway_Invoke_Success(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	result := h.gateway.Invoke(context.Background(), "market-data", registry.ToolGetQuotes, quoteArgs)
	require.True(t, result.IsSuccess())
	require.Equal(t, "market-data", result.ServerID)
	require.Equal(t, 1, result.Attempts)
	require.JSONEq(t, `{"live":true,"tool":"get_quotes"}`, string(structuredContent(t, result.Payload)))

	status, err := h.gateway.Health("market-data")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateConnected, status.State)
	require.Zero(t, status.ConsecutiveFailures)
	require.NotNil(t, status.LastSuccessfulAt)
	require.NotNil(t, status.LastLatency)
}

func TestGateway_Invoke_EscalatesThenRecovers(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.transport.fail("market-data", &transport.Error{Kind: transport.KindTimeout, Message: "deadline exceeded"})

	want := []struct {
		state    domain.HealthState
		failures int
	}{
		{domain.HealthStateDegraded, 1},
		{domain.HealthStateDegraded, 2},
		{domain.HealthStateUnreachable, 3},
	}

	for i, w := range want {
		result := h.gateway.Invoke(context.Background(), "market-data", registry.ToolGetQuotes, quoteArgs)
		require.True(t, result.IsFallback(), "call %d", i+1)
		require.Equal(t, domain.FailureTimeout, result.Reason)
		require.Equal(t, 3, result.Attempts)
		require.True(t, result.HasPayload())

		status, err := h.gateway.Health("market-data")
		require.NoError(t, err)
		require.Equal(t, w.state, status.State, "call %d", i+1)
		require.Equal(t, w.failures, status.ConsecutiveFailures, "call %d", i+1)
		require.Contains(t, status.LastError, "deadline exceeded")
	}

	// Three invocations of three attempts each.
	require.Equal(t, 9, h.transport.count("market-data"))

	h.transport.fail("market-data", nil)

	result := h.gateway.Invoke(context.Background(), "market-data", registry.ToolGetQuotes, quoteArgs)
	require.True(t, result.IsSuccess())

	status, err := h.gateway.Health("market-data")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateConnected, status.State)
	require.Zero(t, status.ConsecutiveFailures)
	require.Empty(t, status.LastError)
}

func TestGateway_Invoke_FallbackPayloadMatchesTool(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.transport.fail("market-data", &transport.Error{Kind: transport.KindUnauthorized, Status: 401, Message: "bad key"})

	result := h.gateway.Invoke(context.Background(), "market-data", registry.ToolGetQuotes, quoteArgs)
	require.True(t, result.IsFallback())
	require.Equal(t, domain.FailureUnauthorized, result.Reason)
	require.Equal(t, 1, result.Attempts)

	var payload struct {
		Quotes map[string]json.RawMessage `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(structuredContent(t, result.Payload), &payload))
	require.Contains(t, payload.Quotes, "NSE:INFY")
	require.Contains(t, payload.Quotes, "NSE:TCS")
}

func TestGateway_Invoke_FallbackShapeMatchesLiveResult(t *testing.T) {
	t.Parallel()

	live := `{"content":[{"type":"text","text":"{\"quotes\":{}}"}],"structuredContent":{"quotes":{}},"isError":false}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + live + `}`))
	}))

	settings := testSettings()
	settings.Servers[0].BaseURL = srv.URL
	settings.Servers[0].RetryCount = 0

	sys, err := Build(hclog.NewNullLogger(), settings, WithMeterProvider(noop.NewMeterProvider()))
	require.NoError(t, err)
	t.Cleanup(sys.Transport.CloseIdleConnections)

	success := sys.Gateway.Invoke(context.Background(), "market-data", registry.ToolGetQuotes, quoteArgs)
	require.True(t, success.IsSuccess(), success.Message)

	srv.Close()

	fb := sys.Gateway.Invoke(context.Background(), "market-data", registry.ToolGetQuotes, quoteArgs)
	require.True(t, fb.IsFallback(), fb.Message)
	require.Equal(t, domain.FailureUnreachable, fb.Reason)

	require.ElementsMatch(t, topLevelKeys(t, success.Payload), topLevelKeys(t, fb.Payload))

	var parsed mcp.CallToolResult
	require.NoError(t, json.Unmarshal(fb.Payload, &parsed))
	require.False(t, parsed.IsError)
	require.Len(t, parsed.Content, 1)
}

func TestGateway_Invoke_CallerDeadline(t *testing.T) {
	t.Parallel()

	t.Run("expired before the call", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)

		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		result := h.gateway.Invoke(ctx, "market-data", registry.ToolGetQuotes, quoteArgs)
		require.True(t, result.IsFailure())
		require.Equal(t, domain.FailureTimeout, result.FailureKind)
		require.Zero(t, result.Attempts)
		require.Zero(t, h.transport.count("market-data"))

		status, err := h.gateway.Health("market-data")
		require.NoError(t, err)
		require.Equal(t, domain.HealthStateUnknown, status.State)
	})

	t.Run("expired during the call", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)
		h.transport.stall("market-data")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		result := h.gateway.Invoke(ctx, "market-data", registry.ToolGetQuotes, quoteArgs)
		require.True(t, result.IsFailure())
		require.Equal(t, domain.FailureTimeout, result.FailureKind)

		status, err := h.gateway.Health("market-data")
		require.NoError(t, err)
		require.Equal(t, domain.HealthStateUnknown, status.State)
		require.Zero(t, status.ConsecutiveFailures)
	})
}

func structuredContent(t *testing.T, raw json.RawMessage) json.RawMessage {
	t.Helper()

	var envelope struct {
		StructuredContent json.RawMessage `json:"structuredContent"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))

	return envelope.StructuredContent
}

func topLevelKeys(t *testing.T, raw json.RawMessage) []string {
	t.Helper()

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))

	return slices.Collect(maps.Keys(fields))
}

func TestGateway_Invoke_UnknownServer(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	result := h.gateway.Invoke(context.Background(), "crypto", registry.ToolGetQuotes, quoteArgs)
	require.True(t, result.IsFailure())
	require.Equal(t, domain.FailureUnknownServer, result.FailureKind)
	require.Equal(t, "crypto", result.ServerID)
	require.False(t, result.HasPayload())
}

func TestGateway_Invoke_DisabledServer(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	result := h.gateway.Invoke(context.Background(), "payments", registry.ToolGetBalance, map[string]any{})
	require.True(t, result.IsFallback())
	require.Equal(t, domain.FailureDisabled, result.Reason)
	require.Zero(t, h.transport.count("payments"))

	status, err := h.gateway.Health("payments")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateUnknown, status.State)
}

func TestGateway_Invoke_Canceled(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := h.gateway.Invoke(ctx, "market-data", registry.ToolGetQuotes, quoteArgs)
	require.True(t, result.IsFailure())
	require.Equal(t, domain.FailureCanceled, result.FailureKind)
	require.Zero(t, h.transport.count("market-data"))

	status, err := h.gateway.Health("market-data")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateUnknown, status.State)
}

func TestGateway_Invoke_RejectedLocally(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{name: "unknown tool", tool: "place_order", args: map[string]any{}},
		{name: "invalid arguments", tool: registry.ToolGetQuotes, args: map[string]any{"instruments": "NSE:INFY"}},
		{name: "tool from another catalog", tool: registry.ToolListCharges, args: map[string]any{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, nil)

			result := h.gateway.Invoke(context.Background(), "market-data", tc.tool, tc.args)
			require.True(t, result.IsFailure())
			require.Equal(t, domain.FailureProtocol, result.FailureKind)
			require.Zero(t, result.Attempts)
			require.Zero(t, h.transport.count("market-data"))

			status, err := h.gateway.Health("market-data")
			require.NoError(t, err)
			require.Equal(t, domain.HealthStateUnknown, status.State)
		})
	}
}

func TestGateway_Invoke_FallbackUnavailable(t *testing.T) {
	t.Parallel()

	h := newHarness(t, failingFallback{})
	h.transport.fail("market-data", &transport.Error{Kind: transport.KindUnreachable, Message: "connection refused"})

	result := h.gateway.Invoke(context.Background(), "market-data", registry.ToolGetQuotes, quoteArgs)
	require.True(t, result.IsFailure())
	require.Equal(t, domain.FailureUnreachable, result.FailureKind)
	require.Equal(t, "market-data", result.ServerID)

	// The failure is still recorded even though no fallback was produced.
	status, err := h.gateway.Health("market-data")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateDegraded, status.State)
	require.Equal(t, 1, status.ConsecutiveFailures)
}

func TestGateway_Invoke_ConcurrentCallsAreCounted(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.transport.fail("market-data", &transport.Error{Kind: transport.KindProtocol, Status: 400, Message: "bad request"})

	const calls = 20

	var wg sync.WaitGroup
	for range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.gateway.Invoke(context.Background(), "market-data", registry.ToolGetLTP, quoteArgs)
		}()
	}
	wg.Wait()

	status, err := h.gateway.Health("market-data")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateUnreachable, status.State)
	require.Equal(t, calls, status.ConsecutiveFailures)
}

func TestGateway_Diagnostics(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	diag := h.gateway.Diagnostics()
	require.Len(t, diag, 2)
	require.Equal(t, "market-data", diag[0].ServerID)
	require.Equal(t, "payments", diag[1].ServerID)
	for _, d := range diag {
		require.Equal(t, domain.HealthStateUnknown, d.State)
	}

	// Reading diagnostics never contacts a server.
	require.Zero(t, h.transport.count("market-data"))
	require.Zero(t, h.transport.count("payments"))
}

func TestGateway_Report(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.transport.fail("market-data", &transport.Error{Kind: transport.KindTimeout, Message: "deadline exceeded"})
	h.gateway.Invoke(context.Background(), "market-data", registry.ToolGetQuotes, quoteArgs)

	report := h.gateway.Report()
	require.Equal(t, time.Date(2024, time.November, 29, 15, 30, 0, 0, time.UTC), report.GeneratedAt)
	require.Equal(t, domain.DiagnosticsSummary{Total: 2, Degraded: 1, Disabled: 1}, report.Summary)

	require.Len(t, report.Servers, 2)
	require.Equal(t, "market-data", report.Servers[0].Health.ServerID)
	require.True(t, report.Servers[0].Enabled)
	require.True(t, report.Servers[0].HasCredential)
	require.ElementsMatch(
		t,
		[]string{registry.ToolGetQuotes, registry.ToolGetLTP, registry.ToolGetOHLC},
		report.Servers[0].Tools,
	)
	require.False(t, report.Servers[1].Enabled)
	require.False(t, report.Servers[1].HasCredential)

	require.Len(t, report.Recommendations, 2)
	require.Contains(t, report.Recommendations[0], "'market-data' is degraded")
	require.Contains(t, report.Recommendations[1], "'payments' is in demo mode")
}

func TestNewDependencies_Validation(t *testing.T) {
	t.Parallel()

	logger := hclog.NewNullLogger()
	settings := testSettings()

	reg, err := registry.New(logger, settings.Servers)
	require.NoError(t, err)
	inv, err := invoker.New(logger, newFakeTransport(), reg)
	require.NoError(t, err)
	monitor, err := health.NewMonitor(settings.ServerIDs())
	require.NoError(t, err)
	fb, err := fallback.New(settings.Servers)
	require.NoError(t, err)

	untracked, err := health.NewMonitor([]string{"market-data"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		build   func() (Dependencies, error)
		wantErr string
	}{
		{
			name:    "nil logger",
			build:   func() (Dependencies, error) { return NewDependencies(nil, settings, inv, monitor, fb, reg) },
			wantErr: "logger cannot be nil",
		},
		{
			name: "nil invoker",
			build: func() (Dependencies, error) {
				var i *invoker.Invoker
				return NewDependencies(logger, settings, i, monitor, fb, reg)
			},
			wantErr: "tool invoker cannot be nil",
		},
		{
			name:    "no servers",
			build:   func() (Dependencies, error) { return NewDependencies(logger, config.Settings{}, inv, monitor, fb, reg) },
			wantErr: "server configurations not found",
		},
		{
			name:    "server not tracked by monitor",
			build:   func() (Dependencies, error) { return NewDependencies(logger, settings, inv, untracked, fb, reg) },
			wantErr: "server 'payments'",
		},
		{
			name:  "valid",
			build: func() (Dependencies, error) { return NewDependencies(logger, settings, inv, monitor, fb, reg) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := tc.build()
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	sys, err := Build(hclog.NewNullLogger(), testSettings(), WithMeterProvider(noop.NewMeterProvider()))
	require.NoError(t, err)
	require.NotNil(t, sys.Gateway)
	require.NotNil(t, sys.Prober)
	require.NotNil(t, sys.Registry)
	require.NotNil(t, sys.Transport)

	result := sys.Gateway.Invoke(context.Background(), "payments", registry.ToolListCharges, map[string]any{"limit": 2})
	require.True(t, result.IsFallback())
	require.Equal(t, domain.FailureDisabled, result.Reason)

	_, err = Build(nil, testSettings())
	require.ErrorContains(t, err, "logger cannot be nil")
}
