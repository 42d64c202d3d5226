package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/domain"
	"github.com/mozilla-ai/fingate/internal/gateway"
	"github.com/mozilla-ai/fingate/internal/registry"
)

// newMCPServer returns a server answering every JSON-RPC request with an empty result.
func newMCPServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":{}}`))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func testSystem(t *testing.T, marketURL string) *gateway.System {
	t.Helper()

	settings := config.Settings{
		Gateway: config.GatewaySettings{
			EscalationThreshold: 3,
			HealthCheckInterval: time.Hour,
			HealthCheckTimeout:  time.Second,
			PoolSize:            1,
			InitialBackoff:      time.Millisecond,
			MaxBackoff:          time.Millisecond,
		},
		Servers: []config.ServerConfig{
			{
				ID:         "market-data",
				BaseURL:    marketURL,
				Catalog:    registry.CatalogMarketData,
				Credential: "kite-key",
				Timeout:    time.Second,
				PoolSize:   1,
				Enabled:    true,
			},
			{
				ID:       "payments",
				BaseURL:  "http://localhost:3000",
				Catalog:  registry.CatalogPayments,
				Timeout:  time.Second,
				PoolSize: 1,
				Enabled:  false,
			},
		},
	}

	sys, err := gateway.Build(hclog.NewNullLogger(), settings, gateway.WithMeterProvider(noop.NewMeterProvider()))
	require.NoError(t, err)
	t.Cleanup(sys.Transport.CloseIdleConnections)

	return sys
}

func TestNewDependencies(t *testing.T) {
	t.Parallel()

	sys := testSystem(t, "http://127.0.0.1:1")
	logger := hclog.NewNullLogger()

	var nilLogger hclog.Logger
	var nilGateway *gateway.Gateway

	tests := []struct {
		name    string
		logger  hclog.Logger
		addr    string
		gateway *gateway.Gateway
		wantErr string
	}{
		{name: "valid", logger: logger, addr: "localhost:8090", gateway: sys.Gateway},
		{name: "nil logger", logger: nilLogger, addr: "localhost:8090", gateway: sys.Gateway, wantErr: "logger cannot be nil"},
		{name: "bad address", logger: logger, addr: "localhost", gateway: sys.Gateway, wantErr: "invalid API address 'localhost'"},
		{name: "nil gateway", logger: logger, addr: "localhost:8090", gateway: nilGateway, wantErr: "gateway cannot be nil"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deps, err := NewDependencies(tc.logger, tc.addr, tc.gateway, sys.Prober, sys.Transport)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.addr, deps.APIAddr)
		})
	}
}

func TestDependencies_Validate_NilProber(t *testing.T) {
	t.Parallel()

	sys := testSystem(t, "http://127.0.0.1:1")
	deps := Dependencies{
		APIAddr: "localhost:8090",
		Logger:  hclog.NewNullLogger(),
		Gateway: sys.Gateway,
	}

	require.EqualError(t, deps.Validate(), "health prober cannot be nil")
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	require.NoError(t, err)
	require.True(t, opts.HealthChecks)
	require.Equal(t, DefaultStartupProbeTimeout(), opts.StartupProbeTimeout)

	opts, err = NewOptions(nil, WithHealthChecks(false), WithStartupProbeTimeout(0), WithAPIOptions(WithCORSEnabled(true)))
	require.NoError(t, err)
	require.False(t, opts.HealthChecks)
	require.Zero(t, opts.StartupProbeTimeout)
	require.Len(t, opts.APIOptions, 1)

	_, err = NewOptions(WithStartupProbeTimeout(-time.Second))
	require.EqualError(t, err, "startup probe timeout cannot be negative, got -1s")
}

func TestNewDaemon_InvalidAPIOptions(t *testing.T) {
	t.Parallel()

	sys := testSystem(t, "http://127.0.0.1:1")
	deps, err := NewDependencies(hclog.NewNullLogger(), "127.0.0.1:0", sys.Gateway, sys.Prober, sys.Transport)
	require.NoError(t, err)

	_, err = NewDaemon(deps, WithAPIOptions(WithShutdownTimeout(0)))
	require.ErrorContains(t, err, "shutdown timeout must be positive")
}

// Not parallel: starting the API server sets huma's global error constructor.
func TestDaemon_StartAndManage_ProbesThenStops(t *testing.T) {
	srv := newMCPServer(t)
	sys := testSystem(t, srv.URL)

	deps, err := NewDependencies(hclog.NewNullLogger(), "127.0.0.1:0", sys.Gateway, sys.Prober, sys.Transport)
	require.NoError(t, err)

	d, err := NewDaemon(deps, WithHealthChecks(false))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.StartAndManage(ctx) }()

	require.Eventually(t, func() bool {
		h, err := sys.Gateway.Health("market-data")
		return err == nil && h.State == domain.HealthStateConnected
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop after cancellation")
	}

	// Disabled servers are never probed.
	h, err := sys.Gateway.Health("payments")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStateUnknown, h.State)
}

func TestDaemon_StartAndManage_ListenFailure(t *testing.T) {
	blocker := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(blocker.Close)

	sys := testSystem(t, "http://127.0.0.1:1")
	deps, err := NewDependencies(hclog.NewNullLogger(), blocker.Listener.Addr().String(), sys.Gateway, sys.Prober, sys.Transport)
	require.NoError(t, err)

	d, err := NewDaemon(deps, WithHealthChecks(false), WithStartupProbeTimeout(0))
	require.NoError(t, err)

	err = d.StartAndManage(context.Background())
	require.ErrorContains(t, err, "API server failed")
}
