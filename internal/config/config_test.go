package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/fingate/internal/flags"
)

func TestDefaultLoader_InitThenLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), flags.DefaultConfigFile)
	loader := &DefaultLoader{}

	require.NoError(t, loader.Init(path))

	err := loader.Init(path)
	require.ErrorContains(t, err, "already exists")

	cfg, err := loader.Load(path)
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path())
	require.Len(t, cfg.Servers, 2)
	require.Equal(t, "market-data", cfg.Servers[0].ID)
	require.Equal(t, "payments", cfg.Servers[1].ID)
}

func TestDefaultLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte("[gateway]\n"), 0o644))

	malformed := filepath.Join(dir, "malformed.toml")
	require.NoError(t, os.WriteFile(malformed, []byte("[[servers]\nid ="), 0o644))

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[[servers]]\nid = \"a\"\nurl = \"ftp://example.com\"\n"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "empty path", path: "  ", wantErr: "path cannot be empty"},
		{name: "missing file", path: filepath.Join(dir, "missing.toml"), wantErr: "run: 'fingate init'"},
		{name: "no servers", path: empty, wantErr: "no servers configured"},
		{name: "malformed", path: malformed, wantErr: "failed to decode config"},
		{name: "invalid url", path: invalid, wantErr: "a.url"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := (&DefaultLoader{}).Load(tc.path)
			require.ErrorIs(t, err, ErrConfigLoadFailed)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestParse_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "valid",
			data: `
[[servers]]
id = "market-data"
url = "https://mcp.kite.trade/mcp"
`,
		},
		{name: "no servers", data: `[gateway]`, wantErr: "no servers configured"},
		{
			name: "empty id",
			data: `
[[servers]]
url = "https://example.com"
`,
			wantErr: "empty id",
		},
		{
			name: "duplicate id",
			data: `
[[servers]]
id = "a"
url = "https://example.com"

[[servers]]
id = "a"
url = "https://example.org"
`,
			wantErr: "duplicate server entry: a",
		},
		{
			name: "relative url",
			data: `
[[servers]]
id = "a"
url = "/mcp"
`,
			wantErr: "a.url",
		},
		{
			name: "negative retry count",
			data: `
[[servers]]
id = "a"
url = "https://example.com"
retry_count = -1
`,
			wantErr: "a.retry_count",
		},
		{
			name: "zero timeout",
			data: `
[[servers]]
id = "a"
url = "https://example.com"
timeout = "0s"
`,
			wantErr: "a.timeout",
		},
		{
			name: "zero threshold",
			data: `
[gateway]
escalation_threshold = 0

[[servers]]
id = "a"
url = "https://example.com"
`,
			wantErr: "gateway.escalation_threshold",
		},
		{
			name: "jitter out of range",
			data: `
[gateway]
jitter = 1.5

[[servers]]
id = "a"
url = "https://example.com"
`,
			wantErr: "gateway.jitter",
		},
		{
			name: "bad duration",
			data: `
[gateway]
health_check_interval = "soon"

[[servers]]
id = "a"
url = "https://example.com"
`,
			wantErr: "failed to decode config",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Parse(tc.data)
			if tc.wantErr == "" {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				return
			}
			require.ErrorIs(t, err, ErrConfigLoadFailed)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestConfig_Resolve_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(`
[[servers]]
id = "market-data"
url = "https://mcp.kite.trade/mcp"
`)
	require.NoError(t, err)

	settings, err := cfg.Resolve(func(string) (string, bool) { return "", false })
	require.NoError(t, err)

	require.Equal(t, GatewaySettings{
		RetryCount:          DefaultRetryCount(),
		EscalationThreshold: DefaultEscalationThreshold(),
		HealthCheckInterval: DefaultHealthCheckInterval(),
		HealthCheckTimeout:  DefaultHealthCheckTimeout(),
		PoolSize:            DefaultPoolSize(),
		InitialBackoff:      DefaultInitialBackoff(),
		MaxBackoff:          DefaultMaxBackoff(),
		Jitter:              DefaultJitter(),
	}, settings.Gateway)

	require.Equal(t, []ServerConfig{{
		ID:         "market-data",
		BaseURL:    "https://mcp.kite.trade/mcp",
		Catalog:    "market-data",
		Timeout:    DefaultServerTimeout(),
		RetryCount: DefaultRetryCount(),
		PoolSize:   DefaultPoolSize(),
		Enabled:    true,
		Tools:      []string(nil),
	}}, settings.Servers)
}

func TestConfig_Resolve_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(`
[gateway]
retry_count = 1
pool_size = 8
jitter = 0

[[servers]]
id = "zerodha"
url = "https://mcp.kite.trade/mcp"
catalog = "market-data"
credential_env = "KITE_API_KEY"
timeout = "10s"
tools = ["get_quotes"]

[[servers]]
id = "stripe"
url = "http://localhost:3000"
catalog = "payments"
credential = "sk_inline"
credential_env = "STRIPE_SECRET_KEY"
retry_count = 3
pool_size = 2
rate_limit = 5.0
enabled = false
`)
	require.NoError(t, err)

	env := map[string]string{"KITE_API_KEY": " kite-key "}
	settings, err := cfg.Resolve(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)

	require.Equal(t, 1, settings.Gateway.RetryCount)
	require.Equal(t, 8, settings.Gateway.PoolSize)
	require.Zero(t, settings.Gateway.Jitter)
	require.Equal(t, []string{"zerodha", "stripe"}, settings.ServerIDs())

	zerodha, ok := settings.Server("zerodha")
	require.True(t, ok)
	require.Equal(t, "market-data", zerodha.Catalog)
	require.Equal(t, "kite-key", zerodha.Credential)
	require.Equal(t, 10*time.Second, zerodha.Timeout)
	require.Equal(t, 1, zerodha.RetryCount)
	require.Equal(t, 8, zerodha.PoolSize)
	require.Equal(t, []string{"get_quotes"}, zerodha.Tools)
	require.True(t, zerodha.Enabled)

	// An unset environment variable keeps the inline credential.
	stripe, ok := settings.Server("stripe")
	require.True(t, ok)
	require.Equal(t, "sk_inline", stripe.Credential)
	require.True(t, stripe.HasCredential())
	require.Equal(t, 3, stripe.RetryCount)
	require.Equal(t, 2, stripe.PoolSize)
	require.InDelta(t, 5.0, stripe.RateLimit, 0.0001)
	require.False(t, stripe.Enabled)

	_, ok = settings.Server("missing")
	require.False(t, ok)
}

func TestSettings_ServerReturnsCopy(t *testing.T) {
	t.Parallel()

	settings := Settings{Servers: []ServerConfig{{ID: "a", Tools: []string{"get_quotes"}}}}

	srv, ok := settings.Server("a")
	require.True(t, ok)
	srv.Tools[0] = "changed"

	require.Equal(t, "get_quotes", settings.Servers[0].Tools[0])
}

func TestConfig_Path_DefaultsWhenParsed(t *testing.T) {
	t.Parallel()

	cfg, err := Parse("[[servers]]\nid = \"a\"\nurl = \"https://example.com\"\n")
	require.NoError(t, err)
	require.Equal(t, flags.DefaultConfigFile, cfg.Path())
}

func TestDuration_Text(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	require.Equal(t, Duration(90*time.Second), d)

	text, err := d.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "1m30s", string(text))

	require.Error(t, d.UnmarshalText([]byte("ninety")))

	var nilDuration *Duration
	require.Empty(t, nilDuration.String())
}

func TestParse_SentinelErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse(`[gateway]`)
	require.ErrorIs(t, err, ErrNoServers)

	_, err = Parse(`
[[servers]]
id = "market-data"
url = "https://example.com"

[[servers]]
id = "market-data"
url = "https://example.org"
`)
	require.ErrorIs(t, err, ErrDuplicateServer)
	require.ErrorIs(t, err, ErrConfigLoadFailed)
}
