package config

import (
	"fmt"
	"slices"
	"time"
)

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Loader   = (*validatingLoader)(nil)
)

type Loader interface {
	Load(path string) (*Config, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

// DefaultLoader loads configuration from a TOML file on disk.
type DefaultLoader struct{}

// LookupEnvFunc resolves an environment variable, matching the signature of os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// Config represents the .fingate.toml file structure.
//
// NOTE: if you add/remove fields you must review the associated defaults and validation,
// along with Settings which is the resolved, immutable form handed to the gateway.
type Config struct {
	// Gateway contains defaults applied to every server, and gateway wide behavior.
	Gateway *GatewaySection `json:"gateway,omitempty" toml:"gateway,omitempty" yaml:"gateway,omitempty"`

	// Servers lists the remote MCP servers in configuration order.
	Servers []ServerEntry `json:"servers" toml:"servers" yaml:"servers"`

	configFilePath string `toml:"-"`
}

// GatewaySection contains gateway wide settings. All fields are optional and fall back to defaults.
type GatewaySection struct {
	// RetryCount is the default number of retries for transient failures.
	RetryCount *int `json:"retryCount,omitempty" toml:"retry_count,omitempty" yaml:"retry_count,omitempty"`

	// EscalationThreshold is the number of consecutive failures that marks a server unreachable.
	EscalationThreshold *int `json:"escalationThreshold,omitempty" toml:"escalation_threshold,omitempty" yaml:"escalation_threshold,omitempty"`

	// HealthCheckInterval is how often the background probe runs for each server.
	HealthCheckInterval *Duration `json:"healthCheckInterval,omitempty" toml:"health_check_interval,omitempty" yaml:"health_check_interval,omitempty"`

	// HealthCheckTimeout bounds a single background probe.
	HealthCheckTimeout *Duration `json:"healthCheckTimeout,omitempty" toml:"health_check_timeout,omitempty" yaml:"health_check_timeout,omitempty"`

	// PoolSize is the default number of pooled connections per server.
	PoolSize *int `json:"poolSize,omitempty" toml:"pool_size,omitempty" yaml:"pool_size,omitempty"`

	// InitialBackoff is the base retry delay.
	InitialBackoff *Duration `json:"initialBackoff,omitempty" toml:"initial_backoff,omitempty" yaml:"initial_backoff,omitempty"`

	// MaxBackoff caps the retry delay.
	MaxBackoff *Duration `json:"maxBackoff,omitempty" toml:"max_backoff,omitempty" yaml:"max_backoff,omitempty"`

	// Jitter is the fraction (0..1) of random variation applied to each backoff delay.
	Jitter *float64 `json:"jitter,omitempty" toml:"jitter,omitempty" yaml:"jitter,omitempty"`
}

// ServerEntry represents the configuration of a single remote MCP server.
type ServerEntry struct {
	// ID is the unique identifier referenced by callers.
	// e.g. 'market-data'
	ID string `json:"id" toml:"id" yaml:"id"`

	// URL is the JSON-RPC endpoint of the server.
	// e.g. 'https://mcp.kite.trade/mcp'
	URL string `json:"url" toml:"url" yaml:"url"`

	// Catalog names the built-in tool catalog served by this server, defaults to ID.
	Catalog string `json:"catalog,omitempty" toml:"catalog,omitempty" yaml:"catalog,omitempty"`

	// Credential is an inline API key. Prefer CredentialEnv.
	Credential string `json:"-" toml:"credential,omitempty" yaml:"-"`

	// CredentialEnv names the environment variable holding the API key.
	CredentialEnv string `json:"credentialEnv,omitempty" toml:"credential_env,omitempty" yaml:"credential_env,omitempty"`

	// Timeout bounds a single transport attempt.
	Timeout *Duration `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"`

	// RetryCount overrides the gateway retry count for this server.
	RetryCount *int `json:"retryCount,omitempty" toml:"retry_count,omitempty" yaml:"retry_count,omitempty"`

	// PoolSize overrides the gateway pool size for this server.
	PoolSize *int `json:"poolSize,omitempty" toml:"pool_size,omitempty" yaml:"pool_size,omitempty"`

	// RateLimit is the maximum number of requests per second sent to this server, zero means unlimited.
	RateLimit *float64 `json:"rateLimit,omitempty" toml:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// Enabled set to false puts the server in demo mode: every call is served from fallback data.
	Enabled *bool `json:"enabled,omitempty" toml:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Tools lists the names of the tools which should be allowed on this server, empty allows the whole catalog.
	// e.g. 'get_quotes'
	Tools []string `json:"tools,omitempty" toml:"tools,omitempty" yaml:"tools,omitempty"`
}

// Duration is a custom time.Duration type that provides improved marshaling.
type Duration time.Duration

// Settings is the resolved, validated configuration. It is constructed once at startup
// and passed into the gateway, callers must treat it as read-only.
type Settings struct {
	Gateway GatewaySettings
	Servers []ServerConfig
}

// GatewaySettings contains resolved gateway wide settings.
type GatewaySettings struct {
	RetryCount          int
	EscalationThreshold int
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
	PoolSize            int
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	Jitter              float64
}

// ServerConfig is the resolved configuration for one remote MCP server.
type ServerConfig struct {
	ID         string
	BaseURL    string
	Catalog    string
	Credential string
	Timeout    time.Duration
	RetryCount int
	PoolSize   int
	RateLimit  float64
	Enabled    bool
	Tools      []string
}

// ServerIDs returns the configured server identifiers in configuration order.
func (s Settings) ServerIDs() []string {
	ids := make([]string, 0, len(s.Servers))
	for _, srv := range s.Servers {
		ids = append(ids, srv.ID)
	}
	return ids
}

// Server returns the configuration for the given server ID.
func (s Settings) Server(id string) (ServerConfig, bool) {
	for _, srv := range s.Servers {
		if srv.ID == id {
			return srv.Clone(), true
		}
	}
	return ServerConfig{}, false
}

// Clone returns a deep copy of the ServerConfig.
func (c ServerConfig) Clone() ServerConfig {
	c.Tools = slices.Clone(c.Tools)
	return c
}

// HasCredential reports whether a credential was resolved for the server.
func (c ServerConfig) HasCredential() bool {
	return c.Credential != ""
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d *Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(*d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// String returns a human-readable string representation of the duration.
func (d *Duration) String() string {
	if d == nil {
		return ""
	}
	return time.Duration(*d).String()
}

// CatalogName returns the tool catalog served by this server, defaulting to its ID.
func (e *ServerEntry) CatalogName() string {
	if e.Catalog != "" {
		return e.Catalog
	}
	return e.ID
}

func (e *ServerEntry) String() string {
	return fmt.Sprintf("%s (%s)", e.ID, e.URL)
}
