package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mozilla-ai/fingate/internal/flags"
	"github.com/mozilla-ai/fingate/internal/perms"
)

// skeleton is written by Init, it mirrors the reference deployment of one market-data and one payments server.
const skeleton = `[gateway]
retry_count = 2
escalation_threshold = 3
health_check_interval = "30s"
health_check_timeout = "3s"

[[servers]]
id = "market-data"
url = "https://mcp.kite.trade/mcp"
credential_env = "KITE_API_KEY"
timeout = "10s"

[[servers]]
id = "payments"
url = "http://localhost:3000"
credential_env = "STRIPE_SECRET_KEY"
timeout = "15s"
retry_count = 3
`

// DefaultRetryCount is the default number of retries for transient failures.
func DefaultRetryCount() int {
	return 2
}

// DefaultEscalationThreshold is the default number of consecutive failures before a server is unreachable.
func DefaultEscalationThreshold() int {
	return 3
}

// DefaultHealthCheckInterval is the default interval for background probes.
func DefaultHealthCheckInterval() time.Duration {
	return 30 * time.Second
}

// DefaultHealthCheckTimeout is the default timeout for a background probe.
func DefaultHealthCheckTimeout() time.Duration {
	return 3 * time.Second
}

// DefaultPoolSize is the default number of pooled connections per server.
func DefaultPoolSize() int {
	return 4
}

// DefaultInitialBackoff is the default base delay between retries.
func DefaultInitialBackoff() time.Duration {
	return 200 * time.Millisecond
}

// DefaultMaxBackoff is the default cap on the delay between retries.
func DefaultMaxBackoff() time.Duration {
	return 5 * time.Second
}

// DefaultJitter is the default fraction of random variation applied to backoff delays.
func DefaultJitter() float64 {
	return 0.2
}

// DefaultServerTimeout is the default timeout for a single transport attempt.
func DefaultServerTimeout() time.Duration {
	return 10 * time.Second
}

// Init creates the base skeleton configuration file for the gateway.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(skeleton), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'fingate init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	_, err = toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: failed to decode config from file (%s): %w",
			ErrConfigLoadFailed,
			path,
			err,
		)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return cfg, nil
}

// Parse decodes and validates configuration from TOML text.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config: %w", ErrConfigLoadFailed, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)
	}

	return &cfg, nil
}

// Path returns the file path this configuration was loaded from, empty when parsed from text.
func (c *Config) Path() string {
	if c.configFilePath == "" {
		return flags.DefaultConfigFile
	}
	return c.configFilePath
}

// Resolve applies defaults and resolves credentials, producing the immutable Settings handed to the gateway.
// Credentials named by credential_env are looked up once, here, using lookup (os.LookupEnv when nil).
func (c *Config) Resolve(lookup LookupEnvFunc) (Settings, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if err := c.validate(); err != nil {
		return Settings{}, err
	}

	gw := resolveGateway(c.Gateway)

	servers := make([]ServerConfig, 0, len(c.Servers))
	for _, entry := range c.Servers {
		credential := entry.Credential
		if name := strings.TrimSpace(entry.CredentialEnv); name != "" {
			if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
				credential = strings.TrimSpace(v)
			}
		}

		srv := ServerConfig{
			ID:         entry.ID,
			BaseURL:    entry.URL,
			Catalog:    entry.CatalogName(),
			Credential: credential,
			Timeout:    durationOr(entry.Timeout, DefaultServerTimeout()),
			RetryCount: intOr(entry.RetryCount, gw.RetryCount),
			PoolSize:   intOr(entry.PoolSize, gw.PoolSize),
			Enabled:    entry.Enabled == nil || *entry.Enabled,
			Tools:      append([]string(nil), entry.Tools...),
		}
		if entry.RateLimit != nil {
			srv.RateLimit = *entry.RateLimit
		}

		servers = append(servers, srv)
	}

	return Settings{Gateway: gw, Servers: servers}, nil
}

func resolveGateway(s *GatewaySection) GatewaySettings {
	if s == nil {
		s = &GatewaySection{}
	}

	jitter := DefaultJitter()
	if s.Jitter != nil {
		jitter = *s.Jitter
	}

	return GatewaySettings{
		RetryCount:          intOr(s.RetryCount, DefaultRetryCount()),
		EscalationThreshold: intOr(s.EscalationThreshold, DefaultEscalationThreshold()),
		HealthCheckInterval: durationOr(s.HealthCheckInterval, DefaultHealthCheckInterval()),
		HealthCheckTimeout:  durationOr(s.HealthCheckTimeout, DefaultHealthCheckTimeout()),
		PoolSize:            intOr(s.PoolSize, DefaultPoolSize()),
		InitialBackoff:      durationOr(s.InitialBackoff, DefaultInitialBackoff()),
		MaxBackoff:          durationOr(s.MaxBackoff, DefaultMaxBackoff()),
		Jitter:              jitter,
	}
}

func (c *Config) validate() error {
	var validationErrors []error

	if len(c.Servers) == 0 {
		validationErrors = append(validationErrors, ErrNoServers)
	}

	if c.Gateway != nil {
		if err := c.Gateway.validate(); err != nil {
			validationErrors = append(validationErrors, err)
		}
	}

	seen := make(map[string]struct{}, len(c.Servers))
	for i, entry := range c.Servers {
		if err := entry.validate(); err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("server entry %d: %w", i, err))
			continue
		}
		if _, ok := seen[entry.ID]; ok {
			validationErrors = append(validationErrors, fmt.Errorf("%w: %s", ErrDuplicateServer, entry.ID))
		}
		seen[entry.ID] = struct{}{}
	}

	return errors.Join(validationErrors...)
}

func (s *GatewaySection) validate() error {
	var validationErrors []error

	if s.RetryCount != nil && *s.RetryCount < 0 {
		validationErrors = append(validationErrors, NewErrInvalidValue("gateway.retry_count", fmt.Sprint(*s.RetryCount)))
	}
	if s.EscalationThreshold != nil && *s.EscalationThreshold < 1 {
		validationErrors = append(
			validationErrors,
			NewErrInvalidValue("gateway.escalation_threshold", fmt.Sprint(*s.EscalationThreshold)),
		)
	}
	if s.PoolSize != nil && *s.PoolSize < 1 {
		validationErrors = append(validationErrors, NewErrInvalidValue("gateway.pool_size", fmt.Sprint(*s.PoolSize)))
	}
	if s.Jitter != nil && (*s.Jitter < 0 || *s.Jitter > 1) {
		validationErrors = append(validationErrors, NewErrInvalidValue("gateway.jitter", fmt.Sprint(*s.Jitter)))
	}

	for key, d := range map[string]*Duration{
		"gateway.health_check_interval": s.HealthCheckInterval,
		"gateway.health_check_timeout":  s.HealthCheckTimeout,
		"gateway.initial_backoff":       s.InitialBackoff,
		"gateway.max_backoff":           s.MaxBackoff,
	} {
		if d != nil && *d <= 0 {
			validationErrors = append(validationErrors, NewErrInvalidValue(key, d.String()))
		}
	}

	return errors.Join(validationErrors...)
}

func (e *ServerEntry) validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("server entry has empty id")
	}

	u, err := url.Parse(strings.TrimSpace(e.URL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return NewErrInvalidValue(e.ID+".url", e.URL)
	}

	if e.Timeout != nil && *e.Timeout <= 0 {
		return NewErrInvalidValue(e.ID+".timeout", e.Timeout.String())
	}
	if e.RetryCount != nil && *e.RetryCount < 0 {
		return NewErrInvalidValue(e.ID+".retry_count", fmt.Sprint(*e.RetryCount))
	}
	if e.PoolSize != nil && *e.PoolSize < 1 {
		return NewErrInvalidValue(e.ID+".pool_size", fmt.Sprint(*e.PoolSize))
	}
	if e.RateLimit != nil && *e.RateLimit < 0 {
		return NewErrInvalidValue(e.ID+".rate_limit", fmt.Sprint(*e.RateLimit))
	}

	return nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func durationOr(v *Duration, def time.Duration) time.Duration {
	if v == nil {
		return def
	}
	return time.Duration(*v)
}
