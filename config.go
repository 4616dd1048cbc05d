package careauth

import (
	"fmt"
	"strings"
	"time"
)

// Config controls the behavior of a [Manager]. Zero fields are filled from
// defaults by [Builder.Build]; use [DefaultConfig] to inspect them.
type Config struct {
	API     APIConfig
	Device  DeviceConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// APIConfig locates the platform authentication endpoints.
type APIConfig struct {
	// BaseURL is the platform origin, e.g. "https://api.careloop.dev".
	BaseURL string
	// SignInPath is the credential sign-in endpoint path.
	SignInPath string
	// IdentityPath is the current-identity endpoint path.
	IdentityPath string
	// RefreshPath is the refresh-token rotation endpoint path.
	RefreshPath string
	// Timeout bounds each request when the caller's context carries no
	// earlier deadline.
	Timeout time.Duration
	// UserAgent is sent on every request when non-empty.
	UserAgent string
}

// DeviceConfig controls the device token attached to sign-in requests.
type DeviceConfig struct {
	// Token identifies this installation to the platform. When empty a
	// random token is generated once per Manager.
	Token string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	// QueueSize is the dispatcher buffer; events beyond it are dropped and
	// counted rather than blocking session operations.
	QueueSize int
	// FlushTimeout bounds the drain performed by [Manager.Close].
	FlushTimeout time.Duration
}

// MetricsConfig controls internal counter collection.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration used when the builder is given
// none.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			SignInPath:   "/api/v1/auth/sign-in",
			IdentityPath: "/api/v1/auth/identity",
			RefreshPath:  "/api/v1/auth/refresh",
			Timeout:      15 * time.Second,
		},
		Audit: AuditConfig{
			QueueSize:    256,
			FlushTimeout: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first problem with the configuration, if any.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("careauth: config: API.BaseURL is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("careauth: config: API.BaseURL must be an http(s) origin, got %q", c.API.BaseURL)
	}
	for _, p := range []struct {
		name, val string
	}{
		{"API.SignInPath", c.API.SignInPath},
		{"API.IdentityPath", c.API.IdentityPath},
		{"API.RefreshPath", c.API.RefreshPath},
	} {
		if !strings.HasPrefix(p.val, "/") {
			return fmt.Errorf("careauth: config: %s must start with '/', got %q", p.name, p.val)
		}
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("careauth: config: API.Timeout must be positive, got %v", c.API.Timeout)
	}
	if c.Audit.QueueSize < 0 {
		return fmt.Errorf("careauth: config: Audit.QueueSize must not be negative, got %d", c.Audit.QueueSize)
	}
	return nil
}

// applyDefaults fills zero fields from DefaultConfig. BaseURL stays empty so
// Validate can reject a config that never set it.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.API.SignInPath == "" {
		c.API.SignInPath = def.API.SignInPath
	}
	if c.API.IdentityPath == "" {
		c.API.IdentityPath = def.API.IdentityPath
	}
	if c.API.RefreshPath == "" {
		c.API.RefreshPath = def.API.RefreshPath
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = def.API.Timeout
	}
	if c.Audit.QueueSize == 0 {
		c.Audit.QueueSize = def.Audit.QueueSize
	}
	if c.Audit.FlushTimeout == 0 {
		c.Audit.FlushTimeout = def.Audit.FlushTimeout
	}
}

// cloneConfig returns a copy that the Manager can hold without aliasing the
// caller's struct.
func cloneConfig(c Config) Config {
	// All fields are values; a shallow copy is a deep copy today. Keep the
	// indirection so slice/map fields added later get handled in one place.
	return c
}
