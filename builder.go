package careauth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/careloop/careauth/internal"
	"github.com/careloop/careauth/tokenstore"
)

// Builder assembles a [Manager]. Obtain one from [New], chain the With
// methods, then call [Builder.Build] exactly once.
type Builder struct {
	cfg        Config
	cfgSet     bool
	httpClient *http.Client
	store      tokenstore.Store
	sink       AuditSink
	built      bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the builder's configuration wholesale. Zero fields are
// still filled from defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	b.cfgSet = true
	return b
}

// WithBaseURL sets the platform origin without replacing the rest of the
// configuration.
func (b *Builder) WithBaseURL(url string) *Builder {
	b.cfg.API.BaseURL = url
	return b
}

// WithHTTPClient sets the client used for all platform requests. The default
// is a dedicated client with the configured API timeout.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithTokenStore sets the persistence backend for the token pair. The
// default is an in-memory store, which means sessions do not survive process
// restarts; production callers want [tokenstore.NewFileStore] or
// [tokenstore.NewRedisStore].
func (b *Builder) WithTokenStore(s tokenstore.Store) *Builder {
	b.store = s
	return b
}

// WithAuditSink sets the destination for session lifecycle events. Events
// are dispatched asynchronously; a nil sink (the default) disables auditing.
func (b *Builder) WithAuditSink(s AuditSink) *Builder {
	b.sink = s
	return b
}

// WithMetricsEnabled toggles internal counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.cfg.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns a ready Manager. The
// returned Manager starts in the uninitialized state; call
// [Manager.Restore] once at startup before reading session accessors.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("careauth: builder: Build called twice")
	}
	b.built = true

	cfg := cloneConfig(b.cfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Device.Token == "" {
		cfg.Device.Token = internal.NewDeviceToken()
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}

	store := b.store
	if store == nil {
		store = tokenstore.NewMemoryStore()
	}

	m := &Manager{
		cfg:    cfg,
		store:  store,
		client: newAPIClient(cfg.API, httpClient),
		now:    time.Now,
	}
	m.state = StateUninitialized
	if cfg.Metrics.Enabled {
		m.metrics = newMetrics()
	}
	if b.sink != nil {
		m.audit = newAuditDispatcher(b.sink, cfg.Audit)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("careauth: builder: %w", err)
	}
	return m, nil
}

// validate is a final coherence check on the assembled Manager.
func (m *Manager) validate() error {
	if m.store == nil {
		return errors.New("token store is nil")
	}
	if m.client == nil {
		return errors.New("api client is nil")
	}
	return nil
}
