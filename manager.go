package careauth

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/careloop/careauth/tokenstore"
)

// Manager owns one authenticated session against the CareLoop platform: the
// access/refresh token pair, the resolved identity, and the lifecycle state.
// Construct it with [New]; call [Manager.Restore] once at startup, then use
// [Manager.Login], [Manager.Reauthorize] and [Manager.Logout] to drive the
// session. All methods are safe for concurrent use.
type Manager struct {
	cfg     Config
	store   tokenstore.Store
	client  *apiClient
	audit   *auditDispatcher
	metrics *metrics
	now     func() time.Time

	mu          sync.Mutex
	state       SessionState
	initialized bool
	user        *UserProfile
	pair        tokenstore.Pair
	inflight    *refreshCall
	closed      bool
}

// State returns the current lifecycle state.
func (m *Manager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Initialized reports whether startup restoration has completed. Accessors
// read as anonymous until it has.
func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// IsAuthenticated reports whether the session holds a resolved identity.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated
}

// CurrentUser returns a copy of the resolved identity, or nil when the
// session is not authenticated.
func (m *Manager) CurrentUser() *UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userCopyLocked()
}

// IsAdmin reports whether the session belongs to an administrator.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated && m.user != nil && m.user.RoleID.IsAdmin()
}

// IsContentProvider reports whether the session belongs to a content
// provider.
func (m *Manager) IsContentProvider() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated && m.user != nil && m.user.RoleID.IsContentProvider()
}

// AccessToken returns the current access token. ok is false when the session
// holds none.
func (m *Manager) AccessToken() (token string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.pair.AccessToken == "" {
		return "", false
	}
	return m.pair.AccessToken, true
}

// Snapshot returns a point-in-time copy of the observable session state.
func (m *Manager) Snapshot() SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := SessionSnapshot{
		State:           m.state,
		Initialized:     m.initialized,
		User:            m.userCopyLocked(),
		HasAccessToken:  m.pair.AccessToken != "",
		HasRefreshToken: m.pair.RefreshToken != "",
	}
	if m.pair.AccessToken != "" {
		snap.AccessExpiresAt = accessTokenExpiry(m.pair.AccessToken)
	}
	return snap
}

// Logout clears the persisted token pair and the in-memory session. It
// always leaves the session anonymous, even when clearing storage fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	m.mu.Unlock()

	err := m.resolveAnonymous(ctx)
	m.emit(EventLogout, nil, err)
	m.metrics.inc(MetricLogout)
	return err
}

// Close releases Manager resources, draining any queued audit events. The
// Manager is unusable afterwards; operations return [ErrManagerClosed].
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	if m.audit != nil {
		m.audit.close(m.cfg.Audit.FlushTimeout)
	}
	return nil
}

// Metrics returns a snapshot of internal counters, or a zero snapshot when
// metrics are disabled.
func (m *Manager) Metrics() MetricsSnapshot {
	return m.metrics.snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher queue was full.
func (m *Manager) AuditDropped() uint64 {
	return m.audit.Dropped()
}

// clearTokens drops the persisted pair along with the in-memory copy and
// identity. It never touches the lifecycle state: the operation that hit
// the failure owns that transition, so a restoration in flight stays in
// StateRestoring until it resolves.
func (m *Manager) clearTokens(ctx context.Context) error {
	err := m.store.Clear(ctx)
	if err != nil {
		log.Printf("careauth: clearing token store: %v", err)
	}

	m.mu.Lock()
	m.user = nil
	m.pair = tokenstore.Pair{}
	m.mu.Unlock()
	return err
}

// resolveAnonymous clears the tokens and settles the session as anonymous.
// The in-memory reset happens regardless of the storage outcome so the
// session never observes a half-cleared state.
func (m *Manager) resolveAnonymous(ctx context.Context) error {
	err := m.clearTokens(ctx)

	m.mu.Lock()
	m.state = StateAnonymous
	m.initialized = true
	m.mu.Unlock()
	return err
}

// setAuthenticated installs a resolved identity and its token pair.
func (m *Manager) setAuthenticated(user *UserProfile, pair tokenstore.Pair) {
	m.mu.Lock()
	m.state = StateAuthenticated
	m.initialized = true
	m.user = user
	m.pair = pair
	m.mu.Unlock()
}

func (m *Manager) userCopyLocked() *UserProfile {
	if m.state != StateAuthenticated || m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) emit(typ EventType, user *UserProfile, err error) {
	if m.audit == nil {
		return
	}
	ev := Event{Type: typ, At: m.now()}
	if user != nil {
		ev.AccountID = user.AccountID
		ev.Email = user.Email
	}
	if err != nil {
		ev.Error = err.Error()
	}
	m.audit.dispatch(ev)
}

// accessTokenExpiry peeks at the unverified exp claim of a JWT access token.
// Verification is the platform's job; the Manager only reports the expiry.
func accessTokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
