package careauth

import (
	"context"
	"fmt"
	"strings"
)

// Login exchanges credentials for a session. On success the token pair is
// persisted, the identity is resolved, and the session becomes
// authenticated. Credential rejection surfaces as [ErrAuthenticationFailed];
// empty or malformed credentials as [ErrInvalidLogin]. A failure after
// sign-in (identity resolution) clears the freshly stored tokens so no
// half-built session survives.
func (m *Manager) Login(ctx context.Context, email, password string) (*UserProfile, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.mu.Unlock()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidLogin)
	}
	if !plausibleEmail(email) {
		return nil, fmt.Errorf("%w: malformed email %q", ErrInvalidLogin, email)
	}

	start := m.now()
	pair, err := m.client.signIn(ctx, email, password, m.deviceToken(ctx))
	if err != nil {
		m.emit(EventLoginFailed, nil, err)
		m.metrics.inc(MetricLoginFailure)
		return nil, err
	}

	if err := m.store.Save(ctx, pair); err != nil {
		m.emit(EventLoginFailed, nil, err)
		m.metrics.inc(MetricLoginFailure)
		return nil, fmt.Errorf("careauth: persisting token pair: %w", err)
	}

	user, err := m.fetchUser(ctx, pair.AccessToken)
	if err != nil {
		// Tokens and identity were already cleared by fetchUser. An
		// initialized session falls back to anonymous; before Restore has
		// run the session stays uninitialized so restoration can still
		// proceed.
		m.mu.Lock()
		if m.initialized {
			m.state = StateAnonymous
		}
		m.mu.Unlock()
		m.emit(EventLoginFailed, nil, err)
		m.metrics.inc(MetricLoginFailure)
		return nil, err
	}

	m.setAuthenticated(user, pair)
	m.emit(EventLogin, user, nil)
	m.metrics.inc(MetricLoginSuccess)
	m.metrics.observe(MetricLoginLatency, m.now().Sub(start))
	out := *user
	return &out, nil
}

// fetchUser resolves the identity behind an access token. On any failure the
// persisted tokens and the in-memory identity are cleared before the error
// is returned, so callers never retry against a token the platform has
// rejected. The lifecycle state is left alone: the calling operation decides
// how the failure resolves.
func (m *Manager) fetchUser(ctx context.Context, accessToken string) (*UserProfile, error) {
	user, err := m.client.identity(ctx, accessToken)
	if err != nil {
		// clearTokens logs storage trouble itself; the identity error is
		// the one worth returning.
		_ = m.clearTokens(ctx)
		return nil, err
	}
	return user, nil
}

// plausibleEmail applies the cheapest shape check that still catches
// obvious typos: an '@' with something on both sides. Anything stricter
// belongs to the platform.
func plausibleEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

// deviceToken resolves the device identifier for a sign-in request: a
// per-call context override wins over the configured (or generated) token.
func (m *Manager) deviceToken(ctx context.Context) string {
	if tok, ok := DeviceTokenFromContext(ctx); ok {
		return tok
	}
	return m.cfg.Device.Token
}
