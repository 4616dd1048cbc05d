package careauth

import (
	"context"
	"fmt"
)

// refreshCall is a single in-flight refresh attempt shared by every
// concurrent Reauthorize caller.
type refreshCall struct {
	done chan struct{}
	err  error
}

// Reauthorize rotates the token pair after the platform reported an expired
// access token. Concurrent calls share one in-flight attempt: only the first
// caller talks to the platform, the rest wait for its outcome. On failure
// the session is logged out and [ErrRefreshFailed] (or [ErrNoRefreshToken])
// is returned; the caller's only recourse is a fresh Login.
func (m *Manager) Reauthorize(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	if !m.initialized {
		m.mu.Unlock()
		return ErrNotInitialized
	}
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	refreshToken := m.pair.RefreshToken
	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	_, err := m.refreshSession(ctx, refreshToken)

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()
	call.err = err
	close(call.done)
	return err
}

// refreshSession exchanges a refresh token for a rotated pair, persists the
// new pair, then resolves the identity behind the new access token. Absence
// of a refresh token and any failure along the way force a full logout, so
// the session is never left holding tokens the platform has burned.
func (m *Manager) refreshSession(ctx context.Context, refreshToken string) (*UserProfile, error) {
	if refreshToken == "" {
		_ = m.resolveAnonymous(ctx)
		m.emit(EventRefreshFailed, nil, ErrNoRefreshToken)
		m.metrics.inc(MetricRefreshFailure)
		return nil, ErrNoRefreshToken
	}

	start := m.now()
	pair, err := m.client.refresh(ctx, refreshToken)
	if err != nil {
		_ = m.resolveAnonymous(ctx)
		err = fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		m.emit(EventRefreshFailed, nil, err)
		m.metrics.inc(MetricRefreshFailure)
		return nil, err
	}

	// Persist before resolving identity: the old refresh token is already
	// burned server-side, losing the new pair here would strand the user.
	if err := m.store.Save(ctx, pair); err != nil {
		_ = m.resolveAnonymous(ctx)
		err = fmt.Errorf("%w: persisting rotated pair: %v", ErrRefreshFailed, err)
		m.emit(EventRefreshFailed, nil, err)
		m.metrics.inc(MetricRefreshFailure)
		return nil, err
	}

	user, err := m.fetchUser(ctx, pair.AccessToken)
	if err != nil {
		// fetchUser cleared the tokens; this settles the state.
		_ = m.resolveAnonymous(ctx)
		err = fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		m.emit(EventRefreshFailed, nil, err)
		m.metrics.inc(MetricRefreshFailure)
		return nil, err
	}

	m.setAuthenticated(user, pair)
	m.emit(EventRefresh, user, nil)
	m.metrics.inc(MetricRefreshSuccess)
	m.metrics.observe(MetricRefreshLatency, m.now().Sub(start))
	return user, nil
}
