package careauth

import (
	"context"
	"errors"
	"fmt"
)

// Restore performs the one-shot silent session restoration. Call it once at
// startup: it loads the persisted token pair and tries to resolve the
// identity behind it, falling back to a refresh-token rotation when the
// access token is rejected. It always resolves to Authenticated or
// Anonymous and marks the Manager initialized; failures never surface as
// errors to the caller, only unexpected conditions (closed Manager, repeat
// call) do.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return fmt.Errorf("careauth: restore already ran (state %s)", m.state)
	}
	m.state = StateRestoring
	m.mu.Unlock()

	start := m.now()
	user, err := m.restore(ctx)

	// The session resolves exactly once, here. Until this point readers see
	// StateRestoring and Initialized() == false, no matter which phase of
	// the restoration failed along the way.
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.state = StateAnonymous
	}
	m.initialized = true
	m.mu.Unlock()

	switch {
	case err == nil:
		m.emit(EventRestore, user, nil)
		m.metrics.inc(MetricRestoreSuccess)
		m.metrics.observe(MetricRestoreLatency, m.now().Sub(start))
	case errors.Is(err, errNoStoredSession):
		m.emit(EventRestoreAnonymous, nil, nil)
		m.metrics.inc(MetricRestoreAnonymous)
	default:
		m.emit(EventRestoreAnonymous, nil, err)
		m.metrics.inc(MetricRestoreFailure)
	}
	return nil
}

// errNoStoredSession distinguishes "nothing to restore" from a restoration
// that had tokens and failed. Both end Anonymous; only the latter is worth
// an error in the audit trail.
var errNoStoredSession = errors.New("no stored session")

// restore implements the two-phase restoration. Phase one resolves the
// identity with the stored access token; when the platform rejects it, phase
// two rotates the refresh token and retries identity resolution with the new
// pair. Any failure beyond that point clears the session.
func (m *Manager) restore(ctx context.Context) (*UserProfile, error) {
	pair, err := m.store.Load(ctx)
	if err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		// Nothing usable persisted; a half-pair is treated the same as an
		// empty store and swept away.
		_ = m.clearTokens(ctx)
		return nil, errNoStoredSession
	}

	user, err := m.fetchUser(ctx, pair.AccessToken)
	if err == nil {
		m.setAuthenticated(user, pair)
		return user, nil
	}

	// The access token was rejected but the refresh token may still be
	// live. fetchUser cleared the persisted pair; the rotation below runs
	// on the in-memory copy and re-persists on success.
	user, err = m.refreshSession(ctx, pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionRestoreFailed, err)
	}
	return user, nil
}
