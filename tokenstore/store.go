// Package tokenstore persists the session token pair across process
// restarts. The pair is the only session state that survives a restart; the
// identity is always re-resolved from the platform.
//
// Stores uphold one invariant: the two tokens are written together and
// cleared together. Load never returns a half pair.
package tokenstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no pair is persisted.
var ErrNotFound = errors.New("tokenstore: no token pair stored")

// Pair is one access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether both tokens are present.
func (p Pair) Valid() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Store persists one token pair. Implementations must be safe for
// concurrent use.
type Store interface {
	// Load returns the stored pair, or ErrNotFound when none is stored.
	Load(ctx context.Context) (Pair, error)
	// Save persists the pair, replacing any previous one. Incomplete pairs
	// are rejected.
	Save(ctx context.Context, pair Pair) error
	// Clear removes the stored pair. Clearing an empty store is not an
	// error.
	Clear(ctx context.Context) error
}

// errIncomplete rejects half pairs at the storage boundary.
var errIncomplete = errors.New("tokenstore: refusing to store incomplete pair")
