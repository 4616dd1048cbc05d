package careauth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/careloop/careauth/authtest"
	"github.com/careloop/careauth/tokenstore"
)

const (
	testAdminEmail   = "admin@careloop.dev"
	testAdminPass    = "admin-pass"
	testContentEmail = "content@careloop.dev"
	testContentPass  = "content-pass"
	testDoctorEmail  = "doctor@careloop.dev"
	testDoctorPass   = "doctor-pass"
)

// newTestBackend starts the reference backend over the seeded accounts and
// tears it down with the test.
func newTestBackend(t *testing.T) (*authtest.Server, *httptest.Server) {
	t.Helper()

	backend := authtest.NewServer(authtest.Options{AccessTTL: time.Minute})
	for _, u := range authtest.SeedUsers() {
		backend.AddUser(u)
	}
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)
	return backend, ts
}

// newTestManager builds a Manager against the backend URL with the given
// store. Restoration is left to the test.
func newTestManager(t *testing.T, baseURL string, store tokenstore.Store) *Manager {
	t.Helper()

	b := New().WithBaseURL(baseURL)
	if store != nil {
		b = b.WithTokenStore(store)
	}
	mgr, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

// seedStore persists a pair as a previous process run would have.
func seedStore(t *testing.T, store tokenstore.Store, accessToken, refreshToken string) {
	t.Helper()
	err := store.Save(t.Context(), tokenstore.Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}
}
