package careauth

import (
	"errors"
	"testing"

	"github.com/careloop/careauth/tokenstore"
)

func TestLogoutClearsSessionAndStorage(t *testing.T) {
	_, ts := newTestBackend(t)
	store := tokenstore.NewMemoryStore()
	mgr := newTestManager(t, ts.URL, store)
	if err := mgr.Restore(t.Context()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, err := mgr.Login(t.Context(), testAdminEmail, testAdminPass); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := mgr.Logout(t.Context()); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if mgr.State() != StateAnonymous {
		t.Fatalf("state = %v, want anonymous", mgr.State())
	}
	if mgr.CurrentUser() != nil {
		t.Fatal("current user survives logout")
	}
	if _, ok := mgr.AccessToken(); ok {
		t.Fatal("access token survives logout")
	}
	if _, err := store.Load(t.Context()); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatalf("persisted pair survives logout: %v", err)
	}

	// A fresh login works after logout.
	if _, err := mgr.Login(t.Context(), testAdminEmail, testAdminPass); err != nil {
		t.Fatalf("Login after Logout: %v", err)
	}
	if !mgr.IsAuthenticated() {
		t.Fatal("not authenticated after re-login")
	}
}

func TestClosedManagerRejectsOperations(t *testing.T) {
	_, ts := newTestBackend(t)
	mgr := newTestManager(t, ts.URL, nil)
	if err := mgr.Restore(t.Context()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := mgr.Login(t.Context(), testAdminEmail, testAdminPass); !errors.Is(err, ErrManagerClosed) {
		t.Fatalf("Login after Close = %v, want ErrManagerClosed", err)
	}
	if err := mgr.Logout(t.Context()); !errors.Is(err, ErrManagerClosed) {
		t.Fatalf("Logout after Close = %v, want ErrManagerClosed", err)
	}
	if err := mgr.Reauthorize(t.Context()); !errors.Is(err, ErrManagerClosed) {
		t.Fatalf("Reauthorize after Close = %v, want ErrManagerClosed", err)
	}
	// Close is idempotent.
	if err := mgr.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
