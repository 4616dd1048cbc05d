package authtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(Options{AccessTTL: time.Minute})
	for _, u := range SeedUsers() {
		s.AddUser(u)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSignInIssuesWorkingPair(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/auth/sign-in", map[string]string{
		"email": "admin@careloop.dev", "password": "admin-pass", "deviceToken": "t",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign-in status = %d", resp.StatusCode)
	}
	var signed struct {
		IsSuccess bool `json:"isSuccess"`
		Data      struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !signed.IsSuccess || signed.Data.AccessToken == "" || signed.Data.RefreshToken == "" {
		t.Fatalf("sign-in payload = %+v", signed)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/auth/identity", nil)
	req.Header.Set("Authorization", "Bearer "+signed.Data.AccessToken)
	idResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	defer idResp.Body.Close()
	if idResp.StatusCode != http.StatusOK {
		t.Fatalf("identity status = %d", idResp.StatusCode)
	}
	var identity struct {
		User Profile `json:"user"`
	}
	if err := json.NewDecoder(idResp.Body).Decode(&identity); err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	if identity.User.Email != "admin@careloop.dev" || identity.User.RoleID != 1 {
		t.Fatalf("identity = %+v", identity.User)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/auth/sign-in", map[string]string{
		"email": "admin@careloop.dev", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	var body struct {
		IsSuccess bool `json:"isSuccess"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.IsSuccess {
		t.Fatal("isSuccess true for rejected credentials")
	}
}

func TestIdentityRejectsExpiredToken(t *testing.T) {
	s, ts := newTestServer(t)
	at, _ := s.IssueExpiredPair("admin@careloop.dev")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/auth/identity", nil)
	req.Header.Set("Authorization", "Bearer "+at)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRefreshRotatesAndRejectsReuse(t *testing.T) {
	s, ts := newTestServer(t)
	_, rt := s.IssuePair("admin@careloop.dev")

	resp := postJSON(t, ts.URL+"/api/v1/auth/refresh", map[string]string{"token": rt})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d", resp.StatusCode)
	}
	var rotated struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rotated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rotated.RefreshToken == rt || rotated.RefreshToken == "" {
		t.Fatal("refresh token not rotated")
	}

	// Replaying the consumed token must fail and burn the whole session,
	// taking the rotated token down with it.
	if resp := postJSON(t, ts.URL+"/api/v1/auth/refresh", map[string]string{"token": rt}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replay status = %d, want 401", resp.StatusCode)
	}
	if s.SessionCount() != 0 {
		t.Fatalf("sessions = %d, want 0 after reuse detection", s.SessionCount())
	}
	if resp := postJSON(t, ts.URL+"/api/v1/auth/refresh", map[string]string{"token": rotated.RefreshToken}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("rotated token after reuse status = %d, want 401", resp.StatusCode)
	}
}
