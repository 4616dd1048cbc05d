// Package authtest is an in-process reference implementation of the CareLoop
// authentication endpoints: credential sign-in, identity resolution, and
// refresh-token rotation with reuse rejection. The test suite runs the
// session manager against it, and `careauth serve` exposes it as a
// development server.
package authtest

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/careloop/careauth/internal"
	"github.com/careloop/careauth/password"
)

// Profile is the identity payload served by the identity endpoint. It
// mirrors the platform wire format.
type Profile struct {
	AccountID   int64  `json:"accountId"`
	RoleID      int    `json:"roleId"`
	RoleName    string `json:"roleName,omitempty"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	Avatar      string `json:"avatar,omitempty"`
	Gender      string `json:"gender,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Status      string `json:"status"`
	IsVerified  bool   `json:"isVerified"`
}

// User seeds one account. PasswordHash must be an argon2id PHC string; use
// [password.MustHash] in fixtures.
type User struct {
	Profile      Profile
	PasswordHash string
}

type session struct {
	accountID   int64
	refreshHash [32]byte
}

// Options tune the reference backend.
type Options struct {
	// AccessTTL bounds minted access tokens. Defaults to 15 minutes.
	AccessTTL time.Duration
	// SignInPath, IdentityPath, RefreshPath override the served routes.
	// Defaults match the manager's default configuration.
	SignInPath   string
	IdentityPath string
	RefreshPath  string
}

// Server implements the three authentication endpoints over seeded users.
// It is safe for concurrent use.
type Server struct {
	opts       Options
	signingKey []byte

	mu       sync.Mutex
	users    map[string]*User // keyed by lowercase email
	sessions map[string]*session

	// request counters, readable by tests
	signInCalls   atomic.Int64
	identityCalls atomic.Int64
	refreshCalls  atomic.Int64
}

// NewServer returns a backend with no users; seed them with [Server.AddUser]
// or start from [SeedUsers].
func NewServer(opts Options) *Server {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.SignInPath == "" {
		opts.SignInPath = "/api/v1/auth/sign-in"
	}
	if opts.IdentityPath == "" {
		opts.IdentityPath = "/api/v1/auth/identity"
	}
	if opts.RefreshPath == "" {
		opts.RefreshPath = "/api/v1/auth/refresh"
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return &Server{
		opts:       opts,
		signingKey: key,
		users:      make(map[string]*User),
		sessions:   make(map[string]*session),
	}
}

// SeedUsers are the accounts a development server starts with. Passwords
// equal the local part of the email with a "-pass" suffix, e.g.
// "admin-pass".
func SeedUsers() []User {
	params := password.Params{MemoryKB: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	seed := func(id int64, role int, roleName, local, name string) User {
		return User{
			Profile: Profile{
				AccountID:  id,
				RoleID:     role,
				RoleName:   roleName,
				Email:      local + "@careloop.dev",
				FullName:   name,
				Status:     "Active",
				IsVerified: true,
			},
			PasswordHash: password.MustHash(local+"-pass", params),
		}
	}
	return []User{
		seed(1, 1, "administrator", "admin", "Ada Administrator"),
		seed(2, 5, "content-provider", "content", "Cory Content"),
		seed(3, 2, "doctor", "doctor", "Dana Doctor"),
	}
}

// AddUser registers an account, replacing any existing one with the same
// email.
func (s *Server) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := u
	s.users[strings.ToLower(u.Profile.Email)] = &copied
}

// Handler returns the HTTP handler serving the three endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.opts.SignInPath, s.handleSignIn)
	mux.HandleFunc("GET "+s.opts.IdentityPath, s.handleIdentity)
	mux.HandleFunc("POST "+s.opts.RefreshPath, s.handleRefresh)
	return mux
}

// SignInCalls reports how many sign-in requests were served.
func (s *Server) SignInCalls() int64 { return s.signInCalls.Load() }

// IdentityCalls reports how many identity requests were served.
func (s *Server) IdentityCalls() int64 { return s.identityCalls.Load() }

// RefreshCalls reports how many refresh requests were served.
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }

// SessionCount reports how many refresh sessions are live.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// IssuePair mints a valid access/refresh pair for email without a sign-in
// round trip. It panics on unknown emails; it exists for test setup.
func (s *Server) IssuePair(email string) (accessToken, refreshToken string) {
	return s.issuePairTTL(email, s.opts.AccessTTL)
}

// IssueExpiredPair mints a pair whose access token is already expired while
// the refresh token stays live. Restoration tests start from exactly this
// state.
func (s *Server) IssueExpiredPair(email string) (accessToken, refreshToken string) {
	return s.issuePairTTL(email, -time.Minute)
}

func (s *Server) issuePairTTL(email string, ttl time.Duration) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		panic("authtest: no user " + email)
	}
	at, rt, err := s.mintLocked(u.Profile.AccountID, email, ttl)
	if err != nil {
		panic(err)
	}
	return at, rt
}

// mintLocked creates a refresh session and signs an access token. Callers
// hold s.mu.
func (s *Server) mintLocked(accountID int64, email string, ttl time.Duration) (accessToken, refreshToken string, err error) {
	sid, err := internal.NewSessionID()
	if err != nil {
		return "", "", err
	}
	secret, err := internal.NewRefreshSecret()
	if err != nil {
		return "", "", err
	}
	refreshToken, err = internal.EncodeRefreshToken(sid.String(), secret)
	if err != nil {
		return "", "", err
	}
	s.sessions[sid.String()] = &session{
		accountID:   accountID,
		refreshHash: internal.HashRefreshSecret(secret),
	}

	accessToken, err = s.signAccessLocked(accountID, email, sid.String(), ttl)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *Server) signAccessLocked(accountID int64, email, sid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   accountID,
		"email": email,
		"sid":   sid,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

type signInRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceToken string `json:"deviceToken"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.signInCalls.Add(1)

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"isSuccess": false, "message": "malformed request body",
		})
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()
	if ok {
		match, err := password.Verify(req.Password, u.PasswordHash)
		ok = err == nil && match
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"isSuccess": false, "message": "invalid email or password",
		})
		return
	}

	s.mu.Lock()
	at, rt, err := s.mintLocked(u.Profile.AccountID, u.Profile.Email, s.opts.AccessTTL)
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"isSuccess": false, "message": "token minting failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"isSuccess": true,
		"data":      map[string]string{"accessToken": at, "refreshToken": rt},
	})
}

func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	s.identityCalls.Add(1)

	token, ok := bearerToken(r)
	if !ok {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})).ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	})
	if err != nil {
		http.Error(w, "invalid or expired access token", http.StatusUnauthorized)
		return
	}

	email, _ := claims["email"].(string)
	s.mu.Lock()
	u, ok := s.users[strings.ToLower(email)]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "account not found", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": u.Profile})
}

type refreshRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	sid, secret, err := internal.DecodeRefreshToken(req.Token)
	if err != nil {
		http.Error(w, "malformed refresh token", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sid]
	if !ok {
		http.Error(w, "unknown refresh session", http.StatusUnauthorized)
		return
	}
	presented := internal.HashRefreshSecret(secret)
	if subtle.ConstantTimeCompare(presented[:], sess.refreshHash[:]) != 1 {
		// A stale secret on a live session means the token was already
		// rotated: either a replayed token or a stolen one. Burn the whole
		// session.
		delete(s.sessions, sid)
		http.Error(w, "refresh token reuse detected", http.StatusUnauthorized)
		return
	}

	var email string
	for _, u := range s.users {
		if u.Profile.AccountID == sess.accountID {
			email = u.Profile.Email
			break
		}
	}
	if email == "" {
		delete(s.sessions, sid)
		http.Error(w, "account no longer exists", http.StatusUnauthorized)
		return
	}

	// Rotate in place: same session, fresh secret. The presented secret is
	// dead from here on and replaying it burns the session above.
	newSecret, err := internal.NewRefreshSecret()
	if err != nil {
		http.Error(w, "token minting failed", http.StatusInternalServerError)
		return
	}
	rt, err := internal.EncodeRefreshToken(sid, newSecret)
	if err != nil {
		http.Error(w, "token minting failed", http.StatusInternalServerError)
		return
	}
	sess.refreshHash = internal.HashRefreshSecret(newSecret)

	at, err := s.signAccessLocked(sess.accountID, email, sid, s.opts.AccessTTL)
	if err != nil {
		http.Error(w, "token minting failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": at, "refreshToken": rt})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimPrefix(h, prefix), true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
