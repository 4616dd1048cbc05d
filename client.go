package careauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/careloop/careauth/tokenstore"
)

// apiClient talks to the three platform authentication endpoints. It is the
// only place in the package that knows the wire shapes.
type apiClient struct {
	cfg  APIConfig
	http *http.Client
}

func newAPIClient(cfg APIConfig, httpClient *http.Client) *apiClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &apiClient{cfg: cfg, http: httpClient}
}

type signInRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceToken string `json:"deviceToken"`
}

// signInResponse is the platform envelope: a success flag wrapping the token
// payload, with an optional human-readable message on failure.
type signInResponse struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Data      struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

type identityResponse struct {
	User UserProfile `json:"user"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// signIn exchanges credentials for a token pair. Credential rejection (a
// non-2xx status or isSuccess=false) maps to [ErrAuthenticationFailed];
// transport failures to [ErrNetwork].
func (c *apiClient) signIn(ctx context.Context, email, password, deviceToken string) (tokenstore.Pair, error) {
	var resp signInResponse
	status, err := c.postJSON(ctx, c.cfg.SignInPath, signInRequest{
		Email:       email,
		Password:    password,
		DeviceToken: deviceToken,
	}, &resp)
	if err != nil {
		return tokenstore.Pair{}, err
	}
	if status < 200 || status >= 300 || !resp.IsSuccess {
		if resp.Message != "" {
			return tokenstore.Pair{}, fmt.Errorf("%w: %s", ErrAuthenticationFailed, resp.Message)
		}
		return tokenstore.Pair{}, ErrAuthenticationFailed
	}
	if resp.Data.AccessToken == "" || resp.Data.RefreshToken == "" {
		return tokenstore.Pair{}, fmt.Errorf("%w: incomplete token pair in response", ErrAuthenticationFailed)
	}
	return tokenstore.Pair{
		AccessToken:  resp.Data.AccessToken,
		RefreshToken: resp.Data.RefreshToken,
	}, nil
}

// identity resolves the profile behind an access token. Any non-2xx status
// maps to [ErrUnauthorized]: the platform does not distinguish expired from
// invalid tokens on this endpoint.
func (c *apiClient) identity(ctx context.Context, accessToken string) (*UserProfile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.IdentityPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp identityResponse
	status, err := c.do(req, &resp)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: identity endpoint returned %d", ErrUnauthorized, status)
	}
	return &resp.User, nil
}

// refresh rotates a refresh token into a fresh pair. The platform burns the
// presented token whether or not rotation succeeds, so callers must treat
// any failure as terminal for the session.
func (c *apiClient) refresh(ctx context.Context, refreshToken string) (tokenstore.Pair, error) {
	var resp refreshResponse
	status, err := c.postJSON(ctx, c.cfg.RefreshPath, refreshRequest{Token: refreshToken}, &resp)
	if err != nil {
		return tokenstore.Pair{}, err
	}
	if status < 200 || status >= 300 {
		return tokenstore.Pair{}, fmt.Errorf("refresh endpoint returned %d", status)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return tokenstore.Pair{}, fmt.Errorf("incomplete token pair in refresh response")
	}
	return tokenstore.Pair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (c *apiClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("careauth: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if ua, ok := UserAgentFromContext(ctx); ok {
		req.Header.Set("User-Agent", ua)
	}
	return req, nil
}

func (c *apiClient) postJSON(ctx context.Context, path string, payload, out any) (int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("careauth: encoding request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes a request and decodes the JSON body into out. Transport
// failures are wrapped in [ErrNetwork]; a non-JSON body on an error status
// is tolerated, the status code carries the verdict.
func (c *apiClient) do(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp.StatusCode, fmt.Errorf("careauth: decoding response: %w", err)
			}
		}
	}
	return resp.StatusCode, nil
}
