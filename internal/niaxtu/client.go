// Package niaxtu is the typed client for the remote Niaxtu REST API.
// The console keeps no database; every entity the screens show comes
// through this client.
package niaxtu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client talks to the Niaxtu API. Reads go through a retrying
// transport; mutations are sent exactly once.
type Client struct {
	baseURL string
	read    *http.Client
	write   *http.Client
}

// NewClient constructs a Client for the given base URL with the
// default request timeout.
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 10*time.Second)
}

// NewClientWithTimeout constructs a Client with an explicit timeout.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = 2
	retry.Logger = nil
	retry.HTTPClient.Timeout = timeout

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		read:    retry.StandardClient(),
		write:   &http.Client{Timeout: timeout},
	}
}

// Login authenticates with email/password and returns the issued token
// plus the raw user record for caching.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	env, status, err := c.call(ctx, http.MethodPost, "/auth/login", "", payload)
	if err != nil {
		// On this one endpoint a 401 is a credential rejection, not a
		// dead session.
		if errors.Is(err, ErrSessionExpired) {
			return LoginResult{}, &AuthenticationError{Message: env.Message}
		}
		return LoginResult{}, err
	}
	if !env.Success {
		return LoginResult{}, &AuthenticationError{Message: env.Message}
	}
	if status != http.StatusOK || env.Token == "" || len(env.User) == 0 {
		return LoginResult{}, fmt.Errorf("niaxtu: login: unexpected response (code %d)", status)
	}
	var user User
	if err := json.Unmarshal(env.User, &user); err != nil {
		return LoginResult{}, fmt.Errorf("niaxtu: login: decode user: %w", err)
	}
	return LoginResult{Token: env.Token, User: user, UserJSON: env.User}, nil
}

// Logout invalidates the token server-side. Callers treat failures as
// non-fatal; the local session is cleared regardless.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, _, err := c.call(ctx, http.MethodPost, "/auth/logout", token, nil)
	return err
}

// Register creates an administrator account. The API enforces the
// super-admin restriction too; the console checks before calling.
func (c *Client) Register(ctx context.Context, token string, admin NewAdmin) (User, error) {
	env, status, err := c.call(ctx, http.MethodPost, "/auth/register", token, admin)
	if err != nil {
		return User{}, err
	}
	if !env.Success || (status != http.StatusOK && status != http.StatusCreated) {
		return User{}, fmt.Errorf("niaxtu: register: %s (code %d)", env.Message, status)
	}
	var user User
	if err := json.Unmarshal(env.User, &user); err != nil {
		return User{}, fmt.Errorf("niaxtu: register: decode user: %w", err)
	}
	return user, nil
}

// GetProfile fetches the current account. The raw JSON is returned so
// the session manager can shallow-merge it over the cached record.
func (c *Client) GetProfile(ctx context.Context, token string) (json.RawMessage, error) {
	env, _, err := c.get(ctx, "/users/profile", token)
	if err != nil {
		return nil, err
	}
	if len(env.User) == 0 {
		return nil, fmt.Errorf("niaxtu: profile: empty user in response")
	}
	return env.User, nil
}

// UpdateProfile applies a partial profile update and returns the raw
// updated record.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (json.RawMessage, error) {
	env, status, err := c.call(ctx, http.MethodPut, "/users/profile", token, update)
	if err != nil {
		return nil, err
	}
	if !env.Success || status != http.StatusOK {
		return nil, fmt.Errorf("niaxtu: update profile: %s (code %d)", env.Message, status)
	}
	if len(env.User) == 0 {
		return nil, fmt.Errorf("niaxtu: update profile: empty user in response")
	}
	return env.User, nil
}

// get performs an authenticated GET over the retrying transport.
func (c *Client) get(ctx context.Context, path, token string) (envelope, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return envelope{}, 0, fmt.Errorf("niaxtu: build request: %w", err)
	}
	authorize(req, token)
	resp, err := c.read.Do(req)
	if err != nil {
		return envelope{}, 0, &NetworkError{Op: "GET " + path, Err: err}
	}
	return decode(resp, "GET "+path)
}

// call performs a mutation with a JSON body over the non-retrying
// transport.
func (c *Client) call(ctx context.Context, method, path, token string, body any) (envelope, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return envelope{}, 0, fmt.Errorf("niaxtu: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, 0, fmt.Errorf("niaxtu: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	authorize(req, token)
	resp, err := c.write.Do(req)
	if err != nil {
		return envelope{}, 0, &NetworkError{Op: method + " " + path, Err: err}
	}
	return decode(resp, method+" "+path)
}

func authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// decode reads the envelope and maps the authorization status codes.
// 401 means the session is dead; 403 means this one operation is
// denied and the server message explains why.
func decode(resp *http.Response, op string) (envelope, int, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, resp.StatusCode, &NetworkError{Op: op, Err: err}
	}

	var env envelope
	if len(data) > 0 {
		// Tolerate non-JSON error bodies from proxies.
		_ = json.Unmarshal(data, &env)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return env, resp.StatusCode, ErrSessionExpired
	case http.StatusForbidden:
		msg := env.Message
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return env, resp.StatusCode, &AuthorizationError{Message: msg}
	}
	return env, resp.StatusCode, nil
}
