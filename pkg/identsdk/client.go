package identsdk

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
)

// Client is a client for the identity service token API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a sane default timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("identity: HTTP %d (%s)", e.StatusCode, e.Code)
}

// Authenticate performs a password login and returns the issued tokens.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*TokenResponse, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := c.postJSON(ctx, "/v1/auth", "application/json", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh redeems a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.postJSON(ctx, "/v1/auth/refresh", "text/plain", strings.NewReader(refreshToken), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate asks the service to verify an access token and returns its
// subject.
func (c *Client) Validate(ctx context.Context, accessToken string) (*UserInfo, error) {
	var out UserInfo
	if err := c.postJSON(ctx, "/v1/auth/validate", "text/plain", strings.NewReader(accessToken), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JWKS fetches the public signing keys for local token verification.
func (c *Client) JWKS(ctx context.Context) (*JWKSResponse, error) {
	var out JWKSResponse
	if err := c.getJSON(ctx, "/.well-known/jwks.json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the readiness probe. A degraded service returns both the
// response and an *APIError.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	err := c.getJSON(ctx, "/readyz", &out)
	if err != nil {
		var apiErr *APIError
		if out.Status != "" && errors.As(err, &apiErr) {
			return &out, err
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body ErrorResponse
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Code = body.Error
			apiErr.Message = body.Message
		}
		// Degraded health probes still carry a useful body.
		if out != nil {
			_ = json.Unmarshal(raw, out)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
