package dwellosdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIKeyHeader carries the session token.
const APIKeyHeader = "X-API-Key"

// Client talks to a Dwello server. Unauthenticated calls live here; Login
// and Register return a Session for the rest.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates with email and password. Any session the user held
// before stops working.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/v1/accounts/login", "", LoginRequest{Email: email, Password: password}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return c.NewSession(out.Token, out.User), nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/v1/accounts/register", "", RegisterRequest{Name: name, Email: email, Password: password}, &out, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return c.NewSession(out.Token, out.User), nil
}

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends body as JSON and decodes a response with the expected status
// into out. Any other status is returned as an *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any, expected int) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(APIKeyHeader, token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseError(status int, raw []byte) error {
	var body ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.ErrorMessage == "" {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
	}
	return &APIError{
		StatusCode:       status,
		Message:          body.ErrorMessage,
		ValidationErrors: body.ValidationErrors,
	}
}
