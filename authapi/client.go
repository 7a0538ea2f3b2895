// Package authapi is a thin typed client for the SchoolMed authentication
// endpoints. It carries no session state of its own; the session manager
// decides what to do with the responses.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/DinhTQSE/schoolmed-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	mePath     = "/api/auth/me"
	signInPath = "/api/auth/signin"
	signUpPath = "/api/auth/signup"

	defaultTimeout = 30 * time.Second
)

// SignInRequest carries the credentials submitted to the sign-in endpoint.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is the flat payload returned on a successful sign-in: the
// issued token plus the user record fields.
type SignInResponse struct {
	Token    string           `json:"token"`
	ID       int64            `json:"id"`
	Username string           `json:"username"`
	Email    string           `json:"email"`
	FullName string           `json:"fullName"`
	Roles    []users.RoleType `json:"roles"`
	UserCode string           `json:"userCode"`
}

// User converts the sign-in payload into a user record with the token
// embedded, ready for persistence.
func (r *SignInResponse) User() *users.User {
	return &users.User{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
		Roles:    r.Roles,
		UserCode: r.UserCode,
		Token:    r.Token,
	}
}

// SignUpRequest carries the fields submitted to the sign-up endpoint.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// SignUpResponse is the acknowledgement returned by the sign-up endpoint.
type SignUpResponse struct {
	Message string `json:"message"`
}

// Client calls the SchoolMed authentication endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option modifies a Client instance.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// Me validates the token against the "who am I" endpoint and returns the
// authoritative user record. A 401 surfaces as a StatusError recognizable via
// IsUnauthorized.
func (c *Client) Me(ctx context.Context, token string) (*users.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+mePath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Me] build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var user users.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignIn submits credentials to the sign-in endpoint.
func (c *Client) SignIn(ctx context.Context, signIn SignInRequest) (*SignInResponse, error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, signInPath, signIn)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.SignIn] build request")
	}

	var resp SignInResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignUp submits a registration to the sign-up endpoint. It never establishes
// a session.
func (c *Client) SignUp(ctx context.Context, signUp SignUpRequest) (*SignUpResponse, error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, signUpPath, signUp)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.SignUp] build request")
	}

	var resp SignUpResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] read %s response", req.URL.Path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Msg("auth endpoint returned non-2xx")
		return StatusErrorFromBody(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "[Client.do] decode %s response", req.URL.Path)
	}
	return nil
}

// StatusErrorFromBody builds a StatusError from a non-2xx response body,
// extracting the optional server message.
func StatusErrorFromBody(code int, body []byte) *StatusError {
	var payload struct {
		Message string `json:"message"`
	}
	// The message field is optional; a body that is not JSON is not an error
	// in itself.
	_ = json.Unmarshal(body, &payload)

	return &StatusError{Code: code, Message: payload.Message}
}
