// Package httpauth produces HTTP clients bound to the current session. Each
// client resolves the bearer token from the durable credential store at
// dispatch time, so token rotation between client construction and request
// dispatch is picked up, and enforces the global policy that any 401 response
// ends the session.
package httpauth

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/DinhTQSE/schoolmed-client/session"
)

const defaultTimeout = 30 * time.Second

var ErrStoreRequired = errors.New("credential store is required")

// Factory assembles authenticated HTTP clients. Call Client for each logical
// request sequence that needs current credentials.
type Factory struct {
	store          session.Store
	base           http.RoundTripper
	timeout        time.Duration
	logger         zerolog.Logger
	onUnauthorized func()
}

// Option modifies a Factory instance.
type Option func(*Factory)

// WithBase sets the innermost round tripper (primarily for testing).
func WithBase(base http.RoundTripper) Option {
	return func(f *Factory) {
		f.base = base
	}
}

// WithTimeout sets the per-request timeout on produced clients.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Factory) {
		f.timeout = timeout
	}
}

// WithLogger sets the factory logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithOnUnauthorized installs the hook invoked whenever a produced client
// receives a 401. Session consumers bind this to Manager.SessionExpired; the
// hook must be idempotent since concurrent in-flight requests can each
// observe a 401.
func WithOnUnauthorized(fn func()) Option {
	return func(f *Factory) {
		f.onUnauthorized = fn
	}
}

// New creates a Factory reading credentials from store.
func New(store session.Store, options ...Option) (*Factory, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	f := &Factory{
		store:   store,
		base:    http.DefaultTransport,
		timeout: defaultTimeout,
		logger:  zerolog.Nop(),
	}

	for _, opt := range options {
		opt(f)
	}

	return f, nil
}

// Client returns a freshly assembled HTTP client. When a token is resolvable
// the client carries an Authorization header re-read from the store on every
// request; otherwise the header is omitted entirely.
func (f *Factory) Client() *http.Client {
	rt := http.RoundTripper(&headerTransport{next: f.base})

	if resolveToken(f.store) != "" {
		rt = &oauth2.Transport{
			Source: &storeTokenSource{store: f.store},
			Base:   rt,
		}
	}

	return &http.Client{
		Transport: &unauthorizedTransport{
			next:           rt,
			logger:         f.logger,
			onUnauthorized: f.onUnauthorized,
		},
		Timeout: f.timeout,
	}
}
