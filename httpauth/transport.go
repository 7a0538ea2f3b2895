package httpauth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// headerTransport applies the default request headers: JSON content type and
// a request correlation ID.
type headerTransport struct {
	next http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.New().String())
	}
	return t.next.RoundTrip(req)
}

// unauthorizedTransport watches responses for a 401 and fires the
// session-expiry hook before handing the response back, so the caller can
// still settle its own loading state.
type unauthorizedTransport struct {
	next           http.RoundTripper
	logger         zerolog.Logger
	onUnauthorized func()
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.logger.Info().
			Str("path", req.URL.Path).
			Msg("authenticated request rejected with 401, ending session")
		if t.onUnauthorized != nil {
			t.onUnauthorized()
		}
	}

	return resp, nil
}
