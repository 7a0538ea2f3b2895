package httpauth

import (
	"errors"

	"golang.org/x/oauth2"

	"github.com/DinhTQSE/schoolmed-client/internal/utils"
	"github.com/DinhTQSE/schoolmed-client/session"
)

// ErrNoToken is returned when a request needs credentials but the store no
// longer holds any, e.g. a logout raced an in-flight request sequence.
var ErrNoToken = errors.New("no access token in credential store")

// storeTokenSource re-reads the credential store on every Token call, which
// is once per dispatched request under oauth2.Transport. A token rotated by a
// concurrent process therefore wins over whatever was current when the client
// was built.
type storeTokenSource struct {
	store session.Store
}

var _ oauth2.TokenSource = (*storeTokenSource)(nil)

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	resolved := resolveToken(s.store)
	if resolved == "" {
		return nil, ErrNoToken
	}

	return &oauth2.Token{AccessToken: resolved, TokenType: "Bearer"}, nil
}

// resolveToken prefers the primary token slot and falls back to the copy
// embedded in the cached user record, tolerating drift between the two.
func resolveToken(store session.Store) string {
	primary, err := store.Token()
	if err != nil {
		primary = ""
	}

	var embedded string
	if user, err := store.User(); err == nil && user != nil {
		embedded = user.Token
	}

	return utils.FirstNonEmpty(primary, embedded)
}
