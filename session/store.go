package session

import "github.com/DinhTQSE/schoolmed-client/users"

// Store is the durable credential storage shared by every consumer in the
// same installation: the access token plus a cached copy of the user record.
// It is the source of truth across process restarts; implementations must be
// safe for concurrent use.
type Store interface {
	// Token returns the stored access token, or "" when none is stored.
	Token() (string, error)
	// User returns the cached user record, or nil when none is stored. A
	// corrupt cached record is discarded and reported as absent, not as an
	// error.
	User() (*users.User, error)
	// Save persists the token and user record together.
	Save(token string, user *users.User) error
	// Clear removes both slots. Clearing an empty store is not an error.
	Clear() error
}
