package auth

import (
	"errors"

	"github.com/featherpress/featherpress/internal/models"
)

var (
	// ErrUnauthenticated means no valid credential accompanied the request.
	// HTTP callers map this to 401; retry-with-login is meaningful.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means a valid identity lacks the required permission.
	// HTTP callers map this to 403; logging in again will not help.
	ErrForbidden = errors.New("forbidden")

	// ErrSessionInvalid covers both unknown and expired tokens. The two
	// cases are told apart in logs only; behavior is identical.
	ErrSessionInvalid = errors.New("session invalid")
)

// Identity is the caller of a request: either anonymous or an
// authenticated user. The tagged form keeps the two authorization paths
// explicit instead of spreading nil checks around.
type Identity struct {
	user *models.User
}

// Anonymous returns the unauthenticated identity
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns an identity for the given user
func Authenticated(u *models.User) Identity {
	return Identity{user: u}
}

// IsAnonymous reports whether no user is attached
func (id Identity) IsAnonymous() bool {
	return id.user == nil
}

// User returns the attached user, if any
func (id Identity) User() (*models.User, bool) {
	return id.user, id.user != nil
}
