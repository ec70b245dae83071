// Package identity wraps the authentication provider behind a small port:
// sign-up, sign-in, sign-out, current-session, and a subscription to auth
// events. Callers only ever see the Session shape; how credentials are stored
// is this package's business.
package identity

import (
	"context"
	"errors"
)

var (
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrIdentityNotFound   = errors.New("identity not found")
)

// User is the provider's view of an authenticated account. ID is an opaque
// string; current identities use UUIDs but legacy hand-seeded rows carry
// friendly-prefixed ids, which is why role inference from the first two
// characters still exists. Metadata carries whatever was attached at signup
// (phone, role, name).
type User struct {
	ID       string
	Email    string
	Metadata map[string]string
}

// Session is a live authentication session.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// Event kinds reported to subscribers.
const (
	SignedIn  = "SIGNED_IN"
	SignedOut = "SIGNED_OUT"
)

// Event is an auth-state change. Session is non-nil only for SignedIn.
type Event struct {
	Kind    string
	Session *Session
}

// Provider is the identity-provider port.
type Provider interface {
	// SignUp creates a new identity with attached metadata and returns a
	// live session for it. Fails with ErrDuplicateAccount on a known email.
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Session, error)

	// SignIn authenticates by email/password and emits a SignedIn event.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignOut revokes the refresh token and emits a SignedOut event.
	SignOut(ctx context.Context, refreshToken string) error

	// Refresh rotates a refresh token into a fresh session.
	Refresh(ctx context.Context, refreshToken string) (*Session, error)

	// CurrentSession validates an access token and rebuilds its session,
	// used by the startup "is there already a live session" check.
	CurrentSession(ctx context.Context, accessToken string) (*Session, error)

	// DeleteIdentity removes an identity. Used as the compensating action
	// when provisioning fails after the identity was created.
	DeleteIdentity(ctx context.Context, id string) error

	// Subscribe registers fn for auth events; the returned func removes it.
	Subscribe(fn func(Event)) (unsubscribe func())
}
