package profiles

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
)

// ErrNoSession is the only hard failure of resolution: a session without a
// user id or email cannot be resolved into anything.
var ErrNoSession = errors.New("no usable session")

// SessionUser is the resolved, role-bearing view of the signed-in account.
// It is always replaced wholesale, never partially mutated.
type SessionUser struct {
	AuthID      string     `json:"auth_id"`
	Email       string     `json:"email"`
	Role        roles.Role `json:"role"`
	DisplayName string     `json:"display_name"`
	FriendlyID  string     `json:"friendly_id"`
	Phone       string     `json:"phone,omitempty"`
}

// Resolver turns an authenticated session into a SessionUser using an
// ordered fallback chain:
//
//  1. profile row keyed by the provider's opaque id
//  2. profile row keyed by the session email
//  3. role/name metadata the provider attached at signup
//  4. role inferred from the id's friendly prefix (legacy rows)
//  5. patient
//
// Steps 1 and 2 are read-only queries; a query error counts as a miss so an
// unreachable profile table still yields a best-effort user from step 3 on.
type Resolver struct {
	repo    Repository
	timeout time.Duration
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo, timeout: 10 * time.Second}
}

func (r *Resolver) Resolve(ctx context.Context, session *identity.Session) (*SessionUser, error) {
	if session == nil || session.User.ID == "" || session.User.Email == "" {
		return nil, ErrNoSession
	}
	user := session.User

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	lookup, err := r.repo.ByID(ctx, user.ID)
	if err != nil {
		slog.Warn("profile lookup by id failed, trying email", "error", err)
	}
	if !lookup.Found {
		lookup, err = r.repo.ByEmail(ctx, user.Email)
		if err != nil {
			slog.Warn("profile lookup by email failed, using session metadata", "error", err)
		}
	}

	if lookup.Found {
		record := lookup.Record
		return &SessionUser{
			AuthID:      user.ID,
			Email:       user.Email,
			Role:        roles.Parse(record.Role),
			DisplayName: displayName(record.Name, user.Metadata, user.Email),
			FriendlyID:  record.FriendlyUID,
			Phone:       record.Phone,
		}, nil
	}

	// No profile row anywhere: synthesize from signup metadata, then fall
	// back to the legacy prefix inference, then patient.
	role := roles.Patient
	if meta := user.Metadata["role"]; roles.Valid(meta) {
		role = roles.Parse(meta)
	} else {
		role = roles.FromPrefix(user.ID)
	}

	return &SessionUser{
		AuthID:      user.ID,
		Email:       user.Email,
		Role:        role,
		DisplayName: displayName("", user.Metadata, user.Email),
		FriendlyID:  "",
		Phone:       user.Metadata["phone"],
	}, nil
}

func displayName(profileName string, metadata map[string]string, email string) string {
	if profileName != "" {
		return profileName
	}
	if name := metadata["name"]; name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
