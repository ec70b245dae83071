// Package accounts implements signup: role-tagged identity creation, the
// friendly ID draw, the one-time profile write, and the compensating delete
// when that write fails.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"gorm.io/gorm"
)

// 10 to 15 digits, optional leading +.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// ValidationError is a bad-input rejection raised before any backend call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     roles.Role
}

// Result is what signup hands back to the client: the session user built
// from the submitted inputs (no re-query) plus the live session tokens.
type Result struct {
	User    profiles.SessionUser
	Session *identity.Session
}

type Service struct {
	provider identity.Provider
	repo     profiles.Repository
}

func NewService(provider identity.Provider, repo profiles.Repository) *Service {
	return &Service{provider: provider, repo: repo}
}

// CreateAccount runs the provisioning sequence. Failures before the identity
// exists leave no partial state; a profile-write failure triggers a
// compensating identity delete unless the write failed as a duplicate, which
// counts as already provisioned.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.ByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing.Found {
		return nil, identity.ErrDuplicateAccount
	}

	phone := normalizePhone(in.Phone)

	session, err := s.provider.SignUp(ctx, in.Email, in.Password, map[string]string{
		"phone": phone,
		"role":  in.Role.String(),
		"name":  in.Name,
	})
	if err != nil {
		return nil, err
	}

	friendlyID := roles.GenerateFriendlyID(in.Role)

	profile := models.Profile{
		ID:          session.User.ID,
		Email:       in.Email,
		Role:        in.Role.String(),
		Name:        in.Name,
		Phone:       phone,
		FriendlyUID: friendlyID,
	}
	if err := s.repo.Create(ctx, &profile); err != nil {
		if isDuplicateKey(err) {
			// A profile row already exists for this identity; treat the
			// account as provisioned rather than tearing it down.
			slog.Warn("profile row already present at signup", "subject_id", session.User.ID)
		} else {
			if delErr := s.provider.DeleteIdentity(ctx, session.User.ID); delErr != nil {
				// Orphaned identity: the compensating delete failed too.
				slog.Error("compensating identity delete failed",
					"subject_id", session.User.ID,
					"action", "signup_compensation",
					"error", delErr.Error())
			}
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}

	return &Result{
		User: profiles.SessionUser{
			AuthID:      session.User.ID,
			Email:       in.Email,
			Role:        in.Role,
			DisplayName: displayName(in.Name, in.Email),
			FriendlyID:  friendlyID,
			Phone:       phone,
		},
		Session: session,
	}, nil
}

func validate(in CreateAccountInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case strings.TrimSpace(in.Email) == "":
		return &ValidationError{Field: "email", Reason: "required"}
	case in.Password == "":
		return &ValidationError{Field: "password", Reason: "required"}
	case strings.TrimSpace(in.Phone) == "":
		return &ValidationError{Field: "phone", Reason: "required"}
	case !phonePattern.MatchString(in.Phone):
		return &ValidationError{Field: "phone", Reason: "must be 10-15 digits, optionally prefixed with +"}
	case !roles.Valid(in.Role.String()):
		return &ValidationError{Field: "role", Reason: "must be patient, doctor, or labOwner"}
	}
	return nil
}

func normalizePhone(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key")
}
