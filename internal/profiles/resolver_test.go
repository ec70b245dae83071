package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
)

// fakeRepo serves canned rows keyed by id and email; err, when set, makes
// every read fail, simulating an unreachable profile table.
type fakeRepo struct {
	byID    map[string]models.Profile
	byEmail map[string]models.Profile
	err     error
	creates []models.Profile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:    make(map[string]models.Profile),
		byEmail: make(map[string]models.Profile),
	}
}

func (f *fakeRepo) add(p models.Profile) {
	f.byID[p.ID] = p
	f.byEmail[p.Email] = p
}

func (f *fakeRepo) ByID(_ context.Context, id string) (Lookup, error) {
	if f.err != nil {
		return Lookup{}, f.err
	}
	p, ok := f.byID[id]
	return Lookup{Found: ok, Record: p}, nil
}

func (f *fakeRepo) ByEmail(_ context.Context, email string) (Lookup, error) {
	if f.err != nil {
		return Lookup{}, f.err
	}
	p, ok := f.byEmail[email]
	return Lookup{Found: ok, Record: p}, nil
}

func (f *fakeRepo) ByFriendlyUID(_ context.Context, uid string) (Lookup, error) {
	if f.err != nil {
		return Lookup{}, f.err
	}
	for _, p := range f.byID {
		if p.FriendlyUID == uid {
			return Lookup{Found: true, Record: p}, nil
		}
	}
	return Lookup{}, nil
}

func (f *fakeRepo) Create(_ context.Context, p *models.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.creates = append(f.creates, *p)
	f.add(*p)
	return nil
}

func session(id, email string, metadata map[string]string) *identity.Session {
	return &identity.Session{User: identity.User{ID: id, Email: email, Metadata: metadata}}
}

func TestResolve_ProfileByID(t *testing.T) {
	repo := newFakeRepo()
	repo.add(models.Profile{
		ID:          "auth-1",
		Email:       "jane@example.com",
		Role:        "doctor",
		Name:        "Dr. Jane",
		FriendlyUID: "DR4821093456",
	})

	user, err := NewResolver(repo).Resolve(context.Background(), session("auth-1", "jane@example.com", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != roles.Doctor {
		t.Errorf("role = %s, want doctor", user.Role)
	}
	if user.DisplayName != "Dr. Jane" {
		t.Errorf("display name = %q, want profile name", user.DisplayName)
	}
	if user.FriendlyID != "DR4821093456" {
		t.Errorf("friendly id = %q, want stored value", user.FriendlyID)
	}
}

func TestResolve_ProfileByEmail(t *testing.T) {
	repo := newFakeRepo()
	repo.add(models.Profile{
		ID:    "some-other-id",
		Email: "joe@example.com",
		Role:  "labOwner",
	})

	user, err := NewResolver(repo).Resolve(context.Background(), session("auth-2", "joe@example.com", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != roles.LabOwner {
		t.Errorf("role = %s, want labOwner", user.Role)
	}
	// The session, not the matched row, stays authoritative for identity.
	if user.AuthID != "auth-2" {
		t.Errorf("auth id = %q, want session id", user.AuthID)
	}
}

func TestResolve_MetadataFallback(t *testing.T) {
	repo := newFakeRepo()

	user, err := NewResolver(repo).Resolve(context.Background(),
		session("auth-3", "amy@example.com", map[string]string{"role": "doctor", "name": "Amy"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != roles.Doctor {
		t.Errorf("role = %s, want doctor from metadata", user.Role)
	}
	if user.DisplayName != "Amy" {
		t.Errorf("display name = %q, want metadata name", user.DisplayName)
	}
	if user.FriendlyID != "" {
		t.Errorf("friendly id = %q, want empty without a profile row", user.FriendlyID)
	}
}

func TestResolve_PrefixInference(t *testing.T) {
	repo := newFakeRepo()

	user, err := NewResolver(repo).Resolve(context.Background(),
		session("LB9913371337", "lab@example.com", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != roles.LabOwner {
		t.Errorf("role = %s, want labOwner from id prefix", user.Role)
	}
}

func TestResolve_DefaultsToPatient(t *testing.T) {
	repo := newFakeRepo()

	user, err := NewResolver(repo).Resolve(context.Background(),
		session("f47ac10b-58cc-4372-a567-0e02b2c3d479", "who@example.com", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != roles.Patient {
		t.Errorf("role = %s, want patient default", user.Role)
	}
	if user.DisplayName != "who" {
		t.Errorf("display name = %q, want local part of email", user.DisplayName)
	}
}

func TestResolve_BackendUnreachableStillResolves(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection refused")

	user, err := NewResolver(repo).Resolve(context.Background(),
		session("auth-4", "pat@example.com", map[string]string{"role": "labOwner"}))
	if err != nil {
		t.Fatalf("resolution must not fail when only the table is down: %v", err)
	}
	if user.Role != roles.LabOwner {
		t.Errorf("role = %s, want metadata tier", user.Role)
	}
}

func TestResolve_NoSessionIsHardFailure(t *testing.T) {
	repo := newFakeRepo()
	resolver := NewResolver(repo)

	if _, err := resolver.Resolve(context.Background(), nil); !errors.Is(err, ErrNoSession) {
		t.Errorf("nil session: err = %v, want ErrNoSession", err)
	}
	if _, err := resolver.Resolve(context.Background(), session("auth-5", "", nil)); !errors.Is(err, ErrNoSession) {
		t.Errorf("missing email: err = %v, want ErrNoSession", err)
	}
}
