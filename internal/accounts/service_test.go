package accounts

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
)

type fakeProvider struct {
	signUps  int
	deletes  []string
	signErr  error
	lastMeta map[string]string
}

func (f *fakeProvider) SignUp(_ context.Context, email, password string, metadata map[string]string) (*identity.Session, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	f.signUps++
	f.lastMeta = metadata
	return &identity.Session{
		User:         identity.User{ID: uuid.NewString(), Email: email, Metadata: metadata},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}, nil
}

func (f *fakeProvider) SignIn(context.Context, string, string) (*identity.Session, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProvider) SignOut(context.Context, string) error { return nil }
func (f *fakeProvider) Refresh(context.Context, string) (*identity.Session, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProvider) CurrentSession(context.Context, string) (*identity.Session, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProvider) DeleteIdentity(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	return nil
}
func (f *fakeProvider) Subscribe(func(identity.Event)) func() { return func() {} }

type fakeRepo struct {
	rows      map[string]models.Profile // by email
	createErr error
	creates   []models.Profile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]models.Profile)}
}

func (f *fakeRepo) ByID(_ context.Context, id string) (profiles.Lookup, error) {
	for _, p := range f.rows {
		if p.ID == id {
			return profiles.Lookup{Found: true, Record: p}, nil
		}
	}
	return profiles.Lookup{}, nil
}

func (f *fakeRepo) ByEmail(_ context.Context, email string) (profiles.Lookup, error) {
	p, ok := f.rows[email]
	return profiles.Lookup{Found: ok, Record: p}, nil
}

func (f *fakeRepo) ByFriendlyUID(_ context.Context, uid string) (profiles.Lookup, error) {
	for _, p := range f.rows {
		if p.FriendlyUID == uid {
			return profiles.Lookup{Found: true, Record: p}, nil
		}
	}
	return profiles.Lookup{}, nil
}

func (f *fakeRepo) Create(_ context.Context, p *models.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.creates = append(f.creates, *p)
	f.rows[p.Email] = *p
	return nil
}

func doctorInput() CreateAccountInput {
	return CreateAccountInput{
		Name:     "Jane Streep",
		Email:    "jane@example.com",
		Password: "secret123",
		Phone:    "5551234567",
		Role:     roles.Doctor,
	}
}

func TestCreateAccount_Success(t *testing.T) {
	provider := &fakeProvider{}
	repo := newFakeRepo()
	svc := NewService(provider, repo)

	result, err := svc.CreateAccount(context.Background(), doctorInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !regexp.MustCompile(`^DR\d{10}$`).MatchString(result.User.FriendlyID) {
		t.Errorf("friendly id = %q, want DR prefix with 10 digits", result.User.FriendlyID)
	}
	if result.User.Phone != "+5551234567" {
		t.Errorf("phone = %q, want normalized +5551234567", result.User.Phone)
	}
	if result.User.DisplayName != "Jane Streep" {
		t.Errorf("display name = %q, want the submitted name", result.User.DisplayName)
	}
	if result.Session == nil || result.Session.AccessToken == "" {
		t.Error("expected a live session in the result")
	}

	if len(repo.creates) != 1 {
		t.Fatalf("profile writes = %d, want 1", len(repo.creates))
	}
	row := repo.creates[0]
	if row.Role != "doctor" || row.Phone != "+5551234567" || row.FriendlyUID != result.User.FriendlyID {
		t.Errorf("profile row = %+v, want role/phone/friendly id persisted", row)
	}
	if provider.lastMeta["role"] != "doctor" || provider.lastMeta["phone"] != "+5551234567" {
		t.Errorf("signup metadata = %v, want role and normalized phone attached", provider.lastMeta)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	provider := &fakeProvider{}
	repo := newFakeRepo()
	repo.rows["jane@example.com"] = models.Profile{ID: "existing", Email: "jane@example.com", Role: "patient"}
	svc := NewService(provider, repo)

	_, err := svc.CreateAccount(context.Background(), doctorInput())
	if !errors.Is(err, identity.ErrDuplicateAccount) {
		t.Fatalf("err = %v, want ErrDuplicateAccount", err)
	}
	if provider.signUps != 0 {
		t.Error("no identity may be created for a duplicate email")
	}
	if len(repo.creates) != 0 {
		t.Error("no profile row may be written for a duplicate email")
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, newFakeRepo())

	cases := []struct {
		name   string
		mutate func(*CreateAccountInput)
	}{
		{"empty name", func(in *CreateAccountInput) { in.Name = "" }},
		{"empty email", func(in *CreateAccountInput) { in.Email = "" }},
		{"empty password", func(in *CreateAccountInput) { in.Password = "" }},
		{"short phone", func(in *CreateAccountInput) { in.Phone = "12345" }},
		{"alpha phone", func(in *CreateAccountInput) { in.Phone = "555CALLNOW12" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := doctorInput()
			tc.mutate(&in)

			_, err := svc.CreateAccount(context.Background(), in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
	if provider.signUps != 0 {
		t.Error("validation failures must not reach the provider")
	}
}

func TestCreateAccount_PhoneAlreadyPrefixed(t *testing.T) {
	svc := NewService(&fakeProvider{}, newFakeRepo())

	in := doctorInput()
	in.Phone = "+15551234567"
	result, err := svc.CreateAccount(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.User.Phone != "+15551234567" {
		t.Errorf("phone = %q, want unchanged", result.User.Phone)
	}
}

func TestCreateAccount_ProfileWriteFailureCompensates(t *testing.T) {
	provider := &fakeProvider{}
	repo := newFakeRepo()
	repo.createErr = errors.New("insert failed")
	svc := NewService(provider, repo)

	_, err := svc.CreateAccount(context.Background(), doctorInput())
	if err == nil {
		t.Fatal("expected the profile failure to surface")
	}
	if len(provider.deletes) != 1 {
		t.Errorf("compensating deletes = %d, want 1", len(provider.deletes))
	}
}

func TestCreateAccount_DuplicateProfileRowIsAlreadyProvisioned(t *testing.T) {
	provider := &fakeProvider{}
	repo := newFakeRepo()
	repo.createErr = errors.New(`pq: duplicate key value violates unique constraint "users_pkey"`)
	svc := NewService(provider, repo)

	result, err := svc.CreateAccount(context.Background(), doctorInput())
	if err != nil {
		t.Fatalf("duplicate-key on the profile write must not fail signup: %v", err)
	}
	if len(provider.deletes) != 0 {
		t.Error("no compensating delete for an already-provisioned account")
	}
	if result.User.Role != roles.Doctor {
		t.Errorf("role = %s, want doctor", result.User.Role)
	}
}
