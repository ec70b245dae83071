package session

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
)

// stubResolver resolves every session to a fixed role, counting calls.
// When err is set, resolution fails instead.
type stubResolver struct {
	role    roles.Role
	err     error
	calls   int
	started chan struct{} // when non-nil, signals that Resolve was entered
	block   chan struct{} // when non-nil, Resolve waits on it
}

func (s *stubResolver) Resolve(_ context.Context, session *identity.Session) (*profiles.SessionUser, error) {
	s.calls++
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return &profiles.SessionUser{
		AuthID:      session.User.ID,
		Email:       session.User.Email,
		Role:        s.role,
		DisplayName: session.User.Email,
	}, nil
}

func signedIn(id, email string) identity.Event {
	return identity.Event{
		Kind:    identity.SignedIn,
		Session: &identity.Session{User: identity.User{ID: id, Email: email}},
	}
}

func TestGate_StartsUnauthenticated(t *testing.T) {
	gate := NewGate(&stubResolver{role: roles.Patient})

	snap := gate.Current()
	if snap.State != StateUnauthenticated {
		t.Errorf("state = %s, want unauthenticated", snap.State)
	}
	if snap.Section != SectionAuth {
		t.Errorf("section = %s, want auth", snap.Section)
	}
	if snap.User != nil {
		t.Error("expected no user before any event")
	}
}

func TestGate_SignInEntersRoleSection(t *testing.T) {
	gate := NewGate(&stubResolver{role: roles.Doctor})

	gate.HandleAuthEvent(signedIn("auth-1", "doc@example.com"))

	snap := gate.Current()
	if snap.State != StateAuthenticated {
		t.Fatalf("state = %s, want authenticated", snap.State)
	}
	if snap.Section != SectionDoctor {
		t.Errorf("section = %s, want doctor", snap.Section)
	}
	if snap.User == nil || snap.User.AuthID != "auth-1" {
		t.Errorf("user = %+v, want auth-1", snap.User)
	}
}

func TestGate_SignOutClearsUser(t *testing.T) {
	gate := NewGate(&stubResolver{role: roles.Doctor})
	gate.HandleAuthEvent(signedIn("auth-1", "doc@example.com"))

	gate.HandleAuthEvent(identity.Event{Kind: identity.SignedOut})

	snap := gate.Current()
	if snap.State != StateUnauthenticated {
		t.Errorf("state = %s, want unauthenticated after sign-out", snap.State)
	}
	if snap.Section != SectionAuth {
		t.Errorf("section = %s, want auth after sign-out", snap.Section)
	}
	if snap.User != nil {
		t.Error("user must be cleared on sign-out")
	}
}

func TestGate_DuplicateSignInIsIdempotent(t *testing.T) {
	resolver := &stubResolver{role: roles.LabOwner}
	gate := NewGate(resolver)

	var transitions int
	gate.Subscribe(func(Snapshot) { transitions++ })

	gate.HandleAuthEvent(signedIn("auth-1", "lab@example.com"))
	first := gate.Current()

	gate.HandleAuthEvent(signedIn("auth-1", "lab@example.com"))
	second := gate.Current()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("duplicate sign-in changed the snapshot: %+v vs %+v", first, second)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver ran %d times, want 1", resolver.calls)
	}
	if transitions != 1 {
		t.Errorf("subscribers saw %d transitions, want 1 (no flicker)", transitions)
	}
}

func TestGate_ResolverFailureFallsBackToUnauthenticated(t *testing.T) {
	gate := NewGate(&stubResolver{err: errors.New("no usable session")})

	gate.HandleAuthEvent(signedIn("auth-1", "x@example.com"))

	snap := gate.Current()
	if snap.State != StateUnauthenticated || snap.User != nil {
		t.Errorf("resolution failure must land in unauthenticated, got %+v", snap)
	}
}

func TestGate_SupersededResolutionIsDiscarded(t *testing.T) {
	resolver := &stubResolver{
		role:    roles.Patient,
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	gate := NewGate(resolver)

	done := make(chan struct{})
	go func() {
		gate.HandleAuthEvent(signedIn("stale", "stale@example.com"))
		close(done)
	}()

	// Sign out while the first resolution is still in flight; its late
	// result must not overwrite the newer state.
	<-resolver.started
	gate.HandleAuthEvent(identity.Event{Kind: identity.SignedOut})
	close(resolver.block)
	<-done

	snap := gate.Current()
	if snap.State != StateUnauthenticated || snap.User != nil {
		t.Errorf("stale resolution overwrote newer state: %+v", snap)
	}
}

func TestSectionFor(t *testing.T) {
	cases := []struct {
		role roles.Role
		want Section
	}{
		{roles.Patient, SectionPatient},
		{roles.Doctor, SectionDoctor},
		{roles.LabOwner, SectionLabOwner},
		{roles.Role("bogus"), SectionPatient},
	}
	for _, tc := range cases {
		if got := SectionFor(tc.role); got != tc.want {
			t.Errorf("SectionFor(%s) = %s, want %s", tc.role, got, tc.want)
		}
	}
}

func TestSectionScreens(t *testing.T) {
	auth := Section("nonsense").Screens()
	if !reflect.DeepEqual(auth, []string{"Login", "Signup", "ForgotPassword"}) {
		t.Errorf("unknown section screens = %v, want auth set", auth)
	}
	for _, s := range []Section{SectionPatient, SectionDoctor, SectionLabOwner} {
		if len(s.Screens()) == 0 {
			t.Errorf("section %s has no screens", s)
		}
	}
}
