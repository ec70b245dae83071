// Package session holds the single piece of process state that decides which
// role-specific subtree of the app is reachable. All mutation goes through
// one reducer fed by identity-provider events, so the state machine is
// testable without any transport.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Resolver is what the gate needs from profile resolution.
type Resolver interface {
	Resolve(ctx context.Context, session *identity.Session) (*profiles.SessionUser, error)
}

// Snapshot is an immutable view of the gate handed to subscribers and the
// session endpoint.
type Snapshot struct {
	State   State                 `json:"state"`
	Section Section               `json:"active_section"`
	User    *profiles.SessionUser `json:"user,omitempty"`
}

// Gate is the session singleton. Exactly one session user is live at a time;
// each committed transition replaces it wholesale.
type Gate struct {
	resolver Resolver
	timeout  time.Duration

	mu         sync.Mutex
	state      State
	user       *profiles.SessionUser
	generation uint64
	nextSub    int
	subs       map[int]func(Snapshot)
}

func NewGate(resolver Resolver) *Gate {
	return &Gate{
		resolver: resolver,
		timeout:  15 * time.Second,
		state:    StateUnauthenticated,
		subs:     make(map[int]func(Snapshot)),
	}
}

// HandleAuthEvent is the single reducer entrypoint. Wire it to
// identity.Provider.Subscribe.
func (g *Gate) HandleAuthEvent(event identity.Event) {
	switch event.Kind {
	case identity.SignedIn:
		if event.Session != nil {
			g.signIn(event.Session)
		}
	case identity.SignedOut:
		g.signOut()
	}
}

// Restore feeds an already-live session through the same resolution path as
// a SignedIn event. Used by the startup "is there already a session" check,
// before any event has fired.
func (g *Gate) Restore(session *identity.Session) {
	if session != nil {
		g.signIn(session)
	}
}

func (g *Gate) signIn(session *identity.Session) {
	g.mu.Lock()
	// Duplicate SIGNED_IN for the session already live: re-resolving would
	// be harmless but must not flicker the active section, so skip it.
	if g.state == StateAuthenticated && g.user != nil && g.user.AuthID == session.User.ID {
		g.mu.Unlock()
		return
	}
	g.generation++
	gen := g.generation
	g.state = StateAuthenticating
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	user, err := g.resolver.Resolve(ctx, session)

	g.mu.Lock()
	if g.generation != gen {
		// A newer event superseded this resolution; discard the result.
		g.mu.Unlock()
		return
	}
	if err != nil {
		// Never enter a role state with incomplete identity.
		g.state = StateUnauthenticated
		g.user = nil
	} else {
		g.state = StateAuthenticated
		g.user = user
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(snap)
}

func (g *Gate) signOut() {
	g.mu.Lock()
	g.generation++
	g.state = StateUnauthenticated
	g.user = nil
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.notify(snap)
}

// Current returns the gate's snapshot.
func (g *Gate) Current() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// ActiveSection returns the navigation subtree currently reachable.
func (g *Gate) ActiveSection() Section {
	return g.Current().Section
}

// Subscribe registers fn for committed transitions; the returned func
// removes it. Superseded resolutions never reach subscribers.
func (g *Gate) Subscribe(fn func(Snapshot)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

func (g *Gate) snapshotLocked() Snapshot {
	snap := Snapshot{State: g.state, Section: SectionAuth}
	if g.user != nil {
		u := *g.user
		snap.User = &u
		snap.Section = SectionFor(u.Role)
	}
	return snap
}

func (g *Gate) notify(snap Snapshot) {
	g.mu.Lock()
	fns := make([]func(Snapshot), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
