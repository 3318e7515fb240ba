// Package identity holds the authenticated-user session that the rest of the
// client depends on. The session is injected explicitly; nothing here is global.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// State is the identity-resolution state
type State int

const (
	Resolving State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// User is the identity issued by the provider
type User struct {
	ID    string
	Email string
}

// Snapshot is the session state at one point in time. Seq grows with every
// transition, so a later snapshot always has a larger Seq.
type Snapshot struct {
	State State
	User  *User
	Seq   uint64
}

// ErrNoSession is returned by providers when nobody is signed in
var ErrNoSession = errors.New("no active session")

// Provider issues and validates identities
type Provider interface {
	// CurrentUser returns the signed-in user, or nil when there is none.
	CurrentUser(ctx context.Context) (*User, error)
	// Token returns a fresh credential for the signed-in user.
	Token(ctx context.Context) (string, error)
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
}

// Verifier registers a signed-in session with the backend
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

// Session tracks identity state and notifies subscribers of every transition
type Session struct {
	provider Provider
	log      zerolog.Logger

	mu       sync.Mutex
	snap     Snapshot
	subs     map[int]func(Snapshot)
	nextID   int
	seq      uint64
	verifier Verifier
}

// NewSession creates a session in the Resolving state
func NewSession(provider Provider, log zerolog.Logger) *Session {
	return &Session{
		provider: provider,
		log:      log.With().Str("component", "session").Logger(),
		snap:     Snapshot{State: Resolving},
		subs:     make(map[int]func(Snapshot)),
	}
}

// SetVerifier sets the backend hook called after a successful login.
func (s *Session) SetVerifier(v Verifier) {
	s.mu.Lock()
	s.verifier = v
	s.mu.Unlock()
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn for every future transition and returns a func
// that removes it. Subscribers are called in registration order.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) transition(snap Snapshot) {
	s.mu.Lock()
	s.seq++
	snap.Seq = s.seq
	s.snap = snap
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	s.log.Debug().Str("state", snap.State.String()).Msg("Session transition")
	for _, fn := range fns {
		fn(snap)
	}
}

// Resolve asks the provider who is signed in and settles the state.
func (s *Session) Resolve(ctx context.Context) error {
	s.transition(Snapshot{State: Resolving})

	user, err := s.provider.CurrentUser(ctx)
	if err != nil && !errors.Is(err, ErrNoSession) {
		s.transition(Snapshot{State: Unauthenticated})
		return fmt.Errorf("resolve identity: %w", err)
	}
	if user == nil {
		s.transition(Snapshot{State: Unauthenticated})
		return nil
	}
	s.transition(Snapshot{State: Authenticated, User: user})
	return nil
}

// Login signs in through the provider, then registers the session with the
// backend. A failed registration is logged and does not fail the login.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	s.transition(Snapshot{State: Resolving})

	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.transition(Snapshot{State: Unauthenticated})
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s.mu.Lock()
	verifier := s.verifier
	s.mu.Unlock()
	if verifier != nil {
		if token, err := s.provider.Token(ctx); err != nil {
			s.log.Warn().Err(err).Msg("No token for backend verification")
		} else if err := verifier.Verify(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("Backend session verification failed")
		}
	}

	s.transition(Snapshot{State: Authenticated, User: user})
	return user, nil
}

// Logout signs out and forces every subscriber through a fresh decision.
func (s *Session) Logout(ctx context.Context) error {
	s.transition(Snapshot{State: Resolving})
	err := s.provider.SignOut(ctx)
	s.transition(Snapshot{State: Unauthenticated})
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Token returns a fresh credential when a session exists. ok is false when
// nobody is signed in; requests then go out without authorization.
func (s *Session) Token(ctx context.Context) (token string, ok bool, err error) {
	if s.Snapshot().State != Authenticated {
		return "", false, nil
	}
	token, err = s.provider.Token(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("identity token: %w", err)
	}
	return token, true, nil
}
