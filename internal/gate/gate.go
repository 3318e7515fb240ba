// Package gate decides whether protected views may run for the current
// identity state, and activates or tears them down as that state changes.
package gate

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/identity"
)

// Decision is what the gate does for one identity snapshot
type Decision int

const (
	Loading Decision = iota
	Render
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decide maps a snapshot to a decision. Only an authenticated snapshot with
// a user renders protected content.
func Decide(snap identity.Snapshot) Decision {
	switch snap.State {
	case identity.Authenticated:
		if snap.User != nil {
			return Render
		}
		return Redirect
	case identity.Unauthenticated:
		return Redirect
	default:
		return Loading
	}
}

// View is protected content with an explicit lifecycle
type View interface {
	Activate(ctx context.Context) error
	Teardown()
}

// Options configures the side effects of non-render decisions
type Options struct {
	OnLoading  func()
	OnRedirect func()
	// OnActivateError receives the error of a failed activation. The view
	// stays active so it can be torn down normally.
	OnActivateError func(error)
}

// Gate binds a session to a view
type Gate struct {
	session *identity.Session
	view    View
	opts    Options
	log     zerolog.Logger

	mu       sync.Mutex
	ctx      context.Context
	active   bool
	decision Decision
	unsub    func()
	// seq of the newest snapshot applied; applied is false until the first
	seq     uint64
	applied bool
}

// New creates a gate; call Start to begin following the session.
func New(session *identity.Session, view View, opts Options, log zerolog.Logger) *Gate {
	return &Gate{
		session:  session,
		view:     view,
		opts:     opts,
		log:      log.With().Str("component", "gate").Logger(),
		decision: Loading,
	}
}

// Start applies the current snapshot and follows every later transition.
// ctx is handed to the view on each activation. A snapshot older than one
// already applied is ignored.
func (g *Gate) Start(ctx context.Context) {
	g.mu.Lock()
	g.ctx = ctx
	g.mu.Unlock()

	unsub := g.session.Subscribe(g.apply)

	g.mu.Lock()
	g.unsub = unsub
	g.mu.Unlock()

	g.apply(g.session.Snapshot())
}

// Stop unsubscribes and tears the view down if it is active.
func (g *Gate) Stop() {
	g.mu.Lock()
	unsub := g.unsub
	g.unsub = nil
	wasActive := g.active
	g.active = false
	g.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if wasActive {
		g.view.Teardown()
	}
}

// Decision returns the last decision applied
func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

// Active reports whether the protected view is currently rendered
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *Gate) apply(snap identity.Snapshot) {
	d := Decide(snap)

	g.mu.Lock()
	if g.applied && snap.Seq <= g.seq {
		g.mu.Unlock()
		return
	}
	g.applied = true
	g.seq = snap.Seq
	g.decision = d
	ctx := g.ctx
	activate := d == Render && !g.active
	teardown := d != Render && g.active
	if activate {
		g.active = true
	}
	if teardown {
		g.active = false
	}
	g.mu.Unlock()

	g.log.Debug().Str("decision", d.String()).Msg("Gate decision")

	// teardown happens before any loading/redirect affordance is shown
	if teardown {
		g.view.Teardown()
	}

	switch d {
	case Render:
		if activate {
			if err := g.view.Activate(ctx); err != nil {
				g.log.Error().Err(err).Msg("View activation failed")
				if g.opts.OnActivateError != nil {
					g.opts.OnActivateError(err)
				}
			}
		}
	case Loading:
		if g.opts.OnLoading != nil {
			g.opts.OnLoading()
		}
	case Redirect:
		if g.opts.OnRedirect != nil {
			g.opts.OnRedirect()
		}
	}
}
