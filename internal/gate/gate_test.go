package gate

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/edustocks/internal/identity"
)

// lifecycleView records lifecycle calls and the session state seen at each one.
type lifecycleView struct {
	session     *identity.Session
	events      []string
	activatedIn []identity.State
}

func (v *lifecycleView) Activate(ctx context.Context) error {
	v.events = append(v.events, "activate")
	v.activatedIn = append(v.activatedIn, v.session.Snapshot().State)
	return nil
}

func (v *lifecycleView) Teardown() {
	v.events = append(v.events, "teardown")
}

func TestDecide(t *testing.T) {
	user := &identity.User{ID: "u1"}
	assert.Equal(t, Loading, Decide(identity.Snapshot{State: identity.Resolving}))
	assert.Equal(t, Render, Decide(identity.Snapshot{State: identity.Authenticated, User: user}))
	assert.Equal(t, Redirect, Decide(identity.Snapshot{State: identity.Authenticated}))
	assert.Equal(t, Redirect, Decide(identity.Snapshot{State: identity.Unauthenticated}))
}

func TestGate_LoadingUntilResolved(t *testing.T) {
	session := identity.NewSession(identity.NewSandboxProvider("alice@example.com"), zerolog.Nop())
	view := &lifecycleView{session: session}
	loading := 0
	g := New(session, view, Options{OnLoading: func() { loading++ }}, zerolog.Nop())

	g.Start(context.Background())
	assert.Equal(t, Loading, g.Decision())
	assert.False(t, g.Active())
	assert.Empty(t, view.events)
	assert.Equal(t, 1, loading)

	require.NoError(t, session.Resolve(context.Background()))
	assert.True(t, g.Active())
	assert.Equal(t, []string{"activate"}, view.events)
}

func TestGate_RedirectsWhenUnauthenticated(t *testing.T) {
	session := identity.NewSession(identity.NewSandboxProvider(""), zerolog.Nop())
	view := &lifecycleView{session: session}
	redirects := 0
	g := New(session, view, Options{OnRedirect: func() { redirects++ }}, zerolog.Nop())
	g.Start(context.Background())

	require.NoError(t, session.Resolve(context.Background()))

	assert.Equal(t, Redirect, g.Decision())
	assert.Equal(t, 1, redirects)
	assert.Empty(t, view.events)
}

func TestGate_NeverRendersWhileResolving(t *testing.T) {
	sequences := []struct {
		name  string
		email string
	}{
		{"resolving to authenticated", "alice@example.com"},
		{"resolving to unauthenticated", ""},
	}

	for _, tc := range sequences {
		t.Run(tc.name, func(t *testing.T) {
			provider := identity.NewSandboxProvider(tc.email)
			session := identity.NewSession(provider, zerolog.Nop())
			view := &lifecycleView{session: session}
			g := New(session, view, Options{}, zerolog.Nop())
			g.Start(context.Background())

			ctx := context.Background()
			require.NoError(t, session.Resolve(ctx))
			require.NoError(t, session.Logout(ctx))
			_, err := session.Login(ctx, "bob@example.com", "pw")
			require.NoError(t, err)
			require.NoError(t, session.Resolve(ctx))

			for _, st := range view.activatedIn {
				assert.Equal(t, identity.Authenticated, st)
			}
		})
	}
}

func TestGate_LogoutTearsDownBeforeRedirect(t *testing.T) {
	session := identity.NewSession(identity.NewSandboxProvider("alice@example.com"), zerolog.Nop())
	view := &lifecycleView{session: session}
	g := New(session, view, Options{OnRedirect: func() { view.events = append(view.events, "redirect") }}, zerolog.Nop())
	g.Start(context.Background())
	require.NoError(t, session.Resolve(context.Background()))

	require.NoError(t, session.Logout(context.Background()))

	assert.Equal(t, []string{"activate", "teardown", "redirect"}, view.events)
	assert.False(t, g.Active())
}

func TestGate_StopTearsDownActiveView(t *testing.T) {
	session := identity.NewSession(identity.NewSandboxProvider("alice@example.com"), zerolog.Nop())
	view := &lifecycleView{session: session}
	g := New(session, view, Options{}, zerolog.Nop())
	g.Start(context.Background())
	require.NoError(t, session.Resolve(context.Background()))

	g.Stop()
	require.NoError(t, session.Logout(context.Background()))

	assert.Equal(t, []string{"activate", "teardown"}, view.events)
}

func TestGate_IgnoresOlderSnapshot(t *testing.T) {
	session := identity.NewSession(identity.NewSandboxProvider("alice@example.com"), zerolog.Nop())
	view := &lifecycleView{session: session}
	g := New(session, view, Options{}, zerolog.Nop())
	user := &identity.User{ID: "alice@example.com"}

	// a transition delivered before the initial snapshot is applied
	g.apply(identity.Snapshot{State: identity.Authenticated, User: user, Seq: 2})
	g.apply(identity.Snapshot{State: identity.Resolving, Seq: 1})
	g.apply(identity.Snapshot{State: identity.Authenticated, User: user, Seq: 2})

	assert.Equal(t, Render, g.Decision())
	assert.True(t, g.Active())
	assert.Equal(t, []string{"activate"}, view.events)
}
