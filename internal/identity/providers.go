package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// StaticProvider serves a pre-issued token. It cannot sign in anyone else.
type StaticProvider struct {
	mu    sync.Mutex
	token string
	user  *User
}

// NewStaticProvider creates a provider for a token issued out of band.
// An empty token yields a provider with no session.
func NewStaticProvider(token string, user User) *StaticProvider {
	p := &StaticProvider{token: token}
	if token != "" {
		p.user = &user
	}
	return p
}

func (p *StaticProvider) CurrentUser(ctx context.Context) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user, nil
}

func (p *StaticProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return "", ErrNoSession
	}
	return p.token, nil
}

func (p *StaticProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	return nil, errors.New("static provider cannot sign in; issue a new token instead")
}

func (p *StaticProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = nil
	p.token = ""
	return nil
}

// SandboxProvider signs in any email without a password check. Its token is
// the user id, which is what the sandbox backend expects as a bearer.
type SandboxProvider struct {
	mu   sync.Mutex
	user *User
}

// NewSandboxProvider creates a sandbox provider, already signed in as
// email when it is non-empty.
func NewSandboxProvider(email string) *SandboxProvider {
	p := &SandboxProvider{}
	if email = strings.TrimSpace(email); email != "" {
		p.user = &User{ID: email, Email: email}
	}
	return p
}

func (p *SandboxProvider) CurrentUser(ctx context.Context) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user, nil
}

func (p *SandboxProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return "", ErrNoSession
	}
	return p.user.ID, nil
}

func (p *SandboxProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = &User{ID: email, Email: email}
	return p.user, nil
}

func (p *SandboxProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = nil
	return nil
}
