package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/api"
	"github.com/atharvakonge/edustocks/internal/config"
	"github.com/atharvakonge/edustocks/internal/gate"
	"github.com/atharvakonge/edustocks/internal/identity"
	"github.com/atharvakonge/edustocks/internal/logger"
	"github.com/atharvakonge/edustocks/internal/notify"
)

const sessionUserKey = "EDUSTOCKS_USER"

var errSignedOut = errors.New("not signed in; run `edustocks login EMAIL` first")

// client wires the session, backend and notifier shared by all commands
type client struct {
	cfg      *config.Client
	log      zerolog.Logger
	session  *identity.Session
	backend  *api.Client
	notifier notify.Notifier
	// sandbox is set when the session is not a pre-issued token
	sandbox bool
}

func newClient(cfg *config.Client) (*client, error) {
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	c := &client{cfg: cfg, log: log, notifier: notify.NewConsole(os.Stdout)}

	var provider identity.Provider
	if cfg.Token != "" {
		provider = identity.NewStaticProvider(cfg.Token, identity.User{ID: cfg.User, Email: cfg.User})
	} else {
		user := cfg.User
		if user == "" {
			user = savedUser(log)
		}
		provider = identity.NewSandboxProvider(user)
		c.sandbox = true
	}

	c.session = identity.NewSession(provider, log)
	c.backend = api.NewClient(cfg.APIURL, c.session, cfg.HTTPTimeout, log)
	c.backend.SetRateLimit(cfg.RateLimit, 10)
	c.session.SetVerifier(c.backend)
	return c, nil
}

// protected runs body while view is active behind the session gate. A
// signed-out session never reaches body.
func (c *client) protected(ctx context.Context, view gate.View, body func(ctx context.Context) error) error {
	var activateErr error
	g := gate.New(c.session, view, gate.Options{
		OnActivateError: func(err error) { activateErr = err },
	}, c.log)
	g.Start(ctx)
	defer g.Stop()

	if err := c.session.Resolve(ctx); err != nil {
		return err
	}
	if !g.Active() {
		return errSignedOut
	}
	if activateErr != nil {
		return activateErr
	}
	return body(ctx)
}

// loader is a view whose activation is a single load
type loader func(ctx context.Context) error

func (l loader) Activate(ctx context.Context) error { return l(ctx) }

func (l loader) Teardown() {}

func sessionFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "edustocks", "session.env"), nil
}

func savedUser(log zerolog.Logger) string {
	path, err := sessionFile()
	if err != nil {
		return ""
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Ignoring unreadable session file")
		}
		return ""
	}
	return vals[sessionUserKey]
}

func saveUser(email string) error {
	path, err := sessionFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return godotenv.Write(map[string]string{sessionUserKey: email}, path)
}

func clearUser() error {
	path, err := sessionFile()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
