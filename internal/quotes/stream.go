// Package quotes consumes the live price stream and hands each update to a
// sink, typically the trading model's ApplyQuote.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/api"
	"github.com/atharvakonge/edustocks/internal/models"
)

// Sink receives decoded price updates
type Sink func(models.PriceUpdate)

// Options configures a Stream
type Options struct {
	// Tokens, when set, adds a bearer token to the handshake.
	Tokens api.TokenSource
	// ReconnectDelay is the pause before redialing; zero disables reconnects.
	ReconnectDelay   time.Duration
	HandshakeTimeout time.Duration
}

// Stream is a websocket quote subscription
type Stream struct {
	url  string
	opts Options
	log  zerolog.Logger
}

// NewStream creates a stream for the ws:// or wss:// url
func NewStream(url string, opts Options, log zerolog.Logger) *Stream {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	return &Stream{
		url:  url,
		opts: opts,
		log:  log.With().Str("component", "quotes").Logger(),
	}
}

// Run reads updates into sink until ctx is done. With a reconnect delay
// it redials after a dropped connection; otherwise it returns the error.
func (s *Stream) Run(ctx context.Context, sink Sink) error {
	for {
		err := s.runOnce(ctx, sink)
		if ctx.Err() != nil {
			return nil
		}
		if s.opts.ReconnectDelay <= 0 {
			return err
		}
		s.log.Warn().Err(err).Dur("retry_in", s.opts.ReconnectDelay).Msg("Quote stream dropped")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.opts.ReconnectDelay):
		}
	}
}

func (s *Stream) runOnce(ctx context.Context, sink Sink) error {
	header := http.Header{}
	if s.opts.Tokens != nil {
		token, ok, err := s.opts.Tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("quote stream token: %w", err)
		}
		if ok {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.opts.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("dial quote stream: %w", err)
	}
	defer conn.Close()
	s.log.Info().Str("url", s.url).Msg("Quote stream connected")

	// unblock ReadJSON on cancel
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var u models.PriceUpdate
		if err := conn.ReadJSON(&u); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("quote stream closed by server")
			}
			return fmt.Errorf("read quote: %w", err)
		}
		if u.Symbol == "" {
			continue
		}
		sink(u)
	}
}
