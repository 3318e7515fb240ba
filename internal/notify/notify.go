// Package notify is the transient message surface that interaction models
// report outcomes to.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Kind distinguishes success from failure messages
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier displays a transient message to the user
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Console writes messages as lines to w
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console notifier
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(msg string) { c.write("✔", msg) }

func (c *Console) Error(msg string) { c.write("✖", msg) }

func (c *Console) write(mark, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", mark, msg)
}

// Log sends messages to a zerolog logger
type Log struct {
	log zerolog.Logger
}

// NewLog creates a notifier backed by log
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "notify").Logger()}
}

func (l *Log) Success(msg string) { l.log.Info().Msg(msg) }

func (l *Log) Error(msg string) { l.log.Error().Msg(msg) }

// Message is one recorded notification
type Message struct {
	Kind Kind
	Text string
}

// Recorder keeps every notification in memory
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(msg string) { r.add(KindSuccess, msg) }

func (r *Recorder) Error(msg string) { r.add(KindError, msg) }

func (r *Recorder) add(kind Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Text: msg})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message, if any.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
