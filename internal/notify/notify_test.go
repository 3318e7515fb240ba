package notify

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConsole_WritesOneLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Success("Correct!")
	c.Error("Trade failed")

	assert.Equal(t, "✔ Correct!\n✖ Trade failed\n", buf.String())
}

func TestRecorder_KeepsOrder(t *testing.T) {
	r := &Recorder{}
	_, ok := r.Last()
	assert.False(t, ok)

	r.Error("a")
	r.Success("b")

	assert.Equal(t, []Message{{KindError, "a"}, {KindSuccess, "b"}}, r.Messages())
	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, "b", last.Text)
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b, NewLog(zerolog.Nop())}

	m.Success("done")

	assert.Len(t, a.Messages(), 1)
	assert.Len(t, b.Messages(), 1)
}
