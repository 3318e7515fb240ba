package market

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/edustocks/internal/models"
)

func TestGetAndSearch(t *testing.T) {
	m := New(DefaultStocks(), zerolog.Nop())

	s, ok := m.Get("aapl")
	require.True(t, ok)
	assert.Equal(t, "Apple Inc.", s.Name)

	_, ok = m.Get("NOPE")
	assert.False(t, ok)

	got := m.Search("micro")
	require.Len(t, got, 1)
	assert.Equal(t, "MSFT", got[0].Symbol)
	assert.Len(t, m.List(), 10)
}

func TestSet_TracksChangeFromOpen(t *testing.T) {
	m := New([]models.Stock{{Symbol: "AAPL", Price: 100}}, zerolog.Nop())

	u := m.Set("AAPL", 105, 0, 10)
	assert.Equal(t, 105.0, u.Price)
	assert.Equal(t, 5.0, u.Change)
	assert.Equal(t, 5.0, u.ChangePercent)

	m.Set("AAPL", 0, -10, 0)
	s, _ := m.Get("AAPL")
	assert.Equal(t, 94.5, s.Price)
	assert.Equal(t, -5.5, s.Change)
	assert.Equal(t, int64(10), s.Volume)
}

func TestTick_StaysWithinTwoPercent(t *testing.T) {
	m := New([]models.Stock{{Symbol: "TSLA", Price: 250}}, zerolog.Nop())
	for i := 0; i < 50; i++ {
		before, _ := m.Get("TSLA")
		u := m.Tick()
		assert.Equal(t, "TSLA", u.Symbol)
		assert.InDelta(t, before.Price, u.Price, before.Price*0.02+0.01)
	}
}

func TestSubscribe(t *testing.T) {
	m := New(DefaultStocks(), zerolog.Nop())
	ch, cancel := m.Subscribe()

	m.Set("NVDA", 900, 0, 0)
	select {
	case u := <-ch:
		assert.Equal(t, "NVDA", u.Symbol)
		assert.Equal(t, 900.0, u.Price)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	m.Set("NVDA", 901, 0, 0)
}
