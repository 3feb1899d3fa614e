package client

import (
	"context"
	"testing"
	"time"

	"github.com/beka-birhanu/cman/game/maze/mazetest"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimRenderer(t *testing.T) (*TerminalRenderer, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	r, err := NewTerminalRenderer(screen)
	require.NoError(t, err)
	screen.SetSize(80, 25)
	t.Cleanup(r.Close)
	return r, screen
}

func TestTerminalRender(t *testing.T) {
	r, screen := newSimRenderer(t)
	m := mazetest.MustLoad(t)

	r.Render(m.Renderable(allAlive(), m.CmanSpawn(), m.SpiritSpawn()), View{Role: "cman", CanMove: true, Attempts: 3})

	cells, width, _ := screen.GetContents()
	at := func(row, col int) rune {
		return cells[row*width+col].Runes[0]
	}
	assert.Equal(t, '█', at(0, 0))
	assert.Equal(t, '☺', at(1, 1))
	assert.Equal(t, '*', at(1, 3))
	assert.Equal(t, '@', at(7, 10))

	status := make([]rune, 0, 4)
	for col := 0; col < 4; col++ {
		status = append(status, at(m.Height()+1, col))
	}
	assert.Equal(t, "cman", string(status))
}

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want Key
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), KeyUp},
		{tcell.NewEventKey(tcell.KeyRune, 'A', tcell.ModNone), KeyLeft},
		{tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone), KeyDown},
		{tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), KeyRight},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), KeyQuit},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), KeyUp},
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), KeyRight},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), KeyQuit},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone), KeyQuit},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), KeyNone},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), KeyNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TranslateKey(tt.ev), tt.ev.Name())
	}
}

func TestReadKeys(t *testing.T) {
	r, screen := newSimRenderer(t)
	slot := &KeySlot{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.ReadKeys(ctx, slot)
		close(done)
	}()

	screen.InjectKey(tcell.KeyRune, 'd', tcell.ModNone)
	assert.Eventually(t, func() bool { return slot.Take() == KeyRight }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ReadKeys did not return after cancellation")
	}
}

