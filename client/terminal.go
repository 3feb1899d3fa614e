package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/beka-birhanu/cman/game/maze"
	"github.com/gdamore/tcell/v2"
)

var cellStyles = map[maze.Cell]tcell.Style{
	maze.WallCell:   tcell.StyleDefault.Foreground(tcell.ColorBlue),
	maze.PointCell:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
	maze.CmanCell:   tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
	maze.SpiritCell: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	maze.FreeCell:   tcell.StyleDefault,
}

// TerminalRenderer draws the grid on a tcell screen and samples the keyboard.
type TerminalRenderer struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminalRenderer initializes screen and wraps it.
func NewTerminalRenderer(screen tcell.Screen) (*TerminalRenderer, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()
	screen.Clear()
	return &TerminalRenderer{screen: screen}, nil
}

var _ Renderer = &TerminalRenderer{}

// Render draws grid and a status line below it.
func (t *TerminalRenderer) Render(grid maze.Grid, view View) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	for row, cells := range grid {
		for col, c := range cells {
			glyph := []rune(c.Visual())[0]
			t.screen.SetContent(col, row, glyph, nil, cellStyles[c])
		}
	}

	state := "wait"
	if view.CanMove {
		state = "move"
	}
	status := fmt.Sprintf("%s | attempts %d | score %d | %s | q to quit", view.Role, view.Attempts, view.Score, state)
	for i, r := range status {
		t.screen.SetContent(i, len(grid)+1, r, nil, tcell.StyleDefault)
	}
	t.screen.Show()
}

// Close restores the terminal.
func (t *TerminalRenderer) Close() {
	t.screen.Fini()
}

// ReadKeys stores every relevant key press into slot until ctx is done or the screen is finalized.
func (t *TerminalRenderer) ReadKeys(ctx context.Context, slot *KeySlot) {
	go func() {
		<-ctx.Done()
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for {
		ev := t.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if k := TranslateKey(ev); k != KeyNone {
				slot.Set(k)
			}
		case *tcell.EventResize:
			t.mu.Lock()
			t.screen.Sync()
			t.mu.Unlock()
		}
	}
}

// TranslateKey maps a key event to a client key: w a s d, arrows, q, Esc and Ctrl-C.
func TranslateKey(ev *tcell.EventKey) Key {
	switch ev.Key() {
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return KeyQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return KeyUp
		case 'a', 'A':
			return KeyLeft
		case 's', 'S':
			return KeyDown
		case 'd', 'D':
			return KeyRight
		case 'q', 'Q':
			return KeyQuit
		}
	}
	return KeyNone
}
