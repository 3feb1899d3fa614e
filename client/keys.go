package client

import (
	"sync/atomic"

	"github.com/beka-birhanu/cman/game"
)

// Key is an input sampled from the keyboard.
type Key int32

const (
	KeyNone Key = iota
	KeyUp
	KeyLeft
	KeyDown
	KeyRight
	KeyQuit
)

var keyDirections = map[Key]game.Direction{
	KeyUp:    game.DirectionUp,
	KeyLeft:  game.DirectionLeft,
	KeyDown:  game.DirectionDown,
	KeyRight: game.DirectionRight,
}

// Direction returns the move direction of k.
func (k Key) Direction() (game.Direction, bool) {
	d, ok := keyDirections[k]
	return d, ok
}

// KeySlot holds the most recent key. Writers overwrite, the reader takes and clears.
type KeySlot struct {
	v atomic.Int32
}

// Set stores k, replacing any key not yet taken.
func (s *KeySlot) Set(k Key) {
	s.v.Store(int32(k))
}

// Take returns the stored key and clears the slot.
func (s *KeySlot) Take() Key {
	return Key(s.v.Swap(int32(KeyNone)))
}
