package protocol

import "github.com/beka-birhanu/cman/game/maze"

const (
	// MaskBytes is the size of the packed point mask.
	MaskBytes = maze.MaxPoints / 8
)

// PackMask packs per-point alive flags into the wire mask.
// Bit i lives in byte i/8 at position 7-(i%8); a set bit marks a collected point.
func PackMask(alive [maze.MaxPoints]bool) [MaskBytes]byte {
	var mask [MaskBytes]byte
	for i, a := range alive {
		if !a {
			mask[i/8] |= 1 << (7 - i%8)
		}
	}
	return mask
}

// UnpackMask is the inverse of PackMask.
func UnpackMask(mask [MaskBytes]byte) [maze.MaxPoints]bool {
	var alive [maze.MaxPoints]bool
	for i := range alive {
		alive[i] = mask[i/8]&(1<<(7-i%8)) == 0
	}
	return alive
}
