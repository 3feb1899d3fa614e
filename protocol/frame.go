/*
Package protocol implements the Cman wire format.

A datagram carries one or more frames back to back. Every frame is a one byte
opcode followed by a payload whose length is fixed by the opcode, so frames
carry no length prefix. Opcodes with the high bit set are sent by the server
only.
*/
package protocol

import (
	"fmt"

	"github.com/beka-birhanu/cman/game"
	"github.com/beka-birhanu/cman/game/maze"
)

// Opcode identifies a frame variant.
type Opcode byte

const (
	OpJoin       Opcode = 0x00
	OpMove       Opcode = 0x01
	OpQuit       Opcode = 0x0F
	OpGameUpdate Opcode = 0x80
	OpEnd        Opcode = 0x8F
	OpError      Opcode = 0xFF
)

// PayloadLen returns the fixed payload length of o. ok is false for unknown opcodes.
func (o Opcode) PayloadLen() (n int, ok bool) {
	switch o {
	case OpJoin, OpMove, OpError:
		return 1, true
	case OpQuit:
		return 0, true
	case OpGameUpdate:
		return gameUpdateLen, true
	case OpEnd:
		return 3, true
	default:
		return 0, false
	}
}

// ServerOnly reports whether o may only travel from server to client.
func (o Opcode) ServerOnly() bool {
	return o&0x80 != 0
}

func (o Opcode) String() string {
	switch o {
	case OpJoin:
		return "join"
	case OpMove:
		return "move"
	case OpQuit:
		return "quit"
	case OpGameUpdate:
		return "game-update"
	case OpEnd:
		return "end"
	case OpError:
		return "error"
	default:
		return fmt.Sprintf("opcode(0x%02x)", byte(o))
	}
}

// Frame is one decoded protocol message. The set of implementations is closed.
type Frame interface {
	Opcode() Opcode
	appendPayload(dst []byte) []byte
}

// Join asks for a role.
type Join struct {
	Role game.Role
}

// Move asks to move the sender's role one cell.
type Move struct {
	Direction game.Direction
}

// Quit leaves the match.
type Quit struct{}

const gameUpdateLen = 6 + MaskBytes

// GameUpdate is the per-tick snapshot sent to every connected client.
type GameUpdate struct {
	Blocked   bool // true when the receiving role may not move
	CmanRow   byte
	CmanCol   byte
	SpiritRow byte
	SpiritCol byte
	Attempts  byte // captures Cman can still survive
	Mask      [MaskBytes]byte
}

// End announces the winner and closes the match.
type End struct {
	Winner   game.Role
	Captures byte
	Score    byte
}

// Error reports a rejected request.
type Error struct {
	Code ErrorCode
}

var (
	_ Frame = Join{}
	_ Frame = Move{}
	_ Frame = Quit{}
	_ Frame = GameUpdate{}
	_ Frame = End{}
	_ Frame = Error{}
)

func (Join) Opcode() Opcode       { return OpJoin }
func (Move) Opcode() Opcode       { return OpMove }
func (Quit) Opcode() Opcode       { return OpQuit }
func (GameUpdate) Opcode() Opcode { return OpGameUpdate }
func (End) Opcode() Opcode        { return OpEnd }
func (Error) Opcode() Opcode      { return OpError }

func (f Join) appendPayload(dst []byte) []byte { return append(dst, byte(f.Role)) }
func (f Move) appendPayload(dst []byte) []byte { return append(dst, byte(f.Direction)) }
func (Quit) appendPayload(dst []byte) []byte   { return dst }

func (f GameUpdate) appendPayload(dst []byte) []byte {
	var blocked byte
	if f.Blocked {
		blocked = 1
	}
	dst = append(dst, blocked, f.CmanRow, f.CmanCol, f.SpiritRow, f.SpiritCol, f.Attempts)
	return append(dst, f.Mask[:]...)
}

func (f End) appendPayload(dst []byte) []byte {
	return append(dst, byte(f.Winner), f.Captures, f.Score)
}

func (f Error) appendPayload(dst []byte) []byte { return append(dst, byte(f.Code)) }

// Cman returns Cman's position.
func (f GameUpdate) Cman() maze.CellPosition {
	return maze.CellPosition{Row: int(f.CmanRow), Col: int(f.CmanCol)}
}

// Spirit returns Spirit's position.
func (f GameUpdate) Spirit() maze.CellPosition {
	return maze.CellPosition{Row: int(f.SpiritRow), Col: int(f.SpiritCol)}
}

// Alive projects the collected mask into per-point alive flags.
func (f GameUpdate) Alive() [maze.MaxPoints]bool {
	return UnpackMask(f.Mask)
}

// ErrorCode is the payload of an Error frame.
type ErrorCode byte

const (
	ErrCodeWrongOpcode      ErrorCode = 0
	ErrCodeEmptyPayload     ErrorCode = 1
	ErrCodeInvalidDirection ErrorCode = 2
	ErrCodeInvalidRole      ErrorCode = 3
	ErrCodeRoleTaken        ErrorCode = 10
)

var errorMessages = map[ErrorCode]string{
	ErrCodeWrongOpcode:      "Wrong opcode sent to server",
	ErrCodeEmptyPayload:     "No data sent",
	ErrCodeInvalidDirection: "Invalid directions",
	ErrCodeInvalidRole:      "Incorrect desired role",
	ErrCodeRoleTaken:        "Role taken",
}

// Message returns the human readable text shown by clients.
func (c ErrorCode) Message() string {
	if m, ok := errorMessages[c]; ok {
		return "ERROR: " + m
	}
	return fmt.Sprintf("ERROR: Unknown error code %d", byte(c))
}
