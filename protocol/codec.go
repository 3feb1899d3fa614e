package protocol

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/cman/game"
)

var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrTruncatedFrame = errors.New("truncated frame")
)

// TruncatedFrameError reports a frame whose payload ended before its fixed length.
type TruncatedFrameError struct {
	Opcode Opcode
	Have   int // payload bytes present
}

func (e *TruncatedFrameError) Error() string {
	n, _ := e.Opcode.PayloadLen()
	return fmt.Sprintf("%s: %s needs %d payload bytes, got %d", ErrTruncatedFrame, e.Opcode, n, e.Have)
}

func (e *TruncatedFrameError) Unwrap() error {
	return ErrTruncatedFrame
}

// Encode returns the wire bytes of f.
func Encode(f Frame) []byte {
	return Append(nil, f)
}

// Append appends the wire bytes of f to dst.
func Append(dst []byte, f Frame) []byte {
	dst = append(dst, byte(f.Opcode()))
	return f.appendPayload(dst)
}

// EncodeAll packs frames into a single datagram.
func EncodeAll(frames ...Frame) []byte {
	var out []byte
	for _, f := range frames {
		out = Append(out, f)
	}
	return out
}

// Decode reads frames greedily from a datagram.
//
// On an unknown opcode it returns the frames read so far together with
// ErrUnknownOpcode. When the last frame is cut short it returns the frames read
// so far and a *TruncatedFrameError; the partial frame is never returned.
func Decode(data []byte) ([]Frame, error) {
	var frames []Frame
	for len(data) > 0 {
		op := Opcode(data[0])
		n, ok := op.PayloadLen()
		if !ok {
			return frames, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, data[0])
		}
		payload := data[1:]
		if len(payload) < n {
			return frames, &TruncatedFrameError{Opcode: op, Have: len(payload)}
		}
		frames = append(frames, build(op, payload[:n]))
		data = payload[n:]
	}
	return frames, nil
}

// build turns a full-length payload into its variant.
func build(op Opcode, p []byte) Frame {
	switch op {
	case OpJoin:
		return Join{Role: game.Role(p[0])}
	case OpMove:
		return Move{Direction: game.Direction(p[0])}
	case OpQuit:
		return Quit{}
	case OpGameUpdate:
		f := GameUpdate{
			Blocked:   p[0] != 0,
			CmanRow:   p[1],
			CmanCol:   p[2],
			SpiritRow: p[3],
			SpiritCol: p[4],
			Attempts:  p[5],
		}
		copy(f.Mask[:], p[6:])
		return f
	case OpEnd:
		return End{Winner: game.Role(p[0]), Captures: p[1], Score: p[2]}
	default:
		return Error{Code: ErrorCode(p[0])}
	}
}
