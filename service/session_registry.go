package service

import (
	"errors"
	"net/netip"
	"time"

	"github.com/beka-birhanu/cman/game"
	"github.com/beka-birhanu/cman/protocol"
)

// Session errors.
var (
	ErrRoleTaken        = errors.New("role taken")
	ErrInvalidRole      = errors.New("invalid role")
	ErrAlreadyJoined    = errors.New("address already joined with another role")
	ErrNotJoined        = errors.New("address has not joined")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNotAPlayer       = errors.New("spectators cannot move")
	ErrEmptyPayload     = errors.New("empty payload")
	ErrServerOpcode     = errors.New("server-only opcode")
)

// WireCode maps a request error to the Error frame code sent back to the client.
func WireCode(err error) (protocol.ErrorCode, bool) {
	switch {
	case errors.Is(err, ErrRoleTaken):
		return protocol.ErrCodeRoleTaken, true
	case errors.Is(err, ErrInvalidRole):
		return protocol.ErrCodeInvalidRole, true
	case errors.Is(err, ErrInvalidDirection):
		return protocol.ErrCodeInvalidDirection, true
	case errors.Is(err, ErrEmptyPayload):
		return protocol.ErrCodeEmptyPayload, true
	case errors.Is(err, ErrAlreadyJoined), errors.Is(err, ErrNotJoined),
		errors.Is(err, ErrNotAPlayer), errors.Is(err, ErrServerOpcode):
		return protocol.ErrCodeWrongOpcode, true
	default:
		return 0, false
	}
}

// ClientSession is one joined address.
type ClientSession struct {
	Addr     netip.AddrPort
	Role     game.Role
	LastSeen time.Time // Last datagram received from Addr.
}

// JoinResult describes an accepted join.
type JoinResult struct {
	Session     *ClientSession
	SeatsFilled bool // This join filled the second seat.
	Rejoined    bool // The address was already registered with the same role.
}

// SessionRegistry maps addresses to sessions and keeps each seat unique.
// It is not safe for concurrent use; the match loop owns it.
type SessionRegistry struct {
	sessions   map[netip.AddrPort]*ClientSession
	cman       *ClientSession
	spirit     *ClientSession
	spectators []*ClientSession // join order
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[netip.AddrPort]*ClientSession),
	}
}

// Join registers addr under role. Spectators are always accepted; a seat is
// accepted only while it is empty.
func (r *SessionRegistry) Join(addr netip.AddrPort, role game.Role) (JoinResult, error) {
	if !role.Valid() {
		return JoinResult{}, ErrInvalidRole
	}

	if s, ok := r.sessions[addr]; ok {
		if s.Role != role {
			return JoinResult{}, ErrAlreadyJoined
		}
		return JoinResult{Session: s, Rejoined: true}, nil
	}

	s := &ClientSession{Addr: addr, Role: role}
	switch role {
	case game.RoleCman:
		if r.cman != nil {
			return JoinResult{}, ErrRoleTaken
		}
		r.cman = s
	case game.RoleSpirit:
		if r.spirit != nil {
			return JoinResult{}, ErrRoleTaken
		}
		r.spirit = s
	default:
		r.spectators = append(r.spectators, s)
	}
	r.sessions[addr] = s

	return JoinResult{
		Session:     s,
		SeatsFilled: role.IsPlayer() && r.cman != nil && r.spirit != nil,
	}, nil
}

// Lookup returns the session of addr.
func (r *SessionRegistry) Lookup(addr netip.AddrPort) (*ClientSession, bool) {
	s, ok := r.sessions[addr]
	return s, ok
}

// Remove drops the session of addr and frees its seat.
func (r *SessionRegistry) Remove(addr netip.AddrPort) (*ClientSession, bool) {
	s, ok := r.sessions[addr]
	if !ok {
		return nil, false
	}
	delete(r.sessions, addr)

	switch s {
	case r.cman:
		r.cman = nil
	case r.spirit:
		r.spirit = nil
	default:
		for i, sp := range r.spectators {
			if sp == s {
				r.spectators = append(r.spectators[:i], r.spectators[i+1:]...)
				break
			}
		}
	}
	return s, true
}

// Occupant returns the session seated as role.
func (r *SessionRegistry) Occupant(role game.Role) (*ClientSession, bool) {
	switch role {
	case game.RoleCman:
		return r.cman, r.cman != nil
	case game.RoleSpirit:
		return r.spirit, r.spirit != nil
	default:
		return nil, false
	}
}

// Spectators returns the spectator addresses in join order.
func (r *SessionRegistry) Spectators() []netip.AddrPort {
	out := make([]netip.AddrPort, len(r.spectators))
	for i, s := range r.spectators {
		out[i] = s.Addr
	}
	return out
}

// Addrs returns every connected address: Cman, Spirit, then spectators.
func (r *SessionRegistry) Addrs() []netip.AddrPort {
	out := make([]netip.AddrPort, 0, len(r.sessions))
	if r.cman != nil {
		out = append(out, r.cman.Addr)
	}
	if r.spirit != nil {
		out = append(out, r.spirit.Addr)
	}
	return append(out, r.Spectators()...)
}

// Len returns the number of sessions.
func (r *SessionRegistry) Len() int {
	return len(r.sessions)
}

// Touch records activity from addr.
func (r *SessionRegistry) Touch(addr netip.AddrPort, now time.Time) bool {
	s, ok := r.sessions[addr]
	if ok {
		s.LastSeen = now
	}
	return ok
}

// Idle returns the seated sessions not heard from within timeout.
func (r *SessionRegistry) Idle(now time.Time, timeout time.Duration) []*ClientSession {
	var out []*ClientSession
	for _, s := range []*ClientSession{r.cman, r.spirit} {
		if s != nil && now.Sub(s.LastSeen) > timeout {
			out = append(out, s)
		}
	}
	return out
}
