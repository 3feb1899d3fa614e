package service

import (
	"fmt"
	"net/netip"
	"testing"
	"time"

	"github.com/beka-birhanu/cman/game"
	"github.com/beka-birhanu/cman/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(port uint16) netip.AddrPort {
	return netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), port)
}

func TestRegistryJoin(t *testing.T) {
	r := NewSessionRegistry()

	res, err := r.Join(addr(1), game.RoleCman)
	require.NoError(t, err)
	assert.False(t, res.SeatsFilled)
	assert.Equal(t, game.RoleCman, res.Session.Role)

	res, err = r.Join(addr(2), game.RoleSpirit)
	require.NoError(t, err)
	assert.True(t, res.SeatsFilled)

	for _, role := range []game.Role{game.RoleCman, game.RoleSpirit} {
		_, err = r.Join(addr(3), role)
		assert.ErrorIs(t, err, ErrRoleTaken)
	}

	for p := uint16(10); p < 15; p++ {
		res, err = r.Join(addr(p), game.RoleSpectator)
		require.NoError(t, err)
		assert.False(t, res.SeatsFilled)
	}
	assert.Equal(t, 7, r.Len())

	_, err = r.Join(addr(20), game.Role(3))
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, ok := r.Lookup(addr(20))
	assert.False(t, ok, "rejected joins leave no session")
}

func TestRegistryRepeatedJoin(t *testing.T) {
	r := NewSessionRegistry()

	_, err := r.Join(addr(1), game.RoleSpectator)
	require.NoError(t, err)
	res, err := r.Join(addr(1), game.RoleSpectator)
	require.NoError(t, err)
	assert.True(t, res.Rejoined)
	assert.Len(t, r.Spectators(), 1)

	_, err = r.Join(addr(2), game.RoleCman)
	require.NoError(t, err)
	res, err = r.Join(addr(2), game.RoleCman)
	require.NoError(t, err)
	assert.True(t, res.Rejoined)
	assert.False(t, res.SeatsFilled)

	_, err = r.Join(addr(2), game.RoleSpirit)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	_, ok := r.Occupant(game.RoleSpirit)
	assert.False(t, ok)
}

func TestRegistryRemove(t *testing.T) {
	r := NewSessionRegistry()
	_, _ = r.Join(addr(1), game.RoleCman)
	_, _ = r.Join(addr(2), game.RoleSpectator)
	_, _ = r.Join(addr(3), game.RoleSpectator)

	s, ok := r.Remove(addr(1))
	require.True(t, ok)
	assert.Equal(t, game.RoleCman, s.Role)
	_, ok = r.Occupant(game.RoleCman)
	assert.False(t, ok)

	_, err := r.Join(addr(4), game.RoleCman)
	assert.NoError(t, err, "freed seat can be taken again")

	_, ok = r.Remove(addr(2))
	require.True(t, ok)
	assert.Equal(t, []netip.AddrPort{addr(3)}, r.Spectators())

	_, ok = r.Remove(addr(99))
	assert.False(t, ok)
}

func TestRegistryAddrs(t *testing.T) {
	r := NewSessionRegistry()
	_, _ = r.Join(addr(5), game.RoleSpectator)
	_, _ = r.Join(addr(2), game.RoleSpirit)
	_, _ = r.Join(addr(1), game.RoleCman)
	_, _ = r.Join(addr(6), game.RoleSpectator)

	assert.Equal(t, []netip.AddrPort{addr(1), addr(2), addr(5), addr(6)}, r.Addrs())
}

func TestRegistryIdle(t *testing.T) {
	r := NewSessionRegistry()
	start := time.Unix(1000, 0)

	_, _ = r.Join(addr(1), game.RoleCman)
	_, _ = r.Join(addr(2), game.RoleSpectator)
	r.Touch(addr(1), start)
	r.Touch(addr(2), start)

	assert.Empty(t, r.Idle(start.Add(time.Second), 5*time.Second))

	idle := r.Idle(start.Add(6*time.Second), 5*time.Second)
	require.Len(t, idle, 1)
	assert.Equal(t, addr(1), idle[0].Addr, "spectators are never idle")

	r.Touch(addr(1), start.Add(4*time.Second))
	assert.Empty(t, r.Idle(start.Add(6*time.Second), 5*time.Second))
	assert.False(t, r.Touch(addr(9), start))
}

func TestWireCode(t *testing.T) {
	tests := []struct {
		err  error
		code protocol.ErrorCode
	}{
		{ErrRoleTaken, protocol.ErrCodeRoleTaken},
		{ErrInvalidRole, protocol.ErrCodeInvalidRole},
		{ErrInvalidDirection, protocol.ErrCodeInvalidDirection},
		{ErrEmptyPayload, protocol.ErrCodeEmptyPayload},
		{ErrAlreadyJoined, protocol.ErrCodeWrongOpcode},
		{ErrNotJoined, protocol.ErrCodeWrongOpcode},
		{ErrNotAPlayer, protocol.ErrCodeWrongOpcode},
		{fmt.Errorf("join: %w", ErrRoleTaken), protocol.ErrCodeRoleTaken},
	}
	for _, tt := range tests {
		code, ok := WireCode(tt.err)
		assert.True(t, ok, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}

	_, ok := WireCode(game.ErrInvalidMove)
	assert.False(t, ok)
}
