package game_test

import (
	"testing"

	"github.com/beka-birhanu/cman/game"
	"github.com/beka-birhanu/cman/game/maze"
	"github.com/beka-birhanu/cman/game/maze/mazetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(row, col int) maze.CellPosition {
	return maze.CellPosition{Row: row, Col: col}
}

func TestEngineStart(t *testing.T) {
	e := game.NewEngine(mazetest.MustLoad(t))

	cman, spirit := e.Coordinates()
	assert.Equal(t, pos(1, 1), cman)
	assert.Equal(t, pos(7, 10), spirit)

	attempts, score := e.Progress()
	assert.Equal(t, game.MaxAttempts, attempts)
	assert.Equal(t, 0, score)

	for _, alive := range e.PointsAlive() {
		assert.True(t, alive)
	}

	assert.True(t, e.CanMove(game.RoleCman))
	assert.False(t, e.CanMove(game.RoleSpirit), "spirit waits for cman's first move")
	assert.False(t, e.CanMove(game.RoleSpectator))
	_, decided := e.Winner()
	assert.False(t, decided)
}

func TestEngineApplyMove(t *testing.T) {
	t.Run("wall is rejected", func(t *testing.T) {
		e := game.NewEngine(mazetest.MustLoad(t))
		assert.ErrorIs(t, e.ApplyMove(game.RoleCman, game.DirectionUp), game.ErrInvalidMove)
		cman, _ := e.Coordinates()
		assert.Equal(t, pos(1, 1), cman)
		assert.False(t, e.CanMove(game.RoleSpirit), "a rejected move does not release spirit")
	})

	t.Run("spirit frozen until cman moves", func(t *testing.T) {
		e := game.NewEngine(mazetest.MustLoad(t))
		assert.ErrorIs(t, e.ApplyMove(game.RoleSpirit, game.DirectionUp), game.ErrCannotMove)

		require.NoError(t, e.ApplyMove(game.RoleCman, game.DirectionDown))
		require.NoError(t, e.ApplyMove(game.RoleSpirit, game.DirectionUp))
		cman, spirit := e.Coordinates()
		assert.Equal(t, pos(2, 1), cman)
		assert.Equal(t, pos(6, 10), spirit)
	})

	t.Run("bad arguments", func(t *testing.T) {
		e := game.NewEngine(mazetest.MustLoad(t))
		assert.ErrorIs(t, e.ApplyMove(game.RoleSpectator, game.DirectionUp), game.ErrNotAPlayer)
		assert.ErrorIs(t, e.ApplyMove(game.RoleCman, game.Direction(7)), game.ErrInvalidDirection)
	})

	t.Run("cman eats points", func(t *testing.T) {
		e := game.NewEngine(mazetest.MustLoad(t))
		require.NoError(t, e.ApplyMove(game.RoleCman, game.DirectionRight)) // (1,2) free
		require.NoError(t, e.ApplyMove(game.RoleCman, game.DirectionRight)) // (1,3) point 0
		require.NoError(t, e.ApplyMove(game.RoleCman, game.DirectionLeft))  // back over eaten point

		_, score := e.Progress()
		assert.Equal(t, 1, score)
		alive := e.PointsAlive()
		assert.False(t, alive[0])
		assert.True(t, alive[1])
	})

	t.Run("spirit does not eat", func(t *testing.T) {
		e := game.NewEngine(mazetest.MustLoad(t))
		require.NoError(t, e.ApplyMove(game.RoleCman, game.DirectionRight))
		require.NoError(t, e.ApplyMove(game.RoleSpirit, game.DirectionLeft)) // (7,9)
		require.NoError(t, e.ApplyMove(game.RoleSpirit, game.DirectionLeft)) // (7,8)
		require.NoError(t, e.ApplyMove(game.RoleSpirit, game.DirectionLeft)) // (7,7) point 39
		_, score := e.Progress()
		assert.Equal(t, 0, score)
		assert.True(t, e.PointsAlive()[maze.MaxPoints-1])
	})
}

// walk moves role along dirs, failing on any rejected move.
func walk(t *testing.T, e *game.Engine, role game.Role, dirs ...game.Direction) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, e.ApplyMove(role, d))
	}
}

func repeat(d game.Direction, n int) []game.Direction {
	out := make([]game.Direction, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func TestEngineCapture(t *testing.T) {
	e := game.NewEngine(mazetest.MustLoad(t))

	// Cman steps down to (2,1); Spirit runs west along row 7 and up column 1 into it.
	capture := func() {
		walk(t, e, game.RoleCman, game.DirectionDown)
		walk(t, e, game.RoleSpirit, repeat(game.DirectionLeft, 9)...)
		walk(t, e, game.RoleSpirit, repeat(game.DirectionUp, 5)...)
	}

	capture()
	assert.Equal(t, 1, e.Captures())
	attempts, _ := e.Progress()
	assert.Equal(t, game.MaxAttempts-1, attempts)
	cman, spirit := e.Coordinates()
	assert.Equal(t, pos(1, 1), cman, "capture respawns cman")
	assert.Equal(t, pos(7, 10), spirit, "capture respawns spirit")
	assert.False(t, e.CanMove(game.RoleSpirit), "spirit frozen again after respawn")

	capture()
	capture()
	winner, decided := e.Winner()
	require.True(t, decided)
	assert.Equal(t, game.RoleSpirit, winner)
	assert.Equal(t, game.MaxAttempts, e.Captures())
	assert.False(t, e.CanMove(game.RoleCman))
	assert.ErrorIs(t, e.ApplyMove(game.RoleCman, game.DirectionDown), game.ErrCannotMove)
}

func TestEngineCmanEatsEverything(t *testing.T) {
	m := mazetest.MustLoad(t)
	e := game.NewEngine(m)

	const (
		up    = game.DirectionUp
		left  = game.DirectionLeft
		down  = game.DirectionDown
		right = game.DirectionRight
	)

	// Row 1 east, row 3 west, row 5 east, then the dead ends off row 3 and
	// finally column 3 down to row 7 and row 7 east to the last point.
	var route []game.Direction
	route = append(route, repeat(right, 9)...)
	route = append(route, down, down)
	route = append(route, repeat(left, 9)...)
	route = append(route, down, down)
	route = append(route, repeat(right, 9)...)
	route = append(route, up, down, left)
	route = append(route, up, up, up, down)
	route = append(route, left, left, up, down)
	route = append(route, left, left, up, down)
	route = append(route, left, left, up, down)
	route = append(route, down, down, down, down, left)
	route = append(route, repeat(right, 5)...)

	for i, d := range route {
		_, decided := e.Winner()
		require.False(t, decided, "winner decided early at step %d", i)
		require.NoError(t, e.ApplyMove(game.RoleCman, d), "step %d", i)
	}

	winner, decided := e.Winner()
	require.True(t, decided)
	assert.Equal(t, game.RoleCman, winner)
	_, score := e.Progress()
	assert.Equal(t, maze.MaxPoints, score)
}

func TestEngineDeterminism(t *testing.T) {
	m := mazetest.MustLoad(t)
	run := func() (maze.CellPosition, maze.CellPosition, [maze.MaxPoints]bool, int) {
		e := game.NewEngine(m)
		for _, d := range []game.Direction{game.DirectionRight, game.DirectionRight, game.DirectionDown} {
			_ = e.ApplyMove(game.RoleCman, d)
			_ = e.ApplyMove(game.RoleSpirit, game.DirectionLeft)
		}
		c, s := e.Coordinates()
		_, score := e.Progress()
		return c, s, e.PointsAlive(), score
	}

	c1, s1, a1, sc1 := run()
	c2, s2, a2, sc2 := run()
	assert.Equal(t, c1, c2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, a1, a2)
	assert.Equal(t, sc1, sc2)
}

func TestDeclareWinner(t *testing.T) {
	e := game.NewEngine(mazetest.MustLoad(t))
	e.DeclareWinner(game.RoleSpectator)
	_, decided := e.Winner()
	assert.False(t, decided)

	e.DeclareWinner(game.RoleSpirit)
	e.DeclareWinner(game.RoleCman)
	winner, decided := e.Winner()
	assert.True(t, decided)
	assert.Equal(t, game.RoleSpirit, winner, "first declaration sticks")
}

func TestRole(t *testing.T) {
	r, ok := game.ParseRole("watcher")
	assert.True(t, ok)
	assert.Equal(t, game.RoleSpectator, r)
	r, ok = game.ParseRole("spirit")
	assert.True(t, ok)
	assert.Equal(t, game.RoleSpirit, r)
	_, ok = game.ParseRole("ghost")
	assert.False(t, ok)

	assert.Equal(t, game.RoleSpirit, game.RoleCman.Opponent())
	assert.Equal(t, game.RoleCman, game.RoleSpirit.Opponent())
	assert.False(t, game.Role(3).Valid())
	assert.False(t, game.Direction(4).Valid())
}
