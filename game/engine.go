package game

import (
	"errors"

	"github.com/beka-birhanu/cman/game/maze"
)

// Game-related errors.
var (
	ErrInvalidMove      = errors.New("invalid move request")
	ErrCannotMove       = errors.New("role cannot move now")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNotAPlayer       = errors.New("role is not a player")
)

const (
	// MaxAttempts is the number of captures Cman survives before Spirit wins.
	MaxAttempts = 3
)

// Engine is the authoritative Cman rule engine.
//
// Rules:
//   - nobody moves after a winner is decided;
//   - Spirit is frozen until Cman makes its first move after each (re)spawn;
//   - moving into a wall is rejected and changes nothing;
//   - Cman eats the alive point it steps on;
//   - sharing a cell is a capture: both players go back to spawn;
//   - MaxAttempts captures make Spirit the winner, eating every point makes Cman the winner.
//
// Engine is not safe for concurrent use; the match loop owns it.
type Engine struct {
	maze      *maze.Map
	cman      maze.CellPosition
	spirit    maze.CellPosition
	alive     [maze.MaxPoints]bool
	eaten     int
	captures  int
	cmanMoved bool
	winner    Role
	hasWinner bool
}

// NewEngine places both players on their spawns with every point alive.
func NewEngine(m *maze.Map) *Engine {
	e := &Engine{maze: m}
	for i := range e.alive {
		e.alive[i] = true
	}
	e.respawn()
	return e
}

func (e *Engine) respawn() {
	e.cman = e.maze.CmanSpawn()
	e.spirit = e.maze.SpiritSpawn()
	e.cmanMoved = false
}

// CanMove reports whether role may move right now.
func (e *Engine) CanMove(role Role) bool {
	if e.hasWinner {
		return false
	}
	switch role {
	case RoleCman:
		return true
	case RoleSpirit:
		return e.cmanMoved
	default:
		return false
	}
}

// ApplyMove moves role one cell in direction d and resolves points, captures and winners.
func (e *Engine) ApplyMove(role Role, d Direction) error {
	if !role.IsPlayer() {
		return ErrNotAPlayer
	}
	delta, ok := Directions[d]
	if !ok {
		return ErrInvalidDirection
	}
	if !e.CanMove(role) {
		return ErrCannotMove
	}

	pos := e.position(role)
	next := pos.Add(delta)
	if e.maze.IsWall(next) {
		return ErrInvalidMove
	}

	if role == RoleCman {
		e.cman = next
		e.cmanMoved = true
		e.eat(next)
	} else {
		e.spirit = next
	}

	if e.cman == e.spirit {
		e.capture()
	}
	return nil
}

func (e *Engine) position(role Role) maze.CellPosition {
	if role == RoleCman {
		return e.cman
	}
	return e.spirit
}

func (e *Engine) eat(pos maze.CellPosition) {
	i, ok := e.maze.PointIndex(pos)
	if !ok || !e.alive[i] {
		return
	}
	e.alive[i] = false
	e.eaten++
	if e.eaten == maze.MaxPoints {
		e.DeclareWinner(RoleCman)
	}
}

func (e *Engine) capture() {
	e.captures++
	if e.captures >= MaxAttempts {
		e.DeclareWinner(RoleSpirit)
		return
	}
	e.respawn()
}

// Winner returns the decided winner, if any.
func (e *Engine) Winner() (Role, bool) {
	return e.winner, e.hasWinner
}

// DeclareWinner ends the game in favour of role. The first declaration sticks.
func (e *Engine) DeclareWinner(role Role) {
	if e.hasWinner || !role.IsPlayer() {
		return
	}
	e.winner = role
	e.hasWinner = true
}

// Progress returns the attempts Cman has left and the points eaten so far.
func (e *Engine) Progress() (attempts, score int) {
	return MaxAttempts - e.captures, e.eaten
}

// Captures returns how many times Spirit caught Cman.
func (e *Engine) Captures() int {
	return e.captures
}

// Coordinates returns the current Cman and Spirit positions.
func (e *Engine) Coordinates() (cman, spirit maze.CellPosition) {
	return e.cman, e.spirit
}

// PointsAlive returns the alive flag of every point in wire order.
func (e *Engine) PointsAlive() [maze.MaxPoints]bool {
	return e.alive
}
