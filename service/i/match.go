package i

import (
	"github.com/beka-birhanu/cman/domain"
	"github.com/beka-birhanu/cman/game"
	"github.com/beka-birhanu/cman/game/maze"
)

// RuleEngine decides movement legality, captures, points and the winner.
type RuleEngine interface {
	// ApplyMove moves role one cell. A rejected move changes nothing.
	ApplyMove(role game.Role, d game.Direction) error
	CanMove(role game.Role) bool
	Winner() (game.Role, bool)
	// DeclareWinner ends the game in favour of role. The first declaration sticks.
	DeclareWinner(role game.Role)
	// Progress returns the attempts Cman has left and the points eaten.
	Progress() (attempts, score int)
	Captures() int
	Coordinates() (cman, spirit maze.CellPosition)
	PointsAlive() [maze.MaxPoints]bool
}

// MatchObserver receives the spectator view of every broadcast frame.
type MatchObserver interface {
	Observe(frame []byte)
}

// MatchStatusProvider exposes the running match to readers outside the tick loop.
type MatchStatusProvider interface {
	Status() domain.MatchStatus
}
