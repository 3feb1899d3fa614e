package client

import (
	"github.com/beka-birhanu/cman/game/maze"
	"github.com/beka-birhanu/cman/protocol"
)

// View is what the renderer shows besides the grid.
type View struct {
	Role     string
	CanMove  bool
	Attempts int
	Score    int // points collected so far
}

// Renderer draws a renderable grid.
type Renderer interface {
	Render(grid maze.Grid, view View)
}

// Reconciler keeps the local picture of the match in sync with GameUpdate frames.
type Reconciler struct {
	maze     *maze.Map
	role     string
	renderer Renderer

	last     protocol.GameUpdate
	hasLast  bool
	cman     maze.CellPosition
	spirit   maze.CellPosition
	alive    [maze.MaxPoints]bool
	attempts int
	canMove  bool
}

// NewReconciler creates a reconciler drawing on r.
func NewReconciler(m *maze.Map, role string, r Renderer) *Reconciler {
	rc := &Reconciler{
		maze:     m,
		role:     role,
		renderer: r,
		cman:     m.CmanSpawn(),
		spirit:   m.SpiritSpawn(),
	}
	for i := range rc.alive {
		rc.alive[i] = true
	}
	return rc
}

// Apply folds u into the local state and redraws. A frame identical to the
// previous one is ignored and Apply returns false.
func (r *Reconciler) Apply(u protocol.GameUpdate) bool {
	if r.hasLast && u == r.last {
		return false
	}
	r.last = u
	r.hasLast = true

	r.canMove = !u.Blocked
	r.cman = u.Cman()
	r.spirit = u.Spirit()
	r.attempts = int(u.Attempts)
	r.alive = u.Alive()

	if r.renderer != nil {
		r.renderer.Render(r.Renderable(), r.View())
	}
	return true
}

// Renderable derives the grid from the current state.
func (r *Reconciler) Renderable() maze.Grid {
	return r.maze.Renderable(r.alive, r.cman, r.spirit)
}

// View returns the status shown next to the grid.
func (r *Reconciler) View() View {
	score := 0
	for _, a := range r.alive {
		if !a {
			score++
		}
	}
	return View{Role: r.role, CanMove: r.canMove, Attempts: r.attempts, Score: score}
}

// CanMove reports whether the last update allowed this client to move.
func (r *Reconciler) CanMove() bool {
	return r.canMove
}

// Started reports whether any update has been applied.
func (r *Reconciler) Started() bool {
	return r.hasLast
}
