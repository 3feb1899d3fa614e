package client

import (
	"testing"

	"github.com/beka-birhanu/cman/game/maze"
	"github.com/beka-birhanu/cman/game/maze/mazetest"
	"github.com/beka-birhanu/cman/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	grids []maze.Grid
	views []View
}

func (r *recordingRenderer) Render(g maze.Grid, v View) {
	r.grids = append(r.grids, g)
	r.views = append(r.views, v)
}

func update(blocked bool, cman, spirit maze.CellPosition, attempts byte, alive [maze.MaxPoints]bool) protocol.GameUpdate {
	return protocol.GameUpdate{
		Blocked:   blocked,
		CmanRow:   byte(cman.Row),
		CmanCol:   byte(cman.Col),
		SpiritRow: byte(spirit.Row),
		SpiritCol: byte(spirit.Col),
		Attempts:  attempts,
		Mask:      protocol.PackMask(alive),
	}
}

func allAlive() [maze.MaxPoints]bool {
	var alive [maze.MaxPoints]bool
	for i := range alive {
		alive[i] = true
	}
	return alive
}

func TestReconcilerApply(t *testing.T) {
	m := mazetest.MustLoad(t)
	r := &recordingRenderer{}
	rc := NewReconciler(m, "cman", r)
	assert.False(t, rc.Started())
	assert.False(t, rc.CanMove())

	alive := allAlive()
	alive[0] = false
	first := m.Points()[0]
	u := update(false, first, m.SpiritSpawn(), 3, alive)

	require.True(t, rc.Apply(u))
	assert.True(t, rc.Started())
	assert.True(t, rc.CanMove())
	require.Len(t, r.grids, 1)
	assert.Equal(t, maze.CmanCell, r.grids[0][first.Row][first.Col])
	assert.Equal(t, View{Role: "cman", CanMove: true, Attempts: 3, Score: 1}, r.views[0])

	assert.False(t, rc.Apply(u), "identical frame is a no-op")
	assert.Len(t, r.grids, 1)

	u.Blocked = true
	assert.True(t, rc.Apply(u))
	assert.False(t, rc.CanMove())
	assert.Len(t, r.grids, 2)
}

func TestReconcilerRenderable(t *testing.T) {
	m := mazetest.MustLoad(t)
	rc := NewReconciler(m, "watcher", nil)

	var none [maze.MaxPoints]bool
	second := m.Points()[1]
	rc.Apply(update(true, m.CmanSpawn(), second, 1, none))

	g := rc.Renderable()
	assert.Equal(t, m.Renderable(none, m.CmanSpawn(), second), g)
	assert.Equal(t, maze.SpiritCell, g[second.Row][second.Col])
	assert.Equal(t, maze.MaxPoints, rc.View().Score)
}
