package maze

// Cell is a single map character. The base grid holds only WallCell and FreeCell;
// renderable grids also hold points and players.
type Cell byte

const (
	WallCell   Cell = 'W'
	FreeCell   Cell = 'F'
	PointCell  Cell = 'P'
	CmanCell   Cell = 'C'
	SpiritCell Cell = 'S'
)

var cellVisual = map[Cell]string{
	WallCell:   "█",
	PointCell:  "*",
	CmanCell:   "☺",
	SpiritCell: "@",
	FreeCell:   " ",
}

// Valid reports whether c is one of the five map characters.
func (c Cell) Valid() bool {
	_, ok := cellVisual[c]
	return ok
}

// IsWall returns true if the cell blocks movement.
func (c Cell) IsWall() bool {
	return c == WallCell
}

// Visual returns the glyph used when printing the cell.
func (c Cell) Visual() string {
	if v, ok := cellVisual[c]; ok {
		return v
	}
	return "?"
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	Row int // Row index of the cell
	Col int // Column index of the cell
}

// Add returns the position shifted by delta.
func (cp CellPosition) Add(delta CellPosition) CellPosition {
	return CellPosition{Row: cp.Row + delta.Row, Col: cp.Col + delta.Col}
}
