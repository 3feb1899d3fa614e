/*
Package maze loads the textual Cman map and derives renderable grids from it.

A map is a rectangle of the characters W (wall), F (free), P (point),
C (Cman spawn) and S (Spirit spawn). Loading strips points and spawns from the
base grid and remembers their coordinates; the point order (row-major, as read
from the file) is the order used by the wire mask.
*/
package maze

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// MaxPoints is the exact number of collectible points a map must have.
	MaxPoints = 40

	// maxDimension bounds height and width so a coordinate fits in one byte.
	maxDimension = 1 << 8
)

var ErrMapInvalid = errors.New("invalid map")

// Grid is a row-major matrix of cells.
type Grid [][]Cell

// Map holds the immutable base grid, the ordered point coordinates and the spawns.
type Map struct {
	base        Grid
	height      int
	width       int
	points      [MaxPoints]CellPosition
	pointIndex  map[CellPosition]int
	cmanSpawn   CellPosition
	spiritSpawn CellPosition
}

// LoadFile reads and validates a map file.
func LoadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads and validates a map from r.
func Load(r io.Reader) (*Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse validates the textual map and builds a Map.
func Parse(data string) (*Map, error) {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.TrimSuffix(data, "\n")
	if data == "" {
		return nil, invalid("map is empty")
	}

	lines := strings.Split(data, "\n")
	height, width := len(lines), len(lines[0])
	if height >= maxDimension {
		return nil, invalid("map is too tall")
	}
	if width >= maxDimension {
		return nil, invalid("map is too wide")
	}

	m := &Map{
		base:       make(Grid, height),
		height:     height,
		width:      width,
		pointIndex: make(map[CellPosition]int, MaxPoints),
	}

	var cmans, spirits, points int
	for row, line := range lines {
		if len(line) != width {
			return nil, invalid("map is not square")
		}
		m.base[row] = make([]Cell, width)
		for col := 0; col < width; col++ {
			c := Cell(line[col])
			if !c.Valid() {
				return nil, invalid(fmt.Sprintf("invalid char %q at %d,%d", line[col], row, col))
			}

			pos := CellPosition{Row: row, Col: col}
			onBorder := row == 0 || col == 0 || row == height-1 || col == width-1
			if onBorder && !c.IsWall() {
				return nil, invalid("map border is open")
			}

			switch c {
			case CmanCell:
				cmans++
				m.cmanSpawn = pos
			case SpiritCell:
				spirits++
				m.spiritSpawn = pos
			case PointCell:
				if points < MaxPoints {
					m.points[points] = pos
					m.pointIndex[pos] = points
				}
				points++
			}

			if c.IsWall() {
				m.base[row][col] = WallCell
			} else {
				m.base[row][col] = FreeCell
			}
		}
	}

	if cmans != 1 {
		return nil, invalid("map needs to have a single C-Man starting point")
	}
	if spirits != 1 {
		return nil, invalid("map needs to have a single Spirit starting point")
	}
	if points != MaxPoints {
		return nil, invalid(fmt.Sprintf("map needs to have %d score points, found %d", MaxPoints, points))
	}

	return m, nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrMapInvalid, reason)
}

// Height returns the number of rows.
func (m *Map) Height() int { return m.height }

// Width returns the number of columns.
func (m *Map) Width() int { return m.width }

// CmanSpawn returns the Cman starting position.
func (m *Map) CmanSpawn() CellPosition { return m.cmanSpawn }

// SpiritSpawn returns the Spirit starting position.
func (m *Map) SpiritSpawn() CellPosition { return m.spiritSpawn }

// Points returns the point coordinates in wire order.
func (m *Map) Points() [MaxPoints]CellPosition { return m.points }

// PointIndex returns the wire index of the point at pos.
func (m *Map) PointIndex(pos CellPosition) (int, bool) {
	i, ok := m.pointIndex[pos]
	return i, ok
}

// InBound checks whether the position lies inside the grid.
func (m *Map) InBound(pos CellPosition) bool {
	return pos.Row >= 0 && pos.Row < m.height && pos.Col >= 0 && pos.Col < m.width
}

// IsWall reports whether pos is a wall. Out-of-bound positions count as walls.
func (m *Map) IsWall(pos CellPosition) bool {
	if !m.InBound(pos) {
		return true
	}
	return m.base[pos.Row][pos.Col].IsWall()
}

// Base returns a copy of the stripped base grid.
func (m *Map) Base() Grid {
	return m.base.clone()
}

// Renderable paints the alive points and then both players on a fresh copy of
// the base grid. Players are painted last so a point under a player is hidden.
func (m *Map) Renderable(alive [MaxPoints]bool, cman, spirit CellPosition) Grid {
	g := m.base.clone()
	for i, pos := range m.points {
		if alive[i] {
			g[pos.Row][pos.Col] = PointCell
		}
	}
	if m.InBound(cman) {
		g[cman.Row][cman.Col] = CmanCell
	}
	if m.InBound(spirit) {
		g[spirit.Row][spirit.Col] = SpiritCell
	}
	return g
}

func (g Grid) clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = make([]Cell, len(row))
		copy(out[i], row)
	}
	return out
}

// String renders the grid with the display glyphs, one line per row.
func (g Grid) String() string {
	var sb strings.Builder
	for _, row := range g {
		for _, c := range row {
			sb.WriteString(c.Visual())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
