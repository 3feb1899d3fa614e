package game

import "github.com/beka-birhanu/cman/game/maze"

// Role is the wire role code of a client.
type Role byte

const (
	RoleSpectator Role = iota
	RoleCman
	RoleSpirit
)

var roleNames = map[Role]string{
	RoleSpectator: "watcher",
	RoleCman:      "cman",
	RoleSpirit:    "spirit",
}

// ParseRole maps a CLI role name to its role.
func ParseRole(name string) (Role, bool) {
	for r, n := range roleNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// Valid reports whether r is a known role code.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// IsPlayer reports whether r holds a seat.
func (r Role) IsPlayer() bool {
	return r == RoleCman || r == RoleSpirit
}

// Opponent returns the other seat. Spectators have no opponent.
func (r Role) Opponent() Role {
	switch r {
	case RoleCman:
		return RoleSpirit
	case RoleSpirit:
		return RoleCman
	default:
		return RoleSpectator
	}
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

// Direction is the wire direction code of a move.
type Direction byte

const (
	DirectionUp Direction = iota
	DirectionLeft
	DirectionDown
	DirectionRight
)

var (
	// Directions maps each direction to its row/column delta.
	Directions = map[Direction]maze.CellPosition{
		DirectionUp:    {Row: -1, Col: 0},
		DirectionLeft:  {Row: 0, Col: -1},
		DirectionDown:  {Row: 1, Col: 0},
		DirectionRight: {Row: 0, Col: 1},
	}

	directionNames = map[Direction]string{
		DirectionUp:    "up",
		DirectionLeft:  "left",
		DirectionDown:  "down",
		DirectionRight: "right",
	}
)

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	_, ok := Directions[d]
	return ok
}

func (d Direction) String() string {
	if n, ok := directionNames[d]; ok {
		return n
	}
	return "invalid"
}
