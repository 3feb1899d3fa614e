// Package mazetest provides a valid map shared by tests across packages.
package mazetest

import (
	"testing"

	"github.com/beka-birhanu/cman/game/maze"
)

// Map is a 9x12 map with exactly 40 points.
// Cman spawns at (1,1), Spirit at (7,10); the first point is (1,3).
const Map = "WWWWWWWWWWWW\n" +
	"WCFPPPPPPPPW\n" +
	"WFWPWPWPWPFW\n" +
	"WPPPPPPPPPPW\n" +
	"WPWFWFWFWFPW\n" +
	"WPPPPPPPPPPW\n" +
	"WFWFWFWFWFFW\n" +
	"WFPPPPPPFFSW\n" +
	"WWWWWWWWWWWW\n"

// MustLoad parses Map or fails the test.
func MustLoad(t testing.TB) *maze.Map {
	t.Helper()
	m, err := maze.Parse(Map)
	if err != nil {
		t.Fatalf("parsing test map: %v", err)
	}
	return m
}
