package activity

import (
	"fmt"
	"math"
)

// Point is an absolute world coordinate.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

// Unset is the placement of an instance that has no location.
var Unset = Point{X: math.MinInt32, Y: math.MinInt32, Z: math.MinInt32}

// IsSet reports whether p is a real location.
func (p Point) IsSet() bool {
	return p != Unset
}

func (p Point) String() string {
	if !p.IsSet() {
		return "unset"
	}
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Target references an item or creature an activity works on. Two targets
// are equal when both the identifier and the location match.
type Target struct {
	ID  string `json:"id" yaml:"id"`
	Pos Point  `json:"pos" yaml:"pos"`
}
