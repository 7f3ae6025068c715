// Package game defines the shared value types for the game world:
// tile coordinates, rectangular areas, skills and teleport anchors.
package game

import "fmt"

// Point is a tile coordinate in the game world.
type Point struct {
	X int `mapstructure:"x" json:"x"`
	Y int `mapstructure:"y" json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Rect is an axis-aligned rectangular area. Bounds are inclusive.
type Rect struct {
	MinX int `mapstructure:"min_x" json:"min_x"`
	MinY int `mapstructure:"min_y" json:"min_y"`
	MaxX int `mapstructure:"max_x" json:"max_x"`
	MaxY int `mapstructure:"max_y" json:"max_y"`
}

// Contains reports whether p lies within the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Center returns the midpoint of the rectangle, rounded down.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d..%d,%d]", r.MinX, r.MinY, r.MaxX, r.MaxY)
}
