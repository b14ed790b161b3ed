/*
Copyright © 2026 the EBM authors.
This file is part of EBM.

EBM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EBM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EBM.  If not, see <http://www.gnu.org/licenses/>.
*/

package ebm

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Direction is a horizontal direction from a grid cell to one of its
// neighbors.
type Direction int

// The four neighbor directions.
const (
	North Direction = iota
	South
	East
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Grid is a regular latitude/longitude discretization of a quarter sphere:
// latitude spans [0, π/2] over Rows cell rows and longitude spans [0, 2π]
// over Cols cell columns. Longitude wraps around; the latitude edges are
// open. A Grid is immutable once created.
type Grid struct {
	Rows, Cols int

	// coords holds the cell-center coordinates in row-major order,
	// with X = longitude and Y = latitude, in radians.
	coords []geom.Point
}

// NewGrid creates a grid with the given number of rows and columns.
// Both must be positive and rows must be less than cols.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("ebm: grid dimensions must be positive; got %d rows and %d columns", rows, cols)
	}
	if rows >= cols {
		return nil, fmt.Errorf("ebm: grid must have fewer rows than columns; got %d rows and %d columns", rows, cols)
	}
	g := &Grid{Rows: rows, Cols: cols}
	g.coords = make([]geom.Point, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			g.coords[g.Index(i, j)] = g.LonLat(i, j)
		}
	}
	return g, nil
}

// Len returns the number of cells in the grid.
func (g *Grid) Len() int { return g.Rows * g.Cols }

// Index returns the row-major linear index of the cell at (row, col).
func (g *Grid) Index(row, col int) int { return row*g.Cols + col }

// RowCol is the inverse of Index.
func (g *Grid) RowCol(i int) (row, col int) { return i / g.Cols, i % g.Cols }

// Contains returns whether (row, col) is inside the grid.
func (g *Grid) Contains(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// LonLat calculates the cell-center coordinates of the cell at (row, col),
// in radians.
func (g *Grid) LonLat(row, col int) geom.Point {
	return geom.Point{
		X: (float64(col) + 0.5) * 2 * math.Pi / float64(g.Cols),
		Y: (float64(row) + 0.5) * (math.Pi / 2) / float64(g.Rows),
	}
}

// Coord returns the stored cell-center coordinates of the cell with
// linear index i.
func (g *Grid) Coord(i int) geom.Point { return g.coords[i] }

// Coordinates returns a copy of the coordinate field in row-major order.
func (g *Grid) Coordinates() []geom.Point {
	o := make([]geom.Point, len(g.coords))
	copy(o, g.coords)
	return o
}

// Neighbor returns the linear index of the neighbor of (row, col) in
// direction dir. ok is false when there is no such neighbor: north of
// row 0 or south of the last row. East and west wrap around.
func (g *Grid) Neighbor(row, col int, dir Direction) (idx int, ok bool) {
	switch dir {
	case North:
		if row == 0 {
			return 0, false
		}
		return g.Index(row-1, col), true
	case South:
		if row == g.Rows-1 {
			return 0, false
		}
		return g.Index(row+1, col), true
	case East:
		return g.Index(row, (col+1)%g.Cols), true
	case West:
		return g.Index(row, (col-1+g.Cols)%g.Cols), true
	}
	return 0, false
}

// North returns the neighbor with the next-lower row index.
func (g *Grid) North(row, col int) (int, bool) { return g.Neighbor(row, col, North) }

// South returns the neighbor with the next-higher row index.
func (g *Grid) South(row, col int) (int, bool) { return g.Neighbor(row, col, South) }

// East returns the neighbor with the next column, wrapping around.
func (g *Grid) East(row, col int) (int, bool) { return g.Neighbor(row, col, East) }

// West returns the neighbor with the previous column, wrapping around.
func (g *Grid) West(row, col int) (int, bool) { return g.Neighbor(row, col, West) }

// Neighbor is a neighboring cell and the direction to it.
type Neighbor struct {
	Direction Direction
	Index     int
}

// Neighbors returns the existing neighbors of (row, col) in the order
// north, south, east, west.
func (g *Grid) Neighbors(row, col int) []Neighbor {
	o := make([]Neighbor, 0, 4)
	for _, dir := range []Direction{North, South, East, West} {
		if idx, ok := g.Neighbor(row, col, dir); ok {
			o = append(o, Neighbor{Direction: dir, Index: idx})
		}
	}
	return o
}
