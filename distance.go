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
	"math"

	"github.com/ctessum/geom"
)

// minDistance is the distance below which two cell centers are treated as
// coincident when building operators.
const minDistance = 1e-12

// Distance returns the great-circle distance between a and b on the unit
// sphere, using the haversine formula. X is longitude and Y is latitude,
// both in radians.
func Distance(a, b geom.Point) float64 {
	sinLat := math.Sin((b.Y - a.Y) / 2)
	sinLon := math.Sin((b.X - a.X) / 2)
	h := sinLat*sinLat + math.Cos(a.Y)*math.Cos(b.Y)*sinLon*sinLon
	// Rounding can push h slightly past 1 for antipodal points.
	h = math.Min(math.Max(h, 0), 1)
	return 2 * math.Asin(math.Sqrt(h))
}

// distanceFunc calculates the distance between two cell centers.
type distanceFunc func(a, b geom.Point) float64
