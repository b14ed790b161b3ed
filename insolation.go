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

	"gonum.org/v1/gonum/mat"
)

// NewInsolationOperator returns the diagonal solar forcing operator for
// g, where each cell receives solarConstant·sin(latitude).
func NewInsolationOperator(g *Grid, solarConstant float64) *mat.DiagDense {
	d := make([]float64, g.Len())
	for i := range d {
		d[i] = solarConstant * math.Sin(g.Coord(i).Y)
	}
	return mat.NewDiagDense(len(d), d)
}
