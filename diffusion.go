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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// NewDiffusionOperator builds the row-stochastic diffusion operator for g.
// Each cell keeps 1-coefficient of its own value and spreads coefficient
// among its neighbors in proportion to inverse distance. coefficient must
// be in [0, 1); 0 gives the identity.
func NewDiffusionOperator(g *Grid, coefficient float64, log logrus.FieldLogger) (*Operator, error) {
	if !inUnitInterval(coefficient) {
		return nil, fmt.Errorf("ebm: diffusion coefficient must be in [0, 1); got %g", coefficient)
	}
	return buildDiffusion(g, coefficient, Distance, orStandard(log)), nil
}

func buildDiffusion(g *Grid, alpha float64, dist distanceFunc, log logrus.FieldLogger) *Operator {
	n := g.Len()
	a := sparse.ZerosSparse(n, n)
	var skipped int
	for i := 0; i < n; i++ {
		row, col := g.RowCol(i)
		c := g.Coord(i)
		nbrs := g.Neighbors(row, col)
		inv := make([]float64, len(nbrs))
		var total float64
		for k, nb := range nbrs {
			d := dist(c, g.Coord(nb.Index))
			if d < minDistance {
				logDegenerate(log, "diffusion", g, i, nb)
				skipped++
				continue
			}
			inv[k] = 1 / d
			total += inv[k]
		}
		if alpha > 0 && total > 0 {
			for k, nb := range nbrs {
				if inv[k] != 0 {
					a.AddVal(alpha*inv[k]/total, nb.Index, i)
				}
			}
		}
		a.AddVal(1-alpha, i, i)
	}
	o := newOperator(a).normalizeRows()
	o.Skipped = skipped
	return o
}

// logDegenerate reports a neighbor contribution that was skipped because
// the two cell centers coincide.
func logDegenerate(log logrus.FieldLogger, operator string, g *Grid, cell int, nb Neighbor) {
	c, o := g.Coord(cell), g.Coord(nb.Index)
	log.WithFields(logrus.Fields{
		"operator":    operator,
		"cell":        cell,
		"neighbor":    nb.Index,
		"direction":   nb.Direction.String(),
		"cellLon":     c.X,
		"cellLat":     c.Y,
		"neighborLon": o.X,
		"neighborLat": o.Y,
	}).Warn("ebm: skipping neighbor with degenerate distance")
}

func orStandard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
