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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// TransportBand is a latitude band with a prevailing wind direction.
// Lateral is the east/west component of the wind and Meridional is the
// north/south component.
type TransportBand struct {
	UpperLatitude       float64
	Lateral, Meridional Direction
}

// TransportBands are the prevailing wind bands, ordered by upper latitude
// bound in radians. A cell belongs to the first band whose bound is above
// its latitude.
var TransportBands = []TransportBand{
	{UpperLatitude: math.Pi / 6, Lateral: West, Meridional: South},
	{UpperLatitude: math.Pi / 3, Lateral: West, Meridional: North},
	{UpperLatitude: math.Pi / 2, Lateral: West, Meridional: South},
	{UpperLatitude: 2 * math.Pi / 3, Lateral: West, Meridional: North},
	{UpperLatitude: 5 * math.Pi / 6, Lateral: West, Meridional: South},
	{UpperLatitude: math.Inf(1), Lateral: West, Meridional: North},
}

// BandFor returns the transport band that contains latitude lat.
func BandFor(lat float64) TransportBand {
	for _, b := range TransportBands {
		if lat < b.UpperLatitude {
			return b
		}
	}
	return TransportBands[len(TransportBands)-1]
}

// NewTransportOperator builds the column-stochastic transport operator for
// g. Each cell keeps 1-windSpeed of its value and sends windSpeed to its
// west neighbor and to the north or south neighbor selected by its
// TransportBand, in proportion to inverse distance. windSpeed must be in
// [0, 1); 0 gives the identity.
//
// Only the Meridional component of a band selects a neighbor; the lateral
// neighbor is always the west one. South-bound cells in the last two rows and
// north-bound cells in the first row have no meridional term.
func NewTransportOperator(g *Grid, windSpeed float64, log logrus.FieldLogger) (*Operator, error) {
	if !inUnitInterval(windSpeed) {
		return nil, fmt.Errorf("ebm: wind speed must be in [0, 1); got %g", windSpeed)
	}
	return buildTransport(g, windSpeed, Distance, orStandard(log)), nil
}

func buildTransport(g *Grid, beta float64, dist distanceFunc, log logrus.FieldLogger) *Operator {
	n := g.Len()
	a := sparse.ZerosSparse(n, n)
	var skipped int
	for i := 0; i < n; i++ {
		row, col := g.RowCol(i)
		c := g.Coord(i)

		nbrs := make([]Neighbor, 0, 2)
		if w, ok := g.West(row, col); ok {
			nbrs = append(nbrs, Neighbor{Direction: West, Index: w})
		}
		switch band := BandFor(c.Y); band.Meridional {
		case North:
			if nIdx, ok := g.North(row, col); ok {
				nbrs = append(nbrs, Neighbor{Direction: North, Index: nIdx})
			}
		case South:
			if row < g.Rows-2 {
				if s, ok := g.South(row, col); ok {
					nbrs = append(nbrs, Neighbor{Direction: South, Index: s})
				}
			}
		}

		inv := make([]float64, len(nbrs))
		var total float64
		for k, nb := range nbrs {
			d := dist(c, g.Coord(nb.Index))
			if d < minDistance {
				logDegenerate(log, "transport", g, i, nb)
				skipped++
				continue
			}
			inv[k] = 1 / d
			total += inv[k]
		}
		if beta > 0 && total > 0 {
			for k, nb := range nbrs {
				if inv[k] != 0 {
					a.AddVal(beta*inv[k]/total, nb.Index, i)
				}
			}
		}
		a.AddVal(1-beta, i, i)
	}
	o := newOperator(a).normalizeColumns()
	o.Skipped = skipped
	return o
}
