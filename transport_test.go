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
	"testing"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/mat"
)

func TestBandFor(t *testing.T) {
	for _, tc := range []struct {
		lat  float64
		want Direction
	}{
		{0, South},
		{math.Pi/6 - 1e-9, South},
		{math.Pi / 6, North},
		{math.Pi / 4, North},
		{math.Pi / 3, South},
		{1.5, South},
		{math.Pi / 2, North},
		{2 * math.Pi / 3, South},
		{5 * math.Pi / 6, North},
		{math.Pi, North},
	} {
		b := BandFor(tc.lat)
		if b.Meridional != tc.want {
			t.Errorf("latitude %g: have %v, want %v", tc.lat, b.Meridional, tc.want)
		}
		if b.Lateral != West {
			t.Errorf("latitude %g: lateral direction %v", tc.lat, b.Lateral)
		}
	}
}

func TestTransportColumnSums(t *testing.T) {
	for _, dims := range [][2]int{{4, 8}, {30, 60}, {1, 2}, {2, 3}} {
		g, err := NewGrid(dims[0], dims[1])
		if err != nil {
			t.Fatal(err)
		}
		for _, beta := range []float64{0, 0.05, 0.5} {
			a, err := NewTransportOperator(g, beta, logrus.New())
			if err != nil {
				t.Fatal(err)
			}
			for j, s := range a.ColSums() {
				if math.Abs(s-1) > 1e-9 {
					t.Errorf("%v β=%g: column %d sums to %g", dims, beta, j, s)
				}
			}
		}
	}
}

func TestTransportIdentity(t *testing.T) {
	g, err := NewGrid(4, 8)
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewTransportOperator(g, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(a, identity(g.Len()), 1e-12) {
		t.Errorf("β=0 should give the identity, have\n%v", mat.Formatted(a))
	}
}

func TestTransportWindSpeedRange(t *testing.T) {
	g, err := NewGrid(4, 8)
	if err != nil {
		t.Fatal(err)
	}
	for _, beta := range []float64{-0.1, 1, 2, math.NaN()} {
		if _, err := NewTransportOperator(g, beta, nil); err == nil {
			t.Errorf("β=%g: expected an error", beta)
		}
	}
}

// The lateral flow always goes to the west neighbor, even in bands whose
// prevailing wind could be taken to blow east.
func TestTransportAlwaysWest(t *testing.T) {
	const beta = 0.05
	g, err := NewGrid(30, 60)
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewTransportOperator(g, beta, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < g.Len(); i++ {
		row, col := g.RowCol(i)
		w, _ := g.West(row, col)
		e, _ := g.East(row, col)
		if v := a.At(w, i); v <= 0 {
			t.Errorf("cell %d sends %g west", i, v)
		}
		if v := a.At(e, i); v != 0 {
			t.Errorf("cell %d sends %g east", i, v)
		}
	}
}

func TestTransportMeridional(t *testing.T) {
	const beta = 0.05
	g, err := NewGrid(30, 60)
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewTransportOperator(g, beta, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < g.Len(); i++ {
		row, col := g.RowCol(i)
		n, hasN := g.North(row, col)
		s, hasS := g.South(row, col)
		w, _ := g.West(row, col)
		var toN, toS float64
		if hasN {
			toN = a.At(n, i)
		}
		if hasS {
			toS = a.At(s, i)
		}
		switch {
		case row < 10 || (row >= 20 && row < 28):
			if toS <= 0 || toN != 0 {
				t.Errorf("row %d: north %g, south %g; want south only", row, toN, toS)
			}
		case row < 20:
			if toN <= 0 || toS != 0 {
				t.Errorf("row %d: north %g, south %g; want north only", row, toN, toS)
			}
		default:
			// The last two rows of a south-bound band only move west.
			if toN != 0 || toS != 0 {
				t.Errorf("row %d: north %g, south %g; want neither", row, toN, toS)
			}
			if different(a.At(w, i), beta, 1e-12) {
				t.Errorf("row %d: west weight %g, want %g", row, a.At(w, i), beta)
			}
		}
		if different(a.At(i, i), 1-beta, 1e-12) {
			t.Errorf("cell %d keeps %g", i, a.At(i, i))
		}
		if different(a.At(w, i)+toN+toS, beta, 1e-12) {
			t.Errorf("cell %d sends %g", i, a.At(w, i)+toN+toS)
		}
	}
}

func TestTransportDegenerate(t *testing.T) {
	g, err := NewGrid(4, 8)
	if err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()
	// Make every cell coincide with its west neighbor.
	dist := func(a, b geom.Point) float64 {
		if a.Y == b.Y {
			return 0
		}
		return Distance(a, b)
	}
	a := buildTransport(g, 0.05, dist, logger)
	if a.Skipped != g.Len() {
		t.Errorf("skipped %d, want %d", a.Skipped, g.Len())
	}
	entries := hook.AllEntries()
	if len(entries) != g.Len() {
		t.Fatalf("%d log entries", len(entries))
	}
	for _, e := range entries {
		if e.Data["operator"] != "transport" || e.Data["direction"] != "west" {
			t.Errorf("unexpected entry %v", e.Data)
		}
	}
	for j, s := range a.ColSums() {
		if math.Abs(s-1) > 1e-9 {
			t.Errorf("column %d sums to %g", j, s)
		}
	}
	for i := 0; i < g.Len(); i++ {
		row, col := g.RowCol(i)
		w, _ := g.West(row, col)
		if v := a.At(w, i); v != 0 {
			t.Errorf("cell %d still sends %g west", i, v)
		}
	}
}
