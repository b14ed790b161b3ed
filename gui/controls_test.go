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

package gui

import (
	"testing"
	"time"

	"github.com/spatialmodel/ebm"
)

func TestCellAt(t *testing.T) {
	g, err := ebm.NewGrid(4, 8)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y     int
		row, col int
		ok       bool
	}{
		{x: 0, y: 0, row: 0, col: 0, ok: true},
		{x: 79, y: 39, row: 3, col: 7, ok: true},
		{x: 25, y: 11, row: 1, col: 2, ok: true},
		{x: 80, y: 0, ok: false},
		{x: 0, y: 40, ok: false},
		{x: -1, y: 5, ok: false},
	}
	for _, tc := range tests {
		row, col, ok := CellAt(g, tc.x, tc.y, 10)
		if ok != tc.ok || (ok && (row != tc.row || col != tc.col)) {
			t.Errorf("(%d, %d): have (%d, %d, %v), want (%d, %d, %v)",
				tc.x, tc.y, row, col, ok, tc.row, tc.col, tc.ok)
		}
	}
}

func TestActionMutation(t *testing.T) {
	for a := ActionRaise; a <= ActionInspect; a++ {
		m, ok := a.Mutation(1, 2, 750)
		if a == ActionInspect {
			if ok {
				t.Errorf("inspect should not produce a mutation; got %+v", m)
			}
			continue
		}
		if !ok {
			t.Errorf("action %d: no mutation", a)
			continue
		}
		if a.NeedsCell() && (m.Row != 1 || m.Col != 2) {
			t.Errorf("action %d: mutation %+v is not at the cell", a, m)
		}
	}
	if m, _ := ActionHeat.Mutation(0, 0, 750); m.Amount != 750 {
		t.Errorf("heat amount = %g", m.Amount)
	}

	// Every mutation is accepted by a session.
	s := &ebm.Session{InitFuncs: []ebm.DomainManipulator{ebm.Build(smallParams())}}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	for a := ActionRaise; a < ActionInspect; a++ {
		m, _ := a.Mutation(1, 2, 750)
		if err := s.Apply(m); err != nil {
			t.Errorf("action %d: %v", a, err)
		}
	}
	if s.Display() != ebm.DisplayTemperature {
		t.Errorf("display = %v", s.Display())
	}
}

func smallParams() ebm.Params {
	p := ebm.DefaultParams()
	p.Rows, p.Cols = 4, 8
	return p
}

func TestTicksPerSecond(t *testing.T) {
	for budget, want := range map[time.Duration]int{
		0:                       60,
		150 * time.Millisecond:  6,
		time.Second:             1,
		1500 * time.Millisecond: 1,
		time.Hour:               1,
	} {
		if tps := TicksPerSecond(budget); tps != want {
			t.Errorf("%v: have %d, want %d", budget, tps, want)
		}
	}
}
