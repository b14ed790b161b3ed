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

// Package gui is a desktop front end for EBM. The window requires the
// ebiten build tag; the input handling in this file does not.
package gui

import (
	"time"

	"github.com/spatialmodel/ebm"
)

// Action is a user command issued from the keyboard or mouse.
type Action int

// The available actions. Cell actions apply to the cell under the cursor.
const (
	ActionRaise Action = iota
	ActionLower
	ActionHeat
	ActionClear
	ActionReset
	ActionPause
	ActionShowAltitude
	ActionShowTemperature
	ActionInspect
)

// NeedsCell returns whether a acts on a single cell.
func (a Action) NeedsCell() bool {
	switch a {
	case ActionRaise, ActionLower, ActionHeat, ActionClear, ActionInspect:
		return true
	}
	return false
}

// Mutation returns the session edit for a at (row, col). ok is false for
// ActionInspect, which does not change the session.
func (a Action) Mutation(row, col int, heat float64) (m ebm.Mutation, ok bool) {
	switch a {
	case ActionRaise:
		return ebm.Mutation{Op: ebm.OpRaise, Row: row, Col: col}, true
	case ActionLower:
		return ebm.Mutation{Op: ebm.OpLower, Row: row, Col: col}, true
	case ActionHeat:
		return ebm.Mutation{Op: ebm.OpHeat, Row: row, Col: col, Amount: heat}, true
	case ActionClear:
		return ebm.Mutation{Op: ebm.OpClear, Row: row, Col: col}, true
	case ActionReset:
		return ebm.Mutation{Op: ebm.OpReset}, true
	case ActionPause:
		return ebm.Mutation{Op: ebm.OpPause}, true
	case ActionShowAltitude:
		return ebm.Mutation{Op: ebm.OpDisplay, Display: ebm.DisplayAltitude}, true
	case ActionShowTemperature:
		return ebm.Mutation{Op: ebm.OpDisplay, Display: ebm.DisplayTemperature}, true
	}
	return ebm.Mutation{}, false
}

// CellAt returns the grid cell drawn at screen position (x, y) when each
// cell is scale pixels wide, with row 0 at the top.
func CellAt(g *ebm.Grid, x, y, scale int) (row, col int, ok bool) {
	if x < 0 || y < 0 || scale < 1 {
		return 0, 0, false
	}
	row, col = y/scale, x/scale
	return row, col, g.Contains(row, col)
}

// TicksPerSecond returns the tick rate for a frame budget. It is at least
// one tick per second; a zero budget gives ebiten's default rate.
func TicksPerSecond(budget time.Duration) int {
	if budget <= 0 {
		return 60
	}
	if tps := int(time.Second / budget); tps > 1 {
		return tps
	}
	return 1
}
