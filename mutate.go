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

	"github.com/sirupsen/logrus"
)

// Altitude bounds enforced by RaiseAltitude and LowerAltitude.
const (
	MinAltitude = -10.
	MaxAltitude = 10.
)

// DisplayField selects which field a frontend shows.
type DisplayField int

// The displayable fields.
const (
	DisplayAltitude DisplayField = iota
	DisplayTemperature
)

func (d DisplayField) String() string {
	switch d {
	case DisplayAltitude:
		return "altitude"
	case DisplayTemperature:
		return "temperature"
	default:
		return fmt.Sprintf("DisplayField(%d)", int(d))
	}
}

// ParseDisplayField returns the DisplayField named by s.
func ParseDisplayField(s string) (DisplayField, error) {
	switch s {
	case "altitude":
		return DisplayAltitude, nil
	case "temperature":
		return DisplayTemperature, nil
	}
	return 0, fmt.Errorf("ebm: invalid display field %q; must be altitude or temperature", s)
}

// cell returns the linear index of (row, col) and whether it is in
// the grid.
func (s *Session) cell(row, col int) (int, bool) {
	if !s.Grid.Contains(row, col) {
		return 0, false
	}
	return s.Grid.Index(row, col), true
}

// RaiseAltitude raises the altitude of (row, col) by one, up to
// MaxAltitude. Cells already at or above MaxAltitude are left alone.
// It returns false if the cell is outside of the grid.
func (s *Session) RaiseAltitude(row, col int) bool {
	i, ok := s.cell(row, col)
	if ok && s.altitude[i] < MaxAltitude {
		s.altitude[i] = math.Min(s.altitude[i]+1, MaxAltitude)
	}
	return ok
}

// LowerAltitude lowers the altitude of (row, col) by one, down to
// MinAltitude. Cells already at or below MinAltitude are left alone.
// It returns false if the cell is outside of the grid.
func (s *Session) LowerAltitude(row, col int) bool {
	i, ok := s.cell(row, col)
	if ok && s.altitude[i] > MinAltitude {
		s.altitude[i] = math.Max(s.altitude[i]-1, MinAltitude)
	}
	return ok
}

// InjectHeat adds amount to the temperature of (row, col). The result is
// not bounded.
func (s *Session) InjectHeat(row, col int, amount float64) bool {
	i, ok := s.cell(row, col)
	if ok {
		s.temperature[i] += amount
	}
	return ok
}

// ClearHeat sets the temperature of (row, col) to zero.
func (s *Session) ClearHeat(row, col int) bool {
	i, ok := s.cell(row, col)
	if ok {
		s.temperature[i] = 0
	}
	return ok
}

// ResetTemperature sets every cell to Params.ResetTemperature.
func (s *Session) ResetTemperature() {
	for i := range s.temperature {
		s.temperature[i] = s.Params.ResetTemperature
	}
}

// SetRunning sets whether ticks are evaluated.
func (s *Session) SetRunning(running bool) { s.running = running }

// Running returns whether ticks are evaluated.
func (s *Session) Running() bool { return s.running }

// TogglePause switches between running and paused.
func (s *Session) TogglePause() { s.running = !s.running }

// SetDisplay sets the displayed field.
func (s *Session) SetDisplay(d DisplayField) { s.display = d }

// Display returns the displayed field.
func (s *Session) Display() DisplayField { return s.display }

// MutationOp is the kind of edit in a Mutation.
type MutationOp string

// Available mutations.
const (
	OpRaise   MutationOp = "raise"
	OpLower   MutationOp = "lower"
	OpHeat    MutationOp = "heat"
	OpClear   MutationOp = "clear"
	OpReset   MutationOp = "reset"
	OpRunning MutationOp = "running"
	OpPause   MutationOp = "pause"
	OpDisplay MutationOp = "display"
)

// Mutation is an edit to a session that can be submitted from another
// goroutine. Row and Col are used by raise, lower, heat and clear;
// Amount by heat; Running by running; and Display by display.
type Mutation struct {
	Op       MutationOp
	Row, Col int
	Amount   float64
	Running  bool
	Display  DisplayField
}

// Apply applies m to the session. Edits to cells outside of the grid are
// ignored. An error is returned only for an unknown operation.
func (s *Session) Apply(m Mutation) error {
	switch m.Op {
	case OpRaise:
		s.RaiseAltitude(m.Row, m.Col)
	case OpLower:
		s.LowerAltitude(m.Row, m.Col)
	case OpHeat:
		s.InjectHeat(m.Row, m.Col, m.Amount)
	case OpClear:
		s.ClearHeat(m.Row, m.Col)
	case OpReset:
		s.ResetTemperature()
	case OpRunning:
		s.SetRunning(m.Running)
	case OpPause:
		s.TogglePause()
	case OpDisplay:
		s.SetDisplay(m.Display)
	default:
		return fmt.Errorf("ebm: unknown mutation %q", m.Op)
	}
	return nil
}

// ApplyMutations returns a function that applies all of the mutations
// waiting in c, in the order they were sent, without blocking. Unknown
// mutations are logged and dropped.
func ApplyMutations(c <-chan Mutation) DomainManipulator {
	return func(s *Session) error {
		for {
			select {
			case m, ok := <-c:
				if !ok {
					return nil
				}
				if err := s.Apply(m); err != nil {
					orStandard(s.Log).WithFields(logrus.Fields{
						"row": m.Row,
						"col": m.Col,
					}).Warn(err)
				}
			default:
				return nil
			}
		}
	}
}

// CellReport describes a single grid cell.
type CellReport struct {
	Index, Row, Col int
	Lon, Lat        float64
	Altitude        float64
	Temperature     float64
	Albedo          float64
	Insolation      float64
	Neighbors       []NeighborReport
}

// NeighborReport gives the operator weights from a cell to one of its
// neighbors.
type NeighborReport struct {
	Direction string
	Index     int
	Diffusion float64
	Transport float64
}

// Inspect returns a report on the cell at (row, col).
func (s *Session) Inspect(row, col int) (*CellReport, error) {
	i, ok := s.cell(row, col)
	if !ok {
		return nil, fmt.Errorf("ebm: cell (%d, %d) is outside of the %d×%d grid", row, col, s.Grid.Rows, s.Grid.Cols)
	}
	c := s.Grid.Coord(i)
	r := &CellReport{
		Index:       i,
		Row:         row,
		Col:         col,
		Lon:         c.X,
		Lat:         c.Y,
		Altitude:    s.altitude[i],
		Temperature: s.temperature[i],
		Albedo:      Albedo(s.altitude[i], s.temperature[i]),
		Insolation:  s.Insolation.At(i, i),
	}
	for _, nb := range s.Grid.Neighbors(row, col) {
		r.Neighbors = append(r.Neighbors, NeighborReport{
			Direction: nb.Direction.String(),
			Index:     nb.Index,
			Diffusion: s.Diffusion.At(nb.Index, i),
			Transport: s.Transport.At(nb.Index, i),
		})
	}
	return r, nil
}
