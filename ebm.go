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

// Package ebm is a simplified energy-balance climate model on a
// quarter-sphere latitude/longitude grid. Each tick, every cell absorbs
// sunlight according to its albedo and radiates according to the
// Stefan-Boltzmann law; heat is then diffused between neighbors and
// advected by prevailing winds. Altitude and temperature can be edited
// between ticks.
package ebm

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Session holds the current state of a simulation.
type Session struct {
	Params Params

	Grid       *Grid
	Diffusion  *Operator
	Transport  *Operator
	Insolation *mat.DiagDense

	altitude    []float64
	temperature []float64

	// Per-tick work buffers.
	albedo  []float64
	scratch []float64

	running bool
	display DisplayField

	// Iteration is the number of ticks that have been evaluated.
	Iteration int

	// InitFuncs are run once by Init.
	InitFuncs []DomainManipulator

	// RunFuncs are run in order once per loop iteration by Run until
	// Done is true.
	RunFuncs []DomainManipulator

	// CleanupFuncs are run once by Cleanup.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool

	// Log receives diagnostic messages. If nil, the standard logrus
	// logger is used.
	Log logrus.FieldLogger
}

// DomainManipulator is a function that operates on a session.
type DomainManipulator func(s *Session) error

// Init initializes the session by running InitFuncs.
func (s *Session) Init() error {
	s.Log = orStandard(s.Log)
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	if s.Grid == nil {
		return fmt.Errorf("ebm: session was not built; add Build to InitFuncs")
	}
	return nil
}

// Run carries out the simulation by running RunFuncs until Done is true.
func (s *Session) Run() error {
	for !s.Done {
		if err := s.Iterate(); err != nil {
			return err
		}
	}
	return nil
}

// Iterate runs each of RunFuncs once.
func (s *Session) Iterate() error {
	for _, f := range s.RunFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup runs CleanupFuncs.
func (s *Session) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Build returns an initialization function that validates p and then builds
// the grid, the three operators and the initial fields. Altitude starts
// at zero everywhere and temperature at p.InitialTemperature. The session
// starts out running and showing altitude.
func Build(p Params) DomainManipulator {
	return func(s *Session) error {
		if err := p.Validate(); err != nil {
			return err
		}
		g, err := NewGrid(p.Rows, p.Cols)
		if err != nil {
			return err
		}
		log := orStandard(s.Log)
		diff, err := NewDiffusionOperator(g, p.DiffusionCoefficient, log)
		if err != nil {
			return err
		}
		trans, err := NewTransportOperator(g, p.WindSpeed, log)
		if err != nil {
			return err
		}
		if diff.Skipped > 0 || trans.Skipped > 0 {
			log.WithFields(logrus.Fields{
				"diffusion": diff.Skipped,
				"transport": trans.Skipped,
			}).Warn("ebm: operators built with skipped neighbor contributions")
		}

		n := g.Len()
		s.Params = p
		s.Grid = g
		s.Diffusion = diff
		s.Transport = trans
		s.Insolation = NewInsolationOperator(g, p.SolarConstant)
		s.altitude = make([]float64, n)
		s.temperature = make([]float64, n)
		for i := range s.temperature {
			s.temperature[i] = p.InitialTemperature
		}
		s.albedo = make([]float64, n)
		s.scratch = make([]float64, n)
		s.running = true
		s.display = DisplayAltitude
		return nil
	}
}

// Altitude returns a copy of the altitude field in row-major order.
func (s *Session) Altitude() []float64 { return copyField(s.altitude) }

// Temperature returns a copy of the temperature field in row-major order.
func (s *Session) Temperature() []float64 { return copyField(s.temperature) }

// MeanTemperature returns the mean of the temperature field.
func (s *Session) MeanTemperature() float64 {
	return floats.Sum(s.temperature) / float64(len(s.temperature))
}

func copyField(f []float64) []float64 {
	o := make([]float64, len(f))
	copy(o, f)
	return o
}

// Snapshot is a copy of the observable state of a session.
type Snapshot struct {
	Rows            int       `json:"rows"`
	Cols            int       `json:"cols"`
	Iteration       int       `json:"iteration"`
	Running         bool      `json:"running"`
	Display         string    `json:"display"`
	MeanTemperature float64   `json:"meanTemperature"`
	Altitude        []float64 `json:"altitude"`
	Temperature     []float64 `json:"temperature"`
}

// Snapshot returns a copy of the current altitude and temperature fields
// along with the session status.
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		Rows:            s.Grid.Rows,
		Cols:            s.Grid.Cols,
		Iteration:       s.Iteration,
		Running:         s.running,
		Display:         s.display.String(),
		MeanTemperature: s.MeanTemperature(),
		Altitude:        s.Altitude(),
		Temperature:     s.Temperature(),
	}
}
