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
	"time"
)

// Version gives the version number.
const Version = "0.1.0"

// Params holds the parameters that are fixed for the lifetime of a
// Session.
type Params struct {
	// Rows and Cols give the grid dimensions; Rows must be less than Cols.
	Rows, Cols int

	// DiffusionCoefficient is the fraction of a cell's temperature that is
	// spread to its neighbors each tick, in [0, 1).
	DiffusionCoefficient float64

	// WindSpeed is the fraction of a cell's temperature that is advected
	// each tick, in [0, 1).
	WindSpeed float64

	SolarConstant   float64
	StefanBoltzmann float64

	// Timestep is the integration step for radiative forcing.
	Timestep float64

	// FrameBudget is the target wall-clock duration of a paced tick.
	FrameBudget time.Duration

	InitialTemperature float64

	// ResetTemperature is the uniform temperature set by
	// Session.ResetTemperature.
	ResetTemperature float64

	// HeatInjection is the default amount of heat added by a heat
	// mutation.
	HeatInjection float64
}

// DefaultParams returns the default session parameters.
func DefaultParams() Params {
	return Params{
		Rows:                 30,
		Cols:                 60,
		DiffusionCoefficient: 0.5,
		WindSpeed:            0.05,
		SolarConstant:        5000,
		StefanBoltzmann:      1.39e-7,
		Timestep:             0.001,
		FrameBudget:          150 * time.Millisecond,
		InitialTemperature:   280,
		ResetTemperature:     1,
		HeatInjection:        750,
	}
}

// Validate returns an error if any of the parameters are out of range.
func (p Params) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 || p.Rows >= p.Cols {
		return fmt.Errorf("ebm: invalid grid dimensions %d×%d: need 0 < Rows < Cols", p.Rows, p.Cols)
	}
	if !inUnitInterval(p.DiffusionCoefficient) {
		return fmt.Errorf("ebm: DiffusionCoefficient must be in [0, 1); got %g", p.DiffusionCoefficient)
	}
	if !inUnitInterval(p.WindSpeed) {
		return fmt.Errorf("ebm: WindSpeed must be in [0, 1); got %g", p.WindSpeed)
	}
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"SolarConstant", p.SolarConstant},
		{"StefanBoltzmann", p.StefanBoltzmann},
		{"InitialTemperature", p.InitialTemperature},
		{"ResetTemperature", p.ResetTemperature},
		{"HeatInjection", p.HeatInjection},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("ebm: %s must be finite; got %g", v.name, v.val)
		}
	}
	if p.SolarConstant < 0 {
		return fmt.Errorf("ebm: SolarConstant must not be negative; got %g", p.SolarConstant)
	}
	if p.StefanBoltzmann < 0 {
		return fmt.Errorf("ebm: StefanBoltzmann must not be negative; got %g", p.StefanBoltzmann)
	}
	if !(p.Timestep > 0) || math.IsInf(p.Timestep, 0) {
		return fmt.Errorf("ebm: Timestep must be positive; got %g", p.Timestep)
	}
	if p.FrameBudget < 0 {
		return fmt.Errorf("ebm: FrameBudget must not be negative; got %v", p.FrameBudget)
	}
	return nil
}

func inUnitInterval(v float64) bool { return v >= 0 && v < 1 }
