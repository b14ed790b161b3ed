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

import "math"

// Step advances the temperature field by one tick: radiative forcing,
// then diffusion, then transport. Altitude is not changed.
func (s *Session) Step() {
	s.radiate()
	s.diffuse()
	s.advect()
}

// radiate adds dt·(albedo·insolation - σT⁴) to every cell.
func (s *Session) radiate() {
	AlbedoField(s.albedo, s.altitude, s.temperature)
	dt := s.Params.Timestep
	sigma := s.Params.StefanBoltzmann
	for i, t := range s.temperature {
		loss := math.Max(sigma*t*t*t*t, 0)
		s.temperature[i] = t + dt*(s.albedo[i]*s.Insolation.At(i, i)-loss)
	}
}

func (s *Session) diffuse() {
	s.Diffusion.MulVec(s.scratch, s.temperature)
	s.temperature, s.scratch = s.scratch, s.temperature
}

func (s *Session) advect() {
	s.Transport.MulVec(s.scratch, s.temperature)
	s.temperature, s.scratch = s.scratch, s.temperature
}
