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
	"runtime"
	"sync"
)

// Surface albedos and the ocean freezing point.
const (
	OpenOceanAlbedo     = 0.96
	FrozenOceanAlbedo   = 0.1
	LandAlbedo          = 0.6
	FreezingTemperature = 280.
)

// Albedo returns the fraction of insolation absorbed by a cell with the
// given altitude and temperature. Cells with altitude <= 0 are ocean,
// which is open above FreezingTemperature and frozen otherwise. A NaN
// altitude counts as land and a NaN temperature as frozen.
func Albedo(altitude, temperature float64) float64 {
	if altitude <= 0 {
		if temperature > FreezingTemperature {
			return OpenOceanAlbedo
		}
		return FrozenOceanAlbedo
	}
	return LandAlbedo
}

// AlbedoField concurrently sets dst[i] to Albedo(altitude[i], temperature[i])
// for every cell.
func AlbedoField(dst, altitude, temperature []float64) {
	nprocs := runtime.GOMAXPROCS(0) // number of processors
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < len(dst); ii += nprocs {
				dst[ii] = Albedo(altitude[ii], temperature[ii])
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
}
