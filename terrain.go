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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadTerrain reads an altitude field for g from r. The input must have
// one line per grid row, each with one comma-separated value per column.
func LoadTerrain(r io.Reader, g *Grid) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ebm: reading terrain: %v", err)
	}
	if len(records) != g.Rows {
		return nil, fmt.Errorf("ebm: terrain has %d rows but the grid has %d", len(records), g.Rows)
	}
	alt := make([]float64, g.Len())
	for i, rec := range records {
		if len(rec) != g.Cols {
			return nil, fmt.Errorf("ebm: terrain row %d has %d columns but the grid has %d", i, len(rec), g.Cols)
		}
		for j, v := range rec {
			a, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("ebm: terrain row %d column %d: %v", i, j, err)
			}
			alt[g.Index(i, j)] = a
		}
	}
	return alt, nil
}

// SaveTerrain writes altitude field alt for g to w in the format read by
// LoadTerrain.
func SaveTerrain(w io.Writer, g *Grid, alt []float64) error {
	if len(alt) != g.Len() {
		return fmt.Errorf("ebm: terrain has %d cells but the grid has %d", len(alt), g.Len())
	}
	cw := csv.NewWriter(w)
	rec := make([]string, g.Cols)
	for i := 0; i < g.Rows; i++ {
		for j := range rec {
			rec[j] = strconv.FormatFloat(alt[g.Index(i, j)], 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("ebm: writing terrain: %v", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("ebm: writing terrain: %v", err)
	}
	return nil
}

// UseTerrain returns an initialization function that replaces the
// altitude field with alt. It must come after Build in InitFuncs.
func UseTerrain(alt []float64) DomainManipulator {
	return func(s *Session) error {
		if s.Grid == nil {
			return fmt.Errorf("ebm: UseTerrain must be run after Build")
		}
		if len(alt) != s.Grid.Len() {
			return fmt.Errorf("ebm: terrain has %d cells but the grid has %d", len(alt), s.Grid.Len())
		}
		copy(s.altitude, alt)
		return nil
	}
}

// UseTerrainFile returns an initialization function that loads the
// altitude field from the CSV file at path. It must come after Build in
// InitFuncs.
func UseTerrainFile(path string) DomainManipulator {
	return func(s *Session) error {
		if s.Grid == nil {
			return fmt.Errorf("ebm: UseTerrainFile must be run after Build")
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("ebm: opening terrain file: %v", err)
		}
		defer f.Close()
		alt, err := LoadTerrain(f, s.Grid)
		if err != nil {
			return fmt.Errorf("%v (file %s)", err, path)
		}
		return UseTerrain(alt)(s)
	}
}

// SaveTerrainFile returns a function that writes the current altitude
// field to the CSV file at path.
func SaveTerrainFile(path string) DomainManipulator {
	return func(s *Session) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("ebm: creating terrain file: %v", err)
		}
		if err := SaveTerrain(f, s.Grid, s.altitude); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
