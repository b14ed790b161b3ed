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

// Package render draws simulation fields as images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/spatialmodel/ebm"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// MaxTemperature is the temperature drawn at the hot end of the color
// scale. Hotter cells are drawn white.
const MaxTemperature = 1000.

// Terrain colors.
var (
	OpenOcean   = color.NRGBA{R: 135, G: 206, B: 235, A: 255}
	FrozenOcean = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	land        = color.NRGBA{R: 139, G: 69, B: 19, A: 255}
)

// Painter converts cell values to colors.
type Painter struct {
	cm palette.ColorMap
}

// NewPainter returns a painter using an extended black-body color map
// for temperature.
func NewPainter() *Painter {
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(MaxTemperature)
	return &Painter{cm: cm}
}

// Temperature returns the color for temperature t.
func (p *Painter) Temperature(t float64) color.Color {
	if math.IsNaN(t) {
		return color.Black
	}
	c, err := p.cm.At(t)
	if err != nil {
		if err == palette.ErrOverflow {
			return color.White
		}
		// Underflow.
		c, _ = p.cm.At(p.cm.Min())
	}
	return c
}

// Terrain returns the color for a cell with altitude alt and temperature
// t. Land gets darker with height.
func (p *Painter) Terrain(alt, t float64) color.Color {
	switch ebm.Albedo(alt, t) {
	case ebm.OpenOceanAlbedo:
		return OpenOcean
	case ebm.FrozenOceanAlbedo:
		return FrozenOcean
	}
	f := 1 - math.Min(math.Max(alt/ebm.MaxAltitude, 0), 1)
	if math.IsNaN(f) {
		f = 1
	}
	return color.NRGBA{
		R: uint8(f * float64(land.R)),
		G: uint8(f * float64(land.G)),
		B: uint8(f * float64(land.B)),
		A: 255,
	}
}

// Color returns the color of cell i of snap for the given field.
func (p *Painter) Color(snap *ebm.Snapshot, field ebm.DisplayField, i int) color.Color {
	if field == ebm.DisplayAltitude {
		return p.Terrain(snap.Altitude[i], snap.Temperature[i])
	}
	return p.Temperature(snap.Temperature[i])
}

// Draw draws field from snap into img, with each cell as a scale×scale
// square and row 0 at the top. img must be at least
// snap.Cols·scale × snap.Rows·scale.
func (p *Painter) Draw(img *image.RGBA, snap *ebm.Snapshot, field ebm.DisplayField, scale int) {
	for i := 0; i < snap.Rows; i++ {
		for j := 0; j < snap.Cols; j++ {
			c := p.Color(snap, field, i*snap.Cols+j)
			for y := i * scale; y < (i+1)*scale; y++ {
				for x := j * scale; x < (j+1)*scale; x++ {
					img.Set(x, y, c)
				}
			}
		}
	}
}

// Image returns an image of field from snap, with each cell drawn as a
// scale×scale square.
func Image(snap *ebm.Snapshot, field ebm.DisplayField, scale int) (*image.RGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("render: scale must be at least 1; got %d", scale)
	}
	if len(snap.Altitude) != snap.Rows*snap.Cols || len(snap.Temperature) != snap.Rows*snap.Cols {
		return nil, fmt.Errorf("render: snapshot fields do not match its %d×%d grid", snap.Rows, snap.Cols)
	}
	img := image.NewRGBA(image.Rect(0, 0, snap.Cols*scale, snap.Rows*scale))
	NewPainter().Draw(img, snap, field, scale)
	return img, nil
}

// WritePNG writes an image of field from snap to w in PNG format.
func WritePNG(w io.Writer, snap *ebm.Snapshot, field ebm.DisplayField, scale int) error {
	img, err := Image(snap, field, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render: %v", err)
	}
	return nil
}

// WriteFile returns a function that writes an image of the session's
// current display field to the PNG file at path.
func WriteFile(path string, scale int) ebm.DomainManipulator {
	return func(s *ebm.Session) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("render: creating image file: %v", err)
		}
		if err := WritePNG(f, s.Snapshot(), s.Display(), scale); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
