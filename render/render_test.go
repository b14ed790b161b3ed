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

package render

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/spatialmodel/ebm"
)

func testSnapshot() *ebm.Snapshot {
	return &ebm.Snapshot{
		Rows:        2,
		Cols:        3,
		Altitude:    []float64{0, 0, 5, 10, -3, 1},
		Temperature: []float64{300, 250, 280, 280, 2000, math.NaN()},
	}
}

func TestImage(t *testing.T) {
	img, err := Image(testSnapshot(), ebm.DisplayAltitude, 4)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
		t.Fatalf("image is %v", b)
	}
	for _, tc := range []struct {
		x, y int
		want color.Color
	}{
		{0, 0, OpenOcean},
		{5, 3, FrozenOcean},
		{11, 0, color.NRGBA{R: 69, G: 34, B: 9, A: 255}},
		{0, 7, color.NRGBA{R: 0, G: 0, B: 0, A: 255}},
		{4, 4, OpenOcean},
	} {
		if !sameColor(img.At(tc.x, tc.y), tc.want) {
			t.Errorf("(%d, %d): have %v, want %v", tc.x, tc.y, img.At(tc.x, tc.y), tc.want)
		}
	}
}

func TestTemperatureColors(t *testing.T) {
	p := NewPainter()
	if !sameColor(p.Temperature(2000), color.White) {
		t.Error("temperatures above the scale should be white")
	}
	if !sameColor(p.Temperature(math.NaN()), color.Black) {
		t.Error("NaN should be black")
	}
	if sameColor(p.Temperature(100), p.Temperature(900)) {
		t.Error("cold and hot cells have the same color")
	}
	if !sameColor(p.Temperature(-50), p.Temperature(0)) {
		t.Error("temperatures below the scale should get the coldest color")
	}
}

func TestWritePNG(t *testing.T) {
	var b bytes.Buffer
	if err := WritePNG(&b, testSnapshot(), ebm.DisplayTemperature, 2); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&b)
	if err != nil {
		t.Fatal(err)
	}
	if bb := img.Bounds(); bb.Dx() != 6 || bb.Dy() != 4 {
		t.Errorf("image is %v", bb)
	}
}

func TestImageErrors(t *testing.T) {
	if _, err := Image(testSnapshot(), ebm.DisplayTemperature, 0); err == nil {
		t.Error("expected an error for scale 0")
	}
	s := testSnapshot()
	s.Temperature = s.Temperature[:2]
	if _, err := Image(s, ebm.DisplayTemperature, 1); err == nil {
		t.Error("expected an error for a short field")
	}
}

func TestWriteFile(t *testing.T) {
	p := ebm.DefaultParams()
	p.Rows, p.Cols = 4, 8
	s := &ebm.Session{InitFuncs: []ebm.DomainManipulator{ebm.Build(p)}}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.png")
	if err := WriteFile(path, 3)(s); err != nil {
		t.Fatal(err)
	}
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}
