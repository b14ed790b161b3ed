//go:build ebiten

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
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ebm"
	"github.com/spatialmodel/ebm/render"
)

// keys maps keyboard keys to actions.
var keys = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeyU, ActionRaise},
	{ebiten.KeyD, ActionLower},
	{ebiten.KeyH, ActionHeat},
	{ebiten.KeyC, ActionClear},
	{ebiten.KeyR, ActionReset},
	{ebiten.KeyP, ActionPause},
	{ebiten.KeySpace, ActionPause},
	{ebiten.KeyDigit1, ActionShowAltitude},
	{ebiten.KeyDigit2, ActionShowTemperature},
	{ebiten.KeyI, ActionInspect},
}

// Game adapts an initialized session to the ebiten.Game interface.
// Every Update runs the session's RunFuncs once, so the tick rate is set
// with ebiten.SetTPS rather than by pacing.
type Game struct {
	s       *ebm.Session
	painter *render.Painter
	pix     *image.RGBA
	frame   *ebiten.Image
	scale   int
	heat    float64
	log     logrus.FieldLogger
}

// New returns a game that shows s with scale pixels per cell. heat is
// the amount added by ActionHeat.
func New(s *ebm.Session, scale int, heat float64, log logrus.FieldLogger) *Game {
	w, h := s.Grid.Cols*scale, s.Grid.Rows*scale
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Game{
		s:       s,
		painter: render.NewPainter(),
		pix:     image.NewRGBA(image.Rect(0, 0, w, h)),
		frame:   ebiten.NewImage(w, h),
		scale:   scale,
		heat:    heat,
		log:     log,
	}
}

// Update handles user input and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || g.s.Done {
		return ebiten.Termination
	}
	x, y := ebiten.CursorPosition()
	row, col, onGrid := CellAt(g.s.Grid, x, y, g.scale)

	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k.key) {
			g.do(k.action, row, col, onGrid)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.do(ActionRaise, row, col, onGrid)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.do(ActionLower, row, col, onGrid)
	}
	return g.s.Iterate()
}

func (g *Game) do(a Action, row, col int, onGrid bool) {
	if a.NeedsCell() && !onGrid {
		return
	}
	if a == ActionInspect {
		r, err := g.s.Inspect(row, col)
		if err != nil {
			g.log.WithError(err).Warn("ebm: inspect")
			return
		}
		g.log.WithFields(logrus.Fields{
			"row":         r.Row,
			"col":         r.Col,
			"lon":         r.Lon,
			"lat":         r.Lat,
			"altitude":    r.Altitude,
			"temperature": r.Temperature,
			"albedo":      r.Albedo,
			"insolation":  r.Insolation,
		}).Info("cell")
		for _, n := range r.Neighbors {
			g.log.WithFields(logrus.Fields{
				"direction": n.Direction,
				"index":     n.Index,
				"diffusion": n.Diffusion,
				"transport": n.Transport,
			}).Info("neighbor")
		}
		return
	}
	if m, ok := a.Mutation(row, col, g.heat); ok {
		if err := g.s.Apply(m); err != nil {
			g.log.WithError(err).Warn("ebm: edit")
		}
	}
}

// Draw draws the current display field and a status line.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Draw(g.pix, g.s.Snapshot(), g.s.Display(), g.scale)
	g.frame.WritePixels(g.pix.Pix)
	screen.DrawImage(g.frame, nil)

	state := "running"
	if !g.s.Running() {
		state = "paused"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("tick %d  mean %.1f  %s  %s",
		g.s.Iteration, g.s.MeanTemperature(), g.s.Display(), state))
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.s.Grid.Cols * g.scale, g.s.Grid.Rows * g.scale
}
