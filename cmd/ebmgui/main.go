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

// Command ebmgui runs the EBM energy-balance climate model in a desktop
// window. The other ebm subcommands are also available.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ebm"
	"github.com/spatialmodel/ebm/ebmutil"
	"github.com/spatialmodel/ebm/gui"
	"github.com/spf13/cobra"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Run an interactive simulation in a window.",
	Long: `gui runs a simulation in a desktop window at one tick per FrameBudgetMS.
Keys act on the cell under the cursor: u/d raise and lower the terrain,
h injects heat, c clears heat and i logs the cell's state. r resets the
temperature, 1 and 2 show altitude and temperature, p or space pauses and
q quits. Left and right clicks raise and lower the terrain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := ebmutil.Params(ebmutil.Cfg)
		if err != nil {
			return err
		}
		display, err := ebm.ParseDisplayField(ebmutil.Cfg.GetString("Display"))
		if err != nil {
			return err
		}
		scale := ebmutil.Cfg.GetInt("ImageScale")
		if scale < 1 {
			return fmt.Errorf("ebm: ImageScale must be at least 1; got %d", scale)
		}

		log := logrus.New()
		log.SetOutput(cmd.OutOrStdout())
		s, err := ebmutil.NewSession(p, os.ExpandEnv(ebmutil.Cfg.GetString("TerrainFile")), display, log)
		if err != nil {
			return err
		}
		s.RunFuncs = []ebm.DomainManipulator{ebm.Tick()}
		if f := os.ExpandEnv(ebmutil.Cfg.GetString("SaveTerrainFile")); f != "" {
			s.CleanupFuncs = append(s.CleanupFuncs, ebm.SaveTerrainFile(f))
		}

		ebiten.SetWindowTitle("EBM")
		ebiten.SetWindowSize(p.Cols*scale, p.Rows*scale)
		ebiten.SetTPS(gui.TicksPerSecond(p.FrameBudget))
		if err := ebiten.RunGame(gui.New(s, scale, p.HeatInjection, log)); err != nil && !errors.Is(err, ebiten.Termination) {
			return err
		}
		return s.Cleanup()
	},
	DisableAutoGenTag: true,
}

func main() {
	ebmutil.Root.AddCommand(guiCmd)
	if len(os.Args) == 1 {
		ebmutil.Root.SetArgs([]string{"gui"})
	}
	if err := ebmutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
