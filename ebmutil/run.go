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

package ebmutil

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ebm"
	"github.com/spatialmodel/ebm/render"
	"github.com/spf13/cobra"
)

// RunOptions holds the settings of a headless simulation.
type RunOptions struct {
	// LogFile is an optional file to copy log messages to.
	LogFile string

	// TerrainFile is an optional CSV altitude file to start from, and
	// SaveTerrainFile is an optional file to save the final altitude to.
	TerrainFile, SaveTerrainFile string

	// OutputImage is an optional PNG file to draw Display to at the end
	// of the simulation, with ImageScale pixels per cell.
	OutputImage string
	ImageScale  int
	Display     ebm.DisplayField

	// NumIterations and Tolerance determine when the simulation is
	// finished; see ebm.SteadyStateConvergenceCheck.
	NumIterations int
	Tolerance     float64

	// Paced slows ticks down to one per frame budget.
	Paced bool

	// AddInit, AddRun and AddCleanup are appended to the session's
	// InitFuncs, RunFuncs and CleanupFuncs.
	AddInit, AddRun, AddCleanup []ebm.DomainManipulator
}

// newLogger returns a logger that writes to w and, if logFile is not
// empty, to logFile. The returned function closes the log file.
func newLogger(w io.Writer, logFile string) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	if logFile == "" {
		log.SetOutput(w)
		return log, func() {}, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("ebm: problem creating log file: %v", err)
	}
	log.SetOutput(io.MultiWriter(w, f))
	return log, func() { f.Close() }, nil
}

// statusLoggers starts functions to receive and print status messages.
// Simulation status messages are printed at most every two seconds. The
// returned function closes the channels and waits for printing to finish.
func statusLoggers(log logrus.FieldLogger) (chan ebm.ConvergenceStatus, chan *ebm.SimulationStatus, func()) {
	cConverge := make(chan ebm.ConvergenceStatus)
	cLog := make(chan *ebm.SimulationStatus)
	logTick := time.NewTicker(2 * time.Second)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		for msg := range cConverge {
			log.Info(msg.String())
		}
		wg.Done()
	}()
	go func() {
		for msg := range cLog {
			select {
			case <-logTick.C:
				log.Info(msg.String())
			default:
			}
		}
		wg.Done()
	}()
	return cConverge, cLog, func() {
		close(cConverge)
		close(cLog)
		wg.Wait()
		logTick.Stop()
	}
}

// initFuncs returns the initialization functions shared by all commands.
func initFuncs(p ebm.Params, terrainFile string, display ebm.DisplayField) []ebm.DomainManipulator {
	f := []ebm.DomainManipulator{ebm.Build(p)}
	if terrainFile != "" {
		f = append(f, ebm.UseTerrainFile(terrainFile))
	}
	return append(f, func(s *ebm.Session) error {
		s.SetDisplay(display)
		return nil
	})
}

// NewSession builds and initializes a session without run functions,
// for callers that drive the simulation themselves.
func NewSession(p ebm.Params, terrainFile string, display ebm.DisplayField, log logrus.FieldLogger) (*ebm.Session, error) {
	s := &ebm.Session{
		InitFuncs: initFuncs(p, terrainFile, display),
		Log:       log,
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("ebm: problem initializing model: %v", err)
	}
	return s, nil
}

// Run runs a headless simulation with parameters p, printing log messages
// to the output of cmd.
func Run(cmd *cobra.Command, p ebm.Params, o RunOptions) error {
	startTime := time.Now()

	if o.OutputImage != "" && o.ImageScale < 1 {
		return fmt.Errorf("ebm: ImageScale must be at least 1; got %d", o.ImageScale)
	}

	log, closeLog, err := newLogger(cmd.OutOrStdout(), o.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	cConverge, cLog, stopLog := statusLoggers(log)
	defer stopLog()

	runFuncs := []ebm.DomainManipulator{
		ebm.Tick(),
		ebm.SteadyStateConvergenceCheck(o.NumIterations, o.Tolerance, cConverge),
		ebm.Log(cLog),
	}
	if o.Paced {
		runFuncs = append(runFuncs, ebm.Pace(p.FrameBudget))
	}
	var cleanupFuncs []ebm.DomainManipulator
	if o.SaveTerrainFile != "" {
		cleanupFuncs = append(cleanupFuncs, ebm.SaveTerrainFile(o.SaveTerrainFile))
	}
	if o.OutputImage != "" {
		cleanupFuncs = append(cleanupFuncs, render.WriteFile(o.OutputImage, o.ImageScale))
	}

	s := &ebm.Session{
		InitFuncs:    append(initFuncs(p, o.TerrainFile, o.Display), o.AddInit...),
		RunFuncs:     append(runFuncs, o.AddRun...),
		CleanupFuncs: append(cleanupFuncs, o.AddCleanup...),
		Log:          log,
	}

	log.Info("Initializing model...")
	if err := s.Init(); err != nil {
		return fmt.Errorf("ebm: problem initializing model: %v", err)
	}
	log.WithFields(logrus.Fields{
		"rows":          p.Rows,
		"cols":          p.Cols,
		"numIterations": o.NumIterations,
	}).Info("Running simulation...")
	if err := s.Run(); err != nil {
		return fmt.Errorf("ebm: problem running simulation: %v", err)
	}
	if err := s.Cleanup(); err != nil {
		return fmt.Errorf("ebm: problem cleaning up: %v", err)
	}
	log.Infof("Simulation finished after %d iterations with mean temperature %.5g; walltime=%v",
		s.Iteration, s.MeanTemperature(), time.Since(startTime))
	return nil
}
