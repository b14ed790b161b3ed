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
	"context"
	"fmt"
	"math"
	"time"
)

// Tick returns a function that evaluates one tick if the session is
// running.
func Tick() DomainManipulator {
	return func(s *Session) error {
		if s.running {
			s.Step()
			s.Iteration++
		}
		return nil
	}
}

// Pace returns a function that keeps loop iterations from running faster
// than one per budget. It sleeps for whatever is left of the budget since
// it was last called. Iterations that overrun the budget are not made up
// for.
func Pace(budget time.Duration) DomainManipulator {
	return pace(budget, time.Now, time.Sleep)
}

func pace(budget time.Duration, now func() time.Time, sleep func(time.Duration)) DomainManipulator {
	var frameStart time.Time
	return func(s *Session) error {
		if !frameStart.IsZero() {
			if d := frameSleep(budget, now().Sub(frameStart)); d > 0 {
				sleep(d)
			}
		}
		frameStart = now()
		return nil
	}
}

// frameSleep returns max(0, budget - elapsed).
func frameSleep(budget, elapsed time.Duration) time.Duration {
	if elapsed >= budget {
		return 0
	}
	return budget - elapsed
}

// Stop returns a function that sets the Done flag once ctx is cancelled.
func Stop(ctx context.Context) DomainManipulator {
	return func(s *Session) error {
		if ctx.Err() != nil {
			s.Done = true
		}
		return nil
	}
}

// Broadcast returns a function that passes a snapshot of the session to
// f after every iteration.
func Broadcast(f func(*Snapshot)) DomainManipulator {
	return func(s *Session) error {
		f(s.Snapshot())
		return nil
	}
}

// SimulationStatus holds information about the progress of a simulation.
type SimulationStatus struct {
	Iteration       int
	Walltime        time.Duration
	StepWalltime    time.Duration
	MeanTemperature float64
	Running         bool
}

func (s *SimulationStatus) String() string {
	state := "running"
	if !s.Running {
		state = "paused"
	}
	return fmt.Sprintf("Iteration %-4d  walltime=%6.3gh  Δwalltime=%4.2gs  "+
		"meanT=%.5g  %s",
		s.Iteration, s.Walltime.Hours(), s.StepWalltime.Seconds(),
		s.MeanTemperature, state)
}

// Log sends simulation status messages to c.
func Log(c chan *SimulationStatus) DomainManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()

	return func(s *Session) error {
		c <- &SimulationStatus{
			Iteration:       s.Iteration,
			Walltime:        time.Since(startTime),
			StepWalltime:    time.Since(timeStepTime),
			MeanTemperature: s.MeanTemperature(),
			Running:         s.running,
		}
		timeStepTime = time.Now()
		return nil
	}
}

// ConvergenceStatus reports the change in mean temperature between two
// convergence checks.
type ConvergenceStatus struct {
	Iteration       int
	MeanTemperature float64
	Change          float64
}

func (c ConvergenceStatus) String() string {
	return fmt.Sprintf("Iteration %d: mean temperature %.5g, %3.2g%% change from last check",
		c.Iteration, c.MeanTemperature, c.Change*100)
}

// convergenceCheckPeriod is the number of ticks between convergence
// checks.
const convergenceCheckPeriod = 100

// SteadyStateConvergenceCheck returns a function that sets the Done flag
// when the simulation is finished. If numIterations > 0, the simulation
// is finished after that many ticks have been evaluated. Otherwise, the
// mean temperature is checked every 100 ticks and the simulation is
// finished when its relative change since the last check is less than
// tolerance. Check results are sent to c if it is not nil.
func SteadyStateConvergenceCheck(numIterations int, tolerance float64, c chan ConvergenceStatus) DomainManipulator {
	oldMean := math.NaN()
	lastCheck := 0

	return func(s *Session) error {
		if numIterations > 0 {
			if s.Iteration >= numIterations {
				s.Done = true
			}
			return nil
		}
		if s.Iteration-lastCheck < convergenceCheckPeriod {
			return nil
		}
		lastCheck = s.Iteration
		mean := s.MeanTemperature()
		if math.IsNaN(mean) || math.IsInf(mean, 0) {
			return fmt.Errorf("ebm: mean temperature is %g after %d iterations; the simulation will not converge", mean, s.Iteration)
		}
		change := (mean - oldMean) / oldMean
		oldMean = mean
		if c != nil {
			c <- ConvergenceStatus{Iteration: s.Iteration, MeanTemperature: mean, Change: change}
		}
		if !math.IsNaN(change) && !math.IsInf(change, 0) && math.Abs(change) < tolerance {
			s.Done = true
		}
		return nil
	}
}
