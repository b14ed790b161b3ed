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
	"strings"
	"testing"
	"time"
)

func TestFrameSleep(t *testing.T) {
	const budget = 150 * time.Millisecond
	for _, tc := range []struct {
		elapsed, want time.Duration
	}{
		{0, budget},
		{50 * time.Millisecond, 100 * time.Millisecond},
		{budget, 0},
		{time.Second, 0},
	} {
		if d := frameSleep(budget, tc.elapsed); d != tc.want {
			t.Errorf("elapsed %v: have %v, want %v", tc.elapsed, d, tc.want)
		}
	}
}

func TestPace(t *testing.T) {
	now := time.Unix(0, 0)
	var slept []time.Duration
	clock := func() time.Time { return now }
	sleep := func(d time.Duration) {
		slept = append(slept, d)
		now = now.Add(d)
	}
	f := pace(100*time.Millisecond, clock, sleep)
	s := &Session{}

	f(s) // first frame: nothing to wait for
	now = now.Add(30 * time.Millisecond)
	f(s)
	now = now.Add(250 * time.Millisecond) // overrun
	f(s)
	now = now.Add(10 * time.Millisecond)
	f(s)

	want := []time.Duration{70 * time.Millisecond, 90 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep %d: have %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{}
	f := Stop(ctx)
	f(s)
	if s.Done {
		t.Fatal("should not be done before cancel")
	}
	cancel()
	f(s)
	if !s.Done {
		t.Error("should be done after cancel")
	}
}

func TestRunNumIterations(t *testing.T) {
	s, _ := newTestSession(t, smallParams())
	cLog := make(chan *SimulationStatus, 10)
	var snapshots int
	s.RunFuncs = []DomainManipulator{
		Tick(),
		SteadyStateConvergenceCheck(5, 0, nil),
		Log(cLog),
		Broadcast(func(*Snapshot) { snapshots++ }),
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.Iteration != 5 {
		t.Errorf("ran %d iterations", s.Iteration)
	}
	if snapshots != 5 || len(cLog) != 5 {
		t.Errorf("%d snapshots and %d log messages", snapshots, len(cLog))
	}
	msg := <-cLog
	if msg.Iteration != 1 || !strings.Contains(msg.String(), "Iteration 1") {
		t.Errorf("unexpected status %q", msg.String())
	}
}

// maxIterations returns a run function that fails once the session has
// run more than n iterations.
func maxIterations(n int) DomainManipulator {
	return func(s *Session) error {
		if s.Iteration > n {
			return fmt.Errorf("no convergence after %d iterations", n)
		}
		return nil
	}
}

func TestRunConvergence(t *testing.T) {
	// With no forcing and identity operators the field is constant.
	p := smallParams()
	p.SolarConstant = 0
	p.StefanBoltzmann = 0
	p.DiffusionCoefficient = 0
	p.WindSpeed = 0
	s, _ := newTestSession(t, p)
	c := make(chan ConvergenceStatus, 10)
	s.RunFuncs = []DomainManipulator{
		Tick(),
		SteadyStateConvergenceCheck(0, 1e-6, c),
		maxIterations(5 * convergenceCheckPeriod),
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	// The first check has nothing to compare to; the second finds no
	// change.
	if s.Iteration != 2*convergenceCheckPeriod {
		t.Errorf("converged after %d iterations", s.Iteration)
	}
	if len(c) != 2 {
		t.Errorf("%d convergence messages", len(c))
	}
}

func TestRunRedistributionDrift(t *testing.T) {
	// Diffusion followed by transport does not conserve the mean of a
	// uniform field, so it keeps changing without any forcing.
	p := smallParams()
	p.SolarConstant = 0
	p.StefanBoltzmann = 0
	s, _ := newTestSession(t, p)
	c := make(chan ConvergenceStatus, 3)
	s.RunFuncs = []DomainManipulator{
		Tick(),
		SteadyStateConvergenceCheck(0, 1e-6, c),
		func(s *Session) error {
			if len(c) == cap(c) {
				s.Done = true
			}
			return nil
		},
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.Iteration != 3*convergenceCheckPeriod {
		t.Errorf("stopped after %d iterations", s.Iteration)
	}
	<-c
	for i := 0; i < 2; i++ {
		if msg := <-c; math.Abs(msg.Change) < 1e-6 {
			t.Errorf("check %d: mean changed by only %g", i+1, msg.Change)
		}
	}
}

func TestRunNotFinite(t *testing.T) {
	p := smallParams()
	s, _ := newTestSession(t, p)
	s.InjectHeat(0, 0, 1e300)
	s.RunFuncs = []DomainManipulator{
		Tick(),
		SteadyStateConvergenceCheck(0, 1e-6, nil),
	}
	if err := s.Run(); err == nil {
		t.Error("expected an error for a diverging simulation")
	}
}

func TestCleanup(t *testing.T) {
	s := &Session{}
	var ran bool
	s.CleanupFuncs = []DomainManipulator{func(*Session) error { ran = true; return nil }}
	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("cleanup function did not run")
	}
}
