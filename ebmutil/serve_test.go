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
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/ebm"
	"github.com/spf13/cobra"
)

func TestDecodeMutation(t *testing.T) {
	tests := []struct {
		name string
		msg  map[string]interface{}
		want ebm.Mutation
		err  bool
	}{
		{
			name: "raise",
			msg:  map[string]interface{}{"op": "raise", "row": 2., "col": 3.},
			want: ebm.Mutation{Op: ebm.OpRaise, Row: 2, Col: 3},
		},
		{
			name: "heat default",
			msg:  map[string]interface{}{"op": "heat", "row": 1., "col": 0.},
			want: ebm.Mutation{Op: ebm.OpHeat, Row: 1, Amount: 750},
		},
		{
			name: "heat amount",
			msg:  map[string]interface{}{"op": "heat", "row": 1., "col": 0., "amount": "20"},
			want: ebm.Mutation{Op: ebm.OpHeat, Row: 1, Amount: 20},
		},
		{
			name: "reset",
			msg:  map[string]interface{}{"op": "reset"},
			want: ebm.Mutation{Op: ebm.OpReset},
		},
		{
			name: "running",
			msg:  map[string]interface{}{"op": "running", "running": true},
			want: ebm.Mutation{Op: ebm.OpRunning, Running: true},
		},
		{
			name: "display",
			msg:  map[string]interface{}{"op": "display", "display": "altitude"},
			want: ebm.Mutation{Op: ebm.OpDisplay, Display: ebm.DisplayAltitude},
		},
		{name: "no op", msg: map[string]interface{}{"row": 1.}, err: true},
		{name: "unknown op", msg: map[string]interface{}{"op": "melt"}, err: true},
		{name: "missing col", msg: map[string]interface{}{"op": "lower", "row": 1.}, err: true},
		{name: "bad row", msg: map[string]interface{}{"op": "clear", "row": "top", "col": 1.}, err: true},
		{name: "bad amount", msg: map[string]interface{}{"op": "heat", "row": 1., "col": 1., "amount": "hot"}, err: true},
		{name: "missing running", msg: map[string]interface{}{"op": "running"}, err: true},
		{name: "bad display", msg: map[string]interface{}{"op": "display", "display": "wind"}, err: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := decodeMutation(tc.msg, 750)
			if tc.err {
				if err == nil {
					t.Errorf("expected an error, got %+v", m)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if m != tc.want {
				t.Errorf("have %+v, want %+v", m, tc.want)
			}
		})
	}
}

func dial(t *testing.T, addr string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	return conn
}

func TestServer(t *testing.T) {
	logger, _ := test.NewNullLogger()
	srv := NewServer(750, logger)
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	conn := dial(t, strings.TrimPrefix(ts.URL, "http://"))
	defer conn.Close()

	if err := conn.WriteJSON(map[string]interface{}{"op": "heat", "row": 1, "col": 2}); err != nil {
		t.Fatal(err)
	}
	select {
	case m := <-srv.Mutations():
		want := ebm.Mutation{Op: ebm.OpHeat, Row: 1, Col: 2, Amount: 750}
		if m != want {
			t.Errorf("have %+v, want %+v", m, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mutation")
	}

	snap := &ebm.Snapshot{Rows: 1, Cols: 2, Iteration: 7, Display: "temperature",
		Altitude: []float64{0, 1}, Temperature: []float64{280, 290}}
	srv.Publish(snap)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got ebm.Snapshot
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(&got, snap) {
		t.Errorf("have %+v, want %+v", got, *snap)
	}

	// New clients start from the last snapshot.
	conn2 := dial(t, strings.TrimPrefix(ts.URL, "http://"))
	defer conn2.Close()
	conn2.SetReadDeadline(time.Now().Add(5 * time.Second))
	got = ebm.Snapshot{}
	if err := conn2.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.Iteration != 7 {
		t.Errorf("iteration = %d", got.Iteration)
	}
}

func TestServeHome(t *testing.T) {
	ts := httptest.NewServer(NewServer(750, nil))
	defer ts.Close()

	r, err := http.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if r.StatusCode != http.StatusOK || !strings.Contains(string(b), "<canvas") {
		t.Errorf("status %d; body:\n%s", r.StatusCode, b)
	}

	r, err = http.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusNotFound {
		t.Errorf("status %d", r.StatusCode)
	}
}

func TestListen(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ln, err := listen("127.0.0.1:0", logger)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if _, err := listen(ln.Addr().String(), logger); err == nil {
		t.Error("expected an error for an address in use")
	}
}

func TestServe(t *testing.T) {
	p := ebm.DefaultParams()
	p.Rows, p.Cols = 4, 8
	p.FrameBudget = 5 * time.Millisecond

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOutput(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan net.Addr, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- Serve(ctx, cmd, p, ServeOptions{
			Address: "127.0.0.1:0",
			Display: ebm.DisplayAltitude,
			Ready:   func(a net.Addr) { ready <- a },
		})
	}()

	var addr net.Addr
	select {
	case addr = <-ready:
	case err := <-errc:
		t.Fatal(err)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for server")
	}
	conn := dial(t, addr.String())
	defer conn.Close()
	if err := conn.WriteJSON(map[string]interface{}{"op": "raise", "row": 1, "col": 1}); err != nil {
		t.Fatal(err)
	}

	idx := 1*p.Cols + 1
	deadline := time.Now().Add(10 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var snap ebm.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatal(err)
		}
		if snap.Display != "altitude" {
			t.Errorf("display = %s", snap.Display)
		}
		if snap.Altitude[idx] > 0 {
			break
		}
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
	if !strings.Contains(buf.String(), "Simulation stopped after") {
		t.Errorf("unexpected log:\n%s", buf.String())
	}
}
