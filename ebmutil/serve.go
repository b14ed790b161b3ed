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
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ebm"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// writeTimeout is how long a snapshot write to a single client may take.
const writeTimeout = time.Second

// Server streams session snapshots to websocket clients and turns their
// messages into mutations.
//
// Clients connect to /ws. Every published snapshot is sent to every
// client as JSON. Clients send JSON messages of the form
//
//	{"op": "heat", "row": 3, "col": 12, "amount": 750}
//
// where op is one of raise, lower, heat, clear, reset, running, pause or
// display. running takes a boolean "running" field and display takes a
// "display" field of "temperature" or "altitude". heat uses the server's
// default amount if none is given.
type Server struct {
	// HeatInjection is the amount of heat added by heat messages
	// without an amount.
	HeatInjection float64

	Log logrus.FieldLogger

	mutations chan ebm.Mutation
	upgrader  websocket.Upgrader
	mux       *http.ServeMux

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	lastMu sync.Mutex
	last   *ebm.Snapshot
}

// NewServer returns a new server.
func NewServer(heatInjection float64, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		HeatInjection: heatInjection,
		Log:           log,
		mutations:     make(chan ebm.Mutation, 64),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:     http.NewServeMux(),
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
	s.mux.HandleFunc("/", s.serveHome)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Mutations returns the channel that client edits are sent on.
func (s *Server) Mutations() <-chan ebm.Mutation { return s.mutations }

func (s *Server) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, homePage)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.WithError(err).Warn("ebm: websocket upgrade")
		return
	}
	defer conn.Close()
	log := s.Log.WithField("client", conn.RemoteAddr().String())

	connMutex := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMutex
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()
	log.Info("ebm: client connected")

	s.lastMu.Lock()
	last := s.last
	s.lastMu.Unlock()
	if last != nil {
		if err := s.send(conn, connMutex, last); err != nil {
			log.WithError(err).Warn("ebm: websocket write")
			return
		}
	}

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("ebm: websocket read")
			}
			return
		}
		m, err := decodeMutation(msg, s.HeatInjection)
		if err != nil {
			log.WithError(err).Warn("ebm: ignoring message")
			continue
		}
		select {
		case s.mutations <- m:
		default:
			log.WithField("op", m.Op).Warn("ebm: mutation queue is full; dropping edit")
		}
	}
}

func (s *Server) send(conn *websocket.Conn, m *sync.Mutex, snap *ebm.Snapshot) error {
	m.Lock()
	defer m.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(snap)
}

// Publish sends snap to every connected client. Clients that cannot be
// written to are disconnected.
func (s *Server) Publish(snap *ebm.Snapshot) {
	s.lastMu.Lock()
	s.last = snap
	s.lastMu.Unlock()

	var failed []*websocket.Conn
	s.clientsMu.RLock()
	for conn, m := range s.clients {
		if err := s.send(conn, m, snap); err != nil {
			s.Log.WithError(err).WithField("client", conn.RemoteAddr().String()).Warn("ebm: websocket write")
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, conn := range failed {
			conn.Close()
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()
	}
}

// Close disconnects all clients.
func (s *Server) Close() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}

// decodeMutation converts a client message to a mutation.
func decodeMutation(msg map[string]interface{}, heatInjection float64) (ebm.Mutation, error) {
	op, err := cast.ToStringE(msg["op"])
	if err != nil || op == "" {
		return ebm.Mutation{}, fmt.Errorf("ebm: message is missing an op: %v", msg)
	}
	m := ebm.Mutation{Op: ebm.MutationOp(op)}
	switch m.Op {
	case ebm.OpRaise, ebm.OpLower, ebm.OpHeat, ebm.OpClear:
		if m.Row, err = intField(msg, "row"); err != nil {
			return m, err
		}
		if m.Col, err = intField(msg, "col"); err != nil {
			return m, err
		}
		if m.Op == ebm.OpHeat {
			m.Amount = heatInjection
			if v, ok := msg["amount"]; ok {
				if m.Amount, err = cast.ToFloat64E(v); err != nil {
					return m, fmt.Errorf("ebm: invalid amount: %v", err)
				}
			}
		}
	case ebm.OpReset, ebm.OpPause:
	case ebm.OpRunning:
		v, ok := msg["running"]
		if !ok {
			return m, fmt.Errorf("ebm: running message is missing the running field")
		}
		if m.Running, err = cast.ToBoolE(v); err != nil {
			return m, fmt.Errorf("ebm: invalid running value: %v", err)
		}
	case ebm.OpDisplay:
		d, err := cast.ToStringE(msg["display"])
		if err != nil {
			return m, fmt.Errorf("ebm: invalid display value: %v", err)
		}
		if m.Display, err = ebm.ParseDisplayField(d); err != nil {
			return m, err
		}
	default:
		return m, fmt.Errorf("ebm: unknown op %q", op)
	}
	return m, nil
}

func intField(msg map[string]interface{}, name string) (int, error) {
	v, ok := msg[name]
	if !ok {
		return 0, fmt.Errorf("ebm: message is missing the %s field", name)
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("ebm: invalid %s: %v", name, err)
	}
	return i, nil
}

// listen opens a listener on address, retrying with exponential backoff
// if the address is not available yet.
func listen(address string, log logrus.FieldLogger) (net.Listener, error) {
	var ln net.Listener
	err := backoff.RetryNotify(
		func() error {
			var err error
			ln, err = net.Listen("tcp", address)
			return err
		},
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5),
		func(err error, d time.Duration) {
			log.Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("ebm: listening on %s: %v", address, err)
	}
	return ln, nil
}

// ServeOptions holds the settings of an interactive simulation.
type ServeOptions struct {
	Address         string
	LogFile         string
	TerrainFile     string
	SaveTerrainFile string
	Display         ebm.DisplayField

	// AddRun is appended to the session's RunFuncs.
	AddRun []ebm.DomainManipulator

	// Ready, if not nil, is called with the listener address once the
	// server is accepting connections.
	Ready func(addr net.Addr)
}

// Serve runs a paced interactive simulation with parameters p and serves
// it over HTTP until ctx is cancelled.
func Serve(ctx context.Context, cmd *cobra.Command, p ebm.Params, o ServeOptions) error {
	log, closeLog, err := newLogger(cmd.OutOrStdout(), o.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	_, cLog, stopLog := statusLoggers(log)
	defer stopLog()

	srv := NewServer(p.HeatInjection, log)
	var cleanupFuncs []ebm.DomainManipulator
	if o.SaveTerrainFile != "" {
		cleanupFuncs = append(cleanupFuncs, ebm.SaveTerrainFile(o.SaveTerrainFile))
	}
	s := &ebm.Session{
		InitFuncs: initFuncs(p, o.TerrainFile, o.Display),
		RunFuncs: append([]ebm.DomainManipulator{
			ebm.ApplyMutations(srv.Mutations()),
			ebm.Tick(),
			ebm.Broadcast(srv.Publish),
			ebm.Log(cLog),
			ebm.Pace(p.FrameBudget),
			ebm.Stop(ctx),
		}, o.AddRun...),
		CleanupFuncs: cleanupFuncs,
		Log:          log,
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("ebm: problem initializing model: %v", err)
	}

	ln, err := listen(o.Address, log)
	if err != nil {
		return err
	}
	httpServer := &http.Server{Handler: srv}
	errc := make(chan error, 1)
	go func() { errc <- httpServer.Serve(ln) }()
	log.Infof("Serving the simulation at http://%s", ln.Addr())
	if o.Ready != nil {
		o.Ready(ln.Addr())
	}

	runErr := s.Run()
	srv.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("ebm: shutting down HTTP server")
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		log.WithError(err).Warn("ebm: HTTP server")
	}
	if runErr != nil {
		return fmt.Errorf("ebm: problem running simulation: %v", runErr)
	}
	if err := s.Cleanup(); err != nil {
		return fmt.Errorf("ebm: problem cleaning up: %v", err)
	}
	log.Infof("Simulation stopped after %d iterations", s.Iteration)
	return nil
}
