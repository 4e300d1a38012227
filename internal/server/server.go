// Package server implements the acceptor and single-threaded dispatch
// core described in SPEC_FULL.md sections 4.8 and 5, grounded on the
// Start/acceptConnections/handleConnection shape of
// _examples/presbrey-pkg/irc/server/server.go and the per-connection
// read loop in that package's client.go. Every mutation of the
// Registry happens on exactly one goroutine (runCore); everything else
// -- accepting sockets, reading raw bytes -- runs concurrently and
// only ever talks to that goroutine by posting events onto a channel.
package server

import (
	"bufio"
	"log"
	"net"

	"github.com/klaxonwire/goircd/internal/bot"
	"github.com/klaxonwire/goircd/internal/dispatch"
	"github.com/klaxonwire/goircd/internal/handlers"
	"github.com/klaxonwire/goircd/internal/metrics"
	"github.com/klaxonwire/goircd/internal/registry"
	"github.com/klaxonwire/goircd/internal/session"
)

type connEvent struct {
	conn  net.Conn
	reply chan int
}

type inputEvent struct {
	id   int
	data []byte
}

type disconnectEvent struct {
	id int
}

// Server owns the Registry and the core dispatch loop.
type Server struct {
	Registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	bot        bot.Trigger
	metrics    metrics.Recorder

	listener net.Listener
	events   chan any
	conns    map[int]net.Conn
	done     chan struct{}
}

// New builds a Server with every command handler registered. trig and
// rec may be nil-valued defaults (bot.NoOp{}, metrics.NoOp{}).
func New(reg *registry.Registry, trig bot.Trigger, rec metrics.Recorder) *Server {
	d := dispatch.New()
	handlers.Register(d)

	if trig == nil {
		trig = bot.NoOp{}
	}
	if rec == nil {
		rec = metrics.NoOp{}
	}

	return &Server{
		Registry:   reg,
		dispatcher: d,
		bot:        trig,
		metrics:    rec,
		events:     make(chan any, 256),
		conns:      make(map[int]net.Conn),
		done:       make(chan struct{}),
	}
}

// Serve runs the acceptor loop on l until Close is called. It blocks
// the calling goroutine; callers typically run it in its own
// goroutine.
func (s *Server) Serve(l net.Listener) error {
	s.listener = l
	go s.runCore()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				log.Printf("accept error: %v", err)
				continue
			}
		}
		go s.handleConn(conn)
	}
}

// Close stops the acceptor and the core loop. In-flight connections
// are closed as their read loops notice the core has gone away.
func (s *Server) Close() error {
	close(s.done)
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// handleConn reads line-delimited input off conn and forwards it to
// the core. It never touches the Registry, a User, or a Channel
// itself.
func (s *Server) handleConn(conn net.Conn) {
	reply := make(chan int, 1)
	select {
	case s.events <- connEvent{conn: conn, reply: reply}:
	case <-s.done:
		conn.Close()
		return
	}

	var id int
	select {
	case id = <-reply:
	case <-s.done:
		conn.Close()
		return
	}

	defer func() {
		select {
		case s.events <- disconnectEvent{id: id}:
		case <-s.done:
		}
		conn.Close()
	}()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			select {
			case s.events <- inputEvent{id: id, data: []byte(line)}:
			case <-s.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// runCore is the single goroutine that ever touches the Registry.
func (s *Server) runCore() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			switch e := ev.(type) {
			case connEvent:
				s.handleConnect(e)
			case inputEvent:
				s.handleInput(e.id, e.data)
			case disconnectEvent:
				s.handleDisconnect(e.id)
			}
		}
	}
}

func (s *Server) handleConnect(e connEvent) {
	host, _, err := net.SplitHostPort(e.conn.RemoteAddr().String())
	if err != nil {
		host = e.conn.RemoteAddr().String()
	}
	u := s.Registry.Connect(host)
	s.conns[u.ID()] = e.conn
	log.Printf("connect id=%d host=%s trace=%s", u.ID(), host, u.TraceID())
	e.reply <- u.ID()
}

func (s *Server) handleInput(id int, data []byte) {
	u, ok := s.Registry.FindByID(id)
	if !ok {
		return
	}

	u.FeedInput(data)
	for {
		m, ok := u.NextMessage()
		if !ok {
			break
		}
		keep := s.dispatcher.Dispatch(&dispatch.Context{Registry: s.Registry, User: u, Msg: m, Bot: s.bot})
		// A command can enqueue output for other users too (broadcasts,
		// private messages), so every connection with pending output is
		// drained, not only the sender's.
		for cid := range s.conns {
			if cu, ok := s.Registry.FindByID(cid); ok {
				s.flush(cid, cu)
			}
		}
		if !keep {
			break
		}
	}

	s.updateMetrics()
	if u.Quitting() {
		s.closeConn(id)
	}
}

func (s *Server) flush(id int, u *session.User) {
	if !u.HasPendingOutput() {
		return
	}
	conn, ok := s.conns[id]
	if !ok {
		return
	}
	if _, err := conn.Write(u.DrainOutput()); err != nil {
		u.MarkQuitting()
	}
}

func (s *Server) closeConn(id int) {
	if conn, ok := s.conns[id]; ok {
		conn.Close()
		delete(s.conns, id)
	}
}

func (s *Server) handleDisconnect(id int) {
	if u, ok := s.Registry.FindByID(id); ok {
		log.Printf("disconnect id=%d nick=%s trace=%s", id, u.Nickname(), u.TraceID())
	}
	s.Registry.Disconnect(id)
	delete(s.conns, id)
	s.updateMetrics()
}

func (s *Server) updateMetrics() {
	s.metrics.SetUsers(s.Registry.UserCount())
	s.metrics.SetChannels(s.Registry.ChannelCount())
}
