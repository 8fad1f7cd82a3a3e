package gxsocket

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Server accepts connections and keeps the list of connected clients.
type Server struct {
	cfg *Config
	t   *tracer

	mu       sync.Mutex
	listener net.Listener
	onErr    func(error)

	// clientsMu guards clients and closed. Entries are kept in accept order.
	clientsMu sync.RWMutex
	clients   []serverClient
	// closed is set by Close and cleared by Open. No client is added while set.
	closed bool

	state *stateHolder
}

type serverClient struct {
	conn    *Connection
	dispose Disposable
}

// NewServer creates a server that is not listening. cfg can be nil.
func NewServer(cfg *Config) *Server {
	s := &Server{
		cfg:   cfg.withDefaults(),
		state: newStateHolder(Disconnected()),
	}
	s.t = newTracer(s.cfg, logrus.Fields{"role": "server"})
	return s
}

// Open starts listening on address and port. Invalid arguments are returned
// as errors wrapping ErrInvalidArgument, and a protocol other than TCP as
// ErrUnsupportedProtocol. A failure to bind is only logged and reported to the
// error handler; IsOnline tells if the server is listening.
func (s *Server) Open(address string, port int, protocol NetworkType) error {
	return s.OpenContext(context.Background(), address, port, protocol)
}

// OpenContext is Open where ctx bounds the listen call.
func (s *Server) OpenContext(ctx context.Context, address string, port int, protocol NetworkType) error {
	if err := validateEndpoint(address, port, protocol); err != nil {
		return err
	}
	if protocol != NetworkTypeTCP {
		return errors.Wrapf(ErrUnsupportedProtocol, "server cannot listen with %s", protocol)
	}
	if err := s.cfg.validateBuffers(); err != nil {
		return err
	}
	_ = s.Stop()
	s.clientsMu.Lock()
	s.closed = false
	s.clientsMu.Unlock()

	endpoint := joinHostPort(address, port)
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, protocol.network(s.cfg.UseIPv6), endpoint)
	if err != nil {
		s.t.error(err, "msg.listen_failed", endpoint)
		s.reportError(err)
		return nil
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.t.info(logrus.Fields{"local": ln.Addr().String(), "backlog": s.cfg.Backlog}, "msg.listening", ln.Addr().String())
	go s.acceptLoop(ln)
	return nil
}

// Listen listens on the address and port of the configuration.
func (s *Server) Listen() error {
	return s.Open(s.cfg.Address, s.cfg.Port, s.cfg.Protocol)
}

func (s *Server) acceptLoop(ln net.Listener) {
	var delay time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || !s.isListener(ln) {
				return
			}
			s.t.warn(err, "msg.accept_failed")
			s.reportError(err)
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else if delay *= 2; delay > time.Second {
				delay = time.Second
			}
			time.Sleep(delay)
			continue
		}
		delay = 0
		if !s.isListener(ln) {
			_ = nc.Close()
			return
		}
		s.accept(nc)
	}
}

func (s *Server) isListener(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener == ln
}

func (s *Server) accept(nc net.Conn) {
	conn, err := newConnection(nc, s.cfg)
	if err != nil {
		_ = nc.Close()
		s.t.error(err, "msg.accept_failed")
		s.reportError(err)
		return
	}
	s.t.info(logrus.Fields{"remote": conn.RemoteAddr()}, "msg.accepted", conn.RemoteAddr())
	conn.SetOnError(s.reportError)
	// The subscription replays the connected state, which adds the
	// connection and publishes it before reading starts.
	rejected := false
	dispose := conn.Subscribe(func(st ConnectionState) {
		if st.IsConnected() {
			if !s.add(conn) {
				rejected = true
				return
			}
		} else {
			s.remove(conn)
		}
		s.state.publish(st)
	})
	if rejected || !s.setDispose(conn, dispose) {
		// Closed while accepting.
		dispose()
		_ = conn.Close()
		return
	}
	conn.start()
}

// add appends conn to the live set. It returns false when the server is closed.
func (s *Server) add(conn *Connection) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if s.closed {
		return false
	}
	for _, c := range s.clients {
		if c.conn == conn {
			return true
		}
	}
	s.clients = append(s.clients, serverClient{conn: conn})
	return true
}

func (s *Server) setDispose(conn *Connection, dispose Disposable) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for i := range s.clients {
		if s.clients[i].conn == conn {
			s.clients[i].dispose = dispose
			return true
		}
	}
	return false
}

func (s *Server) remove(conn *Connection) {
	s.clientsMu.Lock()
	removed := false
	for i, c := range s.clients {
		if c.conn == conn {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			removed = true
			break
		}
	}
	count := len(s.clients)
	s.clientsMu.Unlock()
	if removed {
		s.t.debug(logrus.Fields{"clients": count}, "msg.client_removed", conn.RemoteAddr(), count)
	}
}

// Clients returns the connected clients in accept order.
func (s *Server) Clients() []*Connection {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	ret := make([]*Connection, len(s.clients))
	for i, c := range s.clients {
		ret[i] = c.conn
	}
	return ret
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// IsOnline returns true while the server is listening.
func (s *Server) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// Addr returns the listening address or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Subscribe calls observer with the latest state and then on every client
// connect and disconnect. The link of a connected state is the client connection.
func (s *Server) Subscribe(observer func(ConnectionState)) Disposable {
	return s.state.Subscribe(observer)
}

// SetOnError sets the handler for listen, accept and client I/O errors.
func (s *Server) SetOnError(value func(error)) {
	s.mu.Lock()
	s.onErr = value
	s.mu.Unlock()
}

func (s *Server) reportError(err error) {
	s.mu.Lock()
	cb := s.onErr
	s.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// Send sends data to every connected client.
// Failures are handled by each client connection.
func (s *Server) Send(data []byte) {
	for _, c := range s.Clients() {
		c.Send(data)
	}
}

// SendString sends text encoded as ASCII to every connected client.
func (s *Server) SendString(text string) {
	s.Send(asciiBytes(text))
}

// Stop closes the listener. Connected clients are left open.
// Stopping a stopped server does nothing.
func (s *Server) Stop() error {
	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	addr := ln.Addr().String()
	err := ln.Close()
	s.t.info(nil, "msg.stopped", addr)
	return err
}

// Close stops listening, closes every connected client and drops the
// subscriptions. Closing a closed server does nothing.
func (s *Server) Close() error {
	err := s.Stop()
	s.clientsMu.Lock()
	clients := s.clients
	s.clients = nil
	s.closed = true
	s.clientsMu.Unlock()
	for _, c := range clients {
		if cerr := c.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if c.dispose != nil {
			c.dispose()
		}
	}
	return err
}
