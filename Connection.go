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
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Connection owns one open socket. It reads messages in its own goroutine and
// writes queued messages in another.
type Connection struct {
	cfg    *Config
	t      *tracer
	framer Framer

	mu     sync.RWMutex
	conn   net.Conn
	remote string
	local  string
	// stream is false for datagram sockets, where an empty read is a valid datagram.
	stream bool
	stop   chan struct{}
	queue  chan []byte
	onErr  func(error)

	state    *stateHolder
	messages *messageEmitter

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
}

// NewConnection wraps an open socket and starts reading from it.
func NewConnection(conn net.Conn, cfg *Config) (*Connection, error) {
	c, err := newConnection(conn, cfg.withDefaults())
	if err != nil {
		return nil, err
	}
	c.start()
	return c, nil
}

// newConnection creates the connection without starting it so that the owner
// can subscribe before the first message is read.
func newConnection(conn net.Conn, cfg *Config) (*Connection, error) {
	if conn == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "connection is nil")
	}
	if err := cfg.validateBuffers(); err != nil {
		return nil, err
	}
	framer, err := newFramer(cfg)
	if err != nil {
		return nil, err
	}
	c := &Connection{
		cfg:      cfg,
		framer:   framer,
		conn:     conn,
		remote:   conn.RemoteAddr().String(),
		local:    conn.LocalAddr().String(),
		stream:   isStream(conn),
		stop:     make(chan struct{}),
		queue:    make(chan []byte, cfg.SendQueue),
		messages: newMessageEmitter(),
	}
	c.t = newTracer(cfg, logrus.Fields{"remote": c.remote, "local": c.local})
	c.state = newStateHolder(Connected(c))
	return c, nil
}

func isStream(conn net.Conn) bool {
	_, ok := conn.(net.PacketConn)
	return !ok
}

func (c *Connection) start() {
	go c.reader()
	go c.writer()
}

// String returns the remote address.
func (c *Connection) String() string {
	return c.remote
}

// RemoteAddr returns the address of the peer.
func (c *Connection) RemoteAddr() string {
	return c.remote
}

// LocalAddr returns the local address of the socket.
func (c *Connection) LocalAddr() string {
	return c.local
}

// IsConnected returns true while the socket is open and no I/O error has been seen.
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	open := c.conn != nil
	c.mu.RUnlock()
	return open && c.state.get().IsConnected()
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	return c.state.get()
}

// Subscribe calls observer with the current state and then on every change.
func (c *Connection) Subscribe(observer func(ConnectionState)) Disposable {
	return c.state.Subscribe(observer)
}

// OnMessage calls listener for every received message.
func (c *Connection) OnMessage(listener func(ReceivedData)) Disposable {
	return c.messages.Subscribe(listener)
}

// SetOnError sets the handler for I/O errors.
func (c *Connection) SetOnError(value func(error)) {
	c.mu.Lock()
	c.onErr = value
	c.mu.Unlock()
}

// BytesSent returns the number of bytes written to the socket.
func (c *Connection) BytesSent() uint64 {
	return c.bytesSent.Load()
}

// BytesReceived returns the number of bytes read from the socket.
func (c *Connection) BytesReceived() uint64 {
	return c.bytesReceived.Load()
}

// ResetByteCounters resets the sent and received byte counters.
func (c *Connection) ResetByteCounters() {
	c.bytesSent.Store(0)
	c.bytesReceived.Store(0)
}

// Send queues data for writing. Nothing is sent if the connection is closed.
func (c *Connection) Send(data []byte) {
	if !c.IsConnected() {
		return
	}
	tmp := make([]byte, len(data))
	copy(tmp, data)
	frame := c.framer.Encode(tmp)
	select {
	case c.queue <- frame:
	case <-c.stop:
	}
}

// SendString sends text encoded as ASCII.
func (c *Connection) SendString(text string) {
	c.Send(asciiBytes(text))
}

// SendAny converts data to bytes and sends it. Only the conversion error is returned.
func (c *Connection) SendAny(data any) error {
	tmp, err := gxcommon.ToBytes(data, binary.BigEndian)
	if err != nil {
		return err
	}
	c.Send(tmp)
	return nil
}

// Close closes the socket, publishes the disconnected state and drops all
// subscribers. Closing a closed connection does nothing.
func (c *Connection) Close() error {
	return c.shutdown(false)
}

func (c *Connection) shutdown(byPeer bool) error {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		c.t.debug(nil, "msg.already_closed")
		return nil
	}
	c.conn = nil
	close(c.stop)
	c.mu.Unlock()

	if byPeer {
		c.t.info(nil, "msg.peer_closed", c.remote)
	} else {
		c.t.info(nil, "msg.closing_connection", c.remote)
	}
	err := conn.Close()
	c.state.disconnect()
	// A closed connection is never reopened.
	c.state.dispose()
	c.messages.dispose()
	c.t.info(nil, "msg.connection_closed", c.remote)
	return err
}

func (c *Connection) socket() net.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Connection) reportError(err error) {
	c.mu.RLock()
	cb := c.onErr
	c.mu.RUnlock()
	if cb != nil {
		cb(err)
	}
}

func (c *Connection) reader() {
	conn := c.socket()
	if conn == nil {
		return
	}
	defer c.framer.Reset()
	buf := make([]byte, c.cfg.ReadBuffer)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			c.bytesReceived.Add(uint64(n))
			c.t.data(gxcommon.TraceTypesReceived, "RX", buf[:n])
			frames, ferr := c.framer.Decode(buf[:n], pendingBytes(conn))
			for _, f := range frames {
				c.messages.notify(newReceivedData(f, c.remote))
			}
			if ferr != nil {
				c.t.error(ferr, "msg.frame_failed", c.remote)
				c.reportError(ferr)
				_ = c.shutdown(false)
				return
			}
		}
		if err == nil {
			if n == 0 && c.stream {
				_ = c.shutdown(true)
				return
			}
			continue
		}
		select {
		case <-c.stop:
			// Closed locally.
			return
		default:
		}
		if errors.Is(err, io.EOF) {
			_ = c.shutdown(true)
			return
		}
		if errors.Is(err, net.ErrClosed) {
			return
		}
		c.t.error(err, "msg.connection_failed")
		c.reportError(err)
		_ = c.shutdown(false)
		return
	}
}

func (c *Connection) writer() {
	for {
		select {
		case <-c.stop:
			return
		case data := <-c.queue:
			c.write(data)
		}
	}
}

func (c *Connection) write(data []byte) {
	conn := c.socket()
	if conn == nil || !c.state.get().IsConnected() {
		return
	}
	c.t.data(gxcommon.TraceTypesSent, "TX", data)
	if c.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	n, err := conn.Write(data)
	c.bytesSent.Add(uint64(n))
	if err != nil {
		c.t.error(err, "msg.send_failed", c.remote)
		c.reportError(err)
		// The socket is left to the reader, which sees the failure and closes it.
		c.state.disconnect()
	}
}
