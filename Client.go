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

	"github.com/Gurux/gxcommon-go"
	"github.com/sirupsen/logrus"
)

// Client connects to a remote server and exchanges messages with it.
type Client struct {
	cfg *Config
	t   *tracer

	mu         sync.Mutex
	conn       *Connection
	disposers  []Disposable
	cancelDial context.CancelFunc
	// generation is increased on every connect and close so that a dial
	// completing late does not replace a newer connection.
	generation uint64
	endpoint   string
	onErr      func(error)

	state    *stateHolder
	messages *messageEmitter
}

// NewClient creates a disconnected client. cfg can be nil.
func NewClient(cfg *Config) *Client {
	c := &Client{
		cfg:      cfg.withDefaults(),
		state:    newStateHolder(Disconnected()),
		messages: newMessageEmitter(),
	}
	c.t = newTracer(c.cfg, logrus.Fields{"role": "client"})
	return c
}

// String returns the end point of the last connect.
func (c *Client) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.endpoint == "" {
		return c.cfg.String()
	}
	return c.endpoint
}

// ConnectTo starts connecting to address and port. The arguments are checked
// before anything else is done and an error wrapping ErrInvalidArgument is
// returned for an empty address or a port outside (0, 65535]. The connection
// itself is established asynchronously; subscribe to the state to learn when
// it is ready. A failed dial is only logged and reported to the error handler.
func (c *Client) ConnectTo(address string, port int, protocol NetworkType) error {
	return c.ConnectToContext(context.Background(), address, port, protocol)
}

// ConnectToContext is ConnectTo where ctx bounds the dial.
func (c *Client) ConnectToContext(ctx context.Context, address string, port int, protocol NetworkType) error {
	if err := validateEndpoint(address, port, protocol); err != nil {
		return err
	}
	if err := c.cfg.validateBuffers(); err != nil {
		return err
	}
	_ = c.release()

	endpoint := joinHostPort(address, port)
	dialCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.endpoint = endpoint
	c.generation++
	gen := c.generation
	c.cancelDial = cancel
	c.mu.Unlock()

	go c.dial(dialCtx, gen, protocol, endpoint)
	return nil
}

// Connect connects to the address, port and protocol of the configuration.
func (c *Client) Connect() error {
	return c.ConnectTo(c.cfg.Address, c.cfg.Port, c.cfg.Protocol)
}

func (c *Client) dial(ctx context.Context, gen uint64, protocol NetworkType, address string) {
	c.t.info(nil, "msg.connecting_to", protocol.String(), address, c.cfg.ConnectTimeout.Milliseconds())
	d := net.Dialer{Timeout: c.cfg.ConnectTimeout}
	nc, err := d.DialContext(ctx, protocol.network(c.cfg.UseIPv6), address)
	if err != nil {
		c.t.error(err, "msg.connect_failed", address)
		c.reportError(err)
		return
	}
	conn, err := newConnection(nc, c.cfg)
	if err != nil {
		_ = nc.Close()
		c.t.error(err, "msg.connect_failed", address)
		c.reportError(err)
		return
	}
	conn.SetOnError(c.reportError)

	if !c.install(gen, conn) {
		_ = nc.Close()
		return
	}
	c.t.info(logrus.Fields{"remote": conn.RemoteAddr()}, "msg.connected_to", address)
	c.announce(gen, conn)
}

// install makes conn the current connection unless a newer connect or a
// close has happened since generation gen started.
func (c *Client) install(gen uint64, conn *Connection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.conn = conn
	c.disposers = append(c.disposers,
		conn.Subscribe(func(s ConnectionState) {
			if !s.IsConnected() {
				c.state.disconnect()
			}
		}),
		conn.OnMessage(c.messages.notify),
	)
	return true
}

// announce publishes the connected state and starts reading.
func (c *Client) announce(gen uint64, conn *Connection) {
	c.state.publish(Connected(c))
	// Close can run between install and publish. Its disconnect was a
	// no-op then, so it is published here instead.
	if !c.holds(gen, conn) {
		c.state.disconnect()
		return
	}
	conn.start()
}

// holds reports whether conn from generation gen is still the current connection.
func (c *Client) holds(gen uint64, conn *Connection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation && c.conn == conn
}

// release cancels a pending dial and closes the current connection.
func (c *Client) release() error {
	c.mu.Lock()
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	c.generation++
	conn := c.conn
	c.conn = nil
	disposers := c.disposers
	c.disposers = nil
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	for _, d := range disposers {
		d()
	}
	c.state.disconnect()
	return err
}

// Close cancels a pending connect and closes the connection.
// Closing a closed client does nothing.
func (c *Client) Close() error {
	if c.current() == nil {
		c.t.debug(nil, "msg.already_closed")
	}
	return c.release()
}

func (c *Client) current() *Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// IsConnected returns true while the client has a live connection.
func (c *Client) IsConnected() bool {
	conn := c.current()
	return conn != nil && conn.IsConnected()
}

// RemoteAddr returns the address of the server or an empty string.
func (c *Client) RemoteAddr() string {
	if conn := c.current(); conn != nil {
		return conn.RemoteAddr()
	}
	return ""
}

// State returns the current client state.
func (c *Client) State() ConnectionState {
	return c.state.get()
}

// MediaState returns the Gurux media state of the client.
func (c *Client) MediaState() gxcommon.MediaState {
	return c.state.get().MediaState()
}

// Subscribe calls observer with the current state and then on every change.
func (c *Client) Subscribe(observer func(ConnectionState)) Disposable {
	return c.state.Subscribe(observer)
}

// OnMessage calls listener for every message received from the server.
// Listeners are kept over reconnects.
func (c *Client) OnMessage(listener func(ReceivedData)) Disposable {
	return c.messages.Subscribe(listener)
}

// SetOnError sets the handler for connect and I/O errors.
func (c *Client) SetOnError(value func(error)) {
	c.mu.Lock()
	c.onErr = value
	c.mu.Unlock()
}

func (c *Client) reportError(err error) {
	c.mu.Lock()
	cb := c.onErr
	c.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// Send sends data to the server. Nothing is sent when the client is not connected.
func (c *Client) Send(data []byte) {
	if conn := c.current(); conn != nil {
		conn.Send(data)
	}
}

// SendString sends text encoded as ASCII.
func (c *Client) SendString(text string) {
	c.Send(asciiBytes(text))
}

// SendAny converts data to bytes with the Gurux conversion rules and sends it.
func (c *Client) SendAny(data any) error {
	conn := c.current()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.SendAny(data)
}

// BytesSent returns the bytes written on the current connection.
func (c *Client) BytesSent() uint64 {
	if conn := c.current(); conn != nil {
		return conn.BytesSent()
	}
	return 0
}

// BytesReceived returns the bytes read on the current connection.
func (c *Client) BytesReceived() uint64 {
	if conn := c.current(); conn != nil {
		return conn.BytesReceived()
	}
	return 0
}
