// Package gxsocket provides TCP socket client and server connections for
// Gurux components.
// A Connection owns one open socket, a Client dials out to a server and a
// Server accepts clients and keeps the list of connected ones.
//
// Features
//
//   - Protocols: TCP for client and server, UDP for client (see NetworkType).
//   - States: every Connection, Client and Server publishes its connection
//     state. New subscribers receive the latest state immediately.
//   - Messages: received messages are published in the order they are read.
//   - Framing: socket drain (default), length prefix or EOP delimiter.
//   - Logging: structured logrus logging with localized messages and
//     trace level controlled data tracing.
//
// # Construction
//
// Use NewClient and NewServer with a Config. DefaultConfig returns the
// defaults; nil can be passed to use them as is.
//
// Example
//
//	srv := gxsocket.NewServer(nil)
//	srv.Subscribe(func(s gxsocket.ConnectionState) {
//	    if s.IsConnected() {
//	        s.Link().SendString("hello")
//	    }
//	})
//	if err := srv.Open("127.0.0.1", 4059, gxsocket.NetworkTypeTCP); err != nil {
//	    // invalid address or port
//	}
//	defer srv.Close()
//
//	cl := gxsocket.NewClient(nil)
//	cl.OnMessage(func(m gxsocket.ReceivedData) {
//	    fmt.Println(m.String())
//	})
//	_ = cl.ConnectTo("127.0.0.1", 4059, gxsocket.NetworkTypeTCP)
//
// # Errors
//
// Only argument errors are returned to the caller. Connect, send and receive
// failures are logged, passed to the SetOnError handler and turned into a
// disconnected state. Nothing is retried; reconnecting is left to the caller.
//
// # Framing
//
// With FramingDrain everything read until the socket has no more pending
// bytes is one message. This matches older peers, but one large message can
// be split and back-to-back messages can be merged. Use FramingLengthPrefix
// or FramingDelimiter when both ends are under your control.
//
// # Notes
//
// Subscribers are called from the connection goroutines. Long-running work
// in handlers should be offloaded to a separate goroutine to avoid blocking
// I/O paths.
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
