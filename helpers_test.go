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
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 5 * time.Second
	tick    = 10 * time.Millisecond
)

func testConfig() *Config {
	l := logrus.New()
	l.Out = io.Discard
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1"
	cfg.Logger = l
	return &cfg
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func openServer(t *testing.T, cfg *Config) (*Server, int) {
	t.Helper()
	srv := NewServer(cfg)
	port := freePort(t)
	require.NoError(t, srv.Open("127.0.0.1", port, NetworkTypeTCP))
	require.True(t, srv.IsOnline())
	t.Cleanup(func() { _ = srv.Close() })
	return srv, port
}

func connectClient(t *testing.T, cfg *Config, port int) *Client {
	t.Helper()
	cl := NewClient(cfg)
	t.Cleanup(func() { _ = cl.Close() })
	require.NoError(t, cl.ConnectTo("127.0.0.1", port, NetworkTypeTCP))
	require.Eventually(t, cl.IsConnected, waitFor, tick)
	return cl
}
