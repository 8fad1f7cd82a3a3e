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
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionRejectsNil(t *testing.T) {
	_, err := NewConnection(nil, testConfig())
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestConnectionCloseTwice(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	c, err := NewConnection(local, testConfig())
	require.NoError(t, err)
	require.True(t, c.IsConnected())

	var disconnects atomic.Int32
	c.Subscribe(func(s ConnectionState) {
		if !s.IsConnected() {
			disconnects.Add(1)
		}
	})
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.False(t, c.IsConnected())
	assert.Equal(t, int32(1), disconnects.Load())

	// Sending on a closed connection does nothing.
	c.Send([]byte("ignored"))
	c.SendString("ignored")
	assert.Zero(t, c.BytesSent())
}

func TestConnectionPeerClose(t *testing.T) {
	local, remote := net.Pipe()
	c, err := NewConnection(local, testConfig())
	require.NoError(t, err)

	require.NoError(t, remote.Close())
	require.Eventually(t, func() bool { return !c.IsConnected() }, waitFor, tick)
	assert.False(t, c.State().IsConnected())
	assert.Nil(t, c.State().Link())
}

func TestConnectionReceivesDelimitedMessages(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	cfg := testConfig()
	cfg.Framing = FramingDelimiter
	cfg.EOP = "\n"
	c, err := newConnection(local, cfg.withDefaults())
	require.NoError(t, err)
	defer c.Close()

	var mu sync.Mutex
	var got []string
	c.OnMessage(func(r ReceivedData) {
		mu.Lock()
		got = append(got, r.String())
		mu.Unlock()
	})
	c.start()

	_, err = remote.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = remote.Write([]byte("ond\n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, waitFor, tick)
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, uint64(13), c.BytesReceived())
}

func TestConnectionSendWritesFramedData(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	cfg := testConfig()
	cfg.Framing = FramingLengthPrefix
	c, err := NewConnection(local, cfg)
	require.NoError(t, err)
	defer c.Close()

	c.SendString("hi")
	buf := make([]byte, 6)
	require.NoError(t, remote.SetReadDeadline(time.Now().Add(waitFor)))
	n, err := remote.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 2, 'h', 'i'}, buf[:n])
	require.Eventually(t, func() bool { return c.BytesSent() == 6 }, waitFor, tick)

	c.ResetByteCounters()
	assert.Zero(t, c.BytesSent())
}

func TestConnectionWriteFailureDisconnects(t *testing.T) {
	local, remote := net.Pipe()
	cfg := testConfig()
	cfg.WriteTimeout = 50 * time.Millisecond
	c, err := newConnection(local, cfg.withDefaults())
	require.NoError(t, err)
	defer c.Close()
	var reported atomic.Bool
	c.SetOnError(func(error) { reported.Store(true) })
	// Only the writer runs and the peer never reads, so the write times out.
	go c.writer()
	defer remote.Close()

	c.Send([]byte("blocked"))
	require.Eventually(t, func() bool { return !c.IsConnected() }, waitFor, tick)
	assert.True(t, reported.Load())
}
