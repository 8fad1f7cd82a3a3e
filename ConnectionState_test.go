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
	"testing"

	"github.com/Gurux/gxcommon-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLink struct{ addr string }

func (f *fakeLink) Send([]byte)        {}
func (f *fakeLink) SendString(string)  {}
func (f *fakeLink) IsConnected() bool  { return true }
func (f *fakeLink) RemoteAddr() string { return f.addr }

func TestConnectionStateCarriesLinkOnlyWhenConnected(t *testing.T) {
	assert.False(t, Disconnected().IsConnected())
	assert.Nil(t, Disconnected().Link())
	assert.False(t, Connected(nil).IsConnected())

	link := &fakeLink{addr: "127.0.0.1:4059"}
	s := Connected(link)
	require.True(t, s.IsConnected())
	assert.Same(t, link, s.Link())
	assert.Equal(t, gxcommon.MediaStateOpen, s.MediaState())
	assert.Equal(t, gxcommon.MediaStateClosed, Disconnected().MediaState())
	assert.Equal(t, "connected 127.0.0.1:4059", s.String())
}

func TestStateHolderReplaysLatest(t *testing.T) {
	link := &fakeLink{addr: "a"}
	h := newStateHolder(Disconnected())
	h.publish(Connected(link))

	var got []ConnectionState
	dispose := h.Subscribe(func(s ConnectionState) { got = append(got, s) })
	require.Len(t, got, 1)
	assert.True(t, got[0].IsConnected())

	h.publish(Disconnected())
	require.Len(t, got, 2)
	assert.False(t, got[1].IsConnected())

	dispose()
	dispose()
	h.publish(Connected(link))
	assert.Len(t, got, 2)
}

func TestStateHolderDisconnectOnce(t *testing.T) {
	h := newStateHolder(Connected(&fakeLink{}))
	count := 0
	h.Subscribe(func(s ConnectionState) {
		if !s.IsConnected() {
			count++
		}
	})
	assert.True(t, h.disconnect())
	assert.False(t, h.disconnect())
	assert.Equal(t, 1, count)
}

func TestStateHolderObserverCanCallBack(t *testing.T) {
	h := newStateHolder(Connected(&fakeLink{}))
	var inner ConnectionState
	h.Subscribe(func(s ConnectionState) {
		if !s.IsConnected() {
			inner = h.get()
			h.disconnect()
		}
	})
	h.disconnect()
	assert.False(t, inner.IsConnected())
}
