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
	"sync"

	"github.com/Gurux/gxcommon-go"
)

// Link is the live endpoint carried by a connected ConnectionState.
type Link interface {
	Send(data []byte)
	SendString(text string)
	IsConnected() bool
	RemoteAddr() string
}

// Disposable removes a subscription. Calling it more than once is safe.
type Disposable func()

// ConnectionState is either disconnected or connected to a Link.
// A connected state always carries its link.
type ConnectionState struct {
	link Link
}

// Disconnected returns the disconnected state.
func Disconnected() ConnectionState {
	return ConnectionState{}
}

// Connected returns a connected state carrying link.
// A nil link gives the disconnected state.
func Connected(link Link) ConnectionState {
	return ConnectionState{link: link}
}

// IsConnected reports whether the state is connected.
func (s ConnectionState) IsConnected() bool {
	return s.link != nil
}

// Link returns the connected link or nil.
func (s ConnectionState) Link() Link {
	return s.link
}

// MediaState maps the state to the Gurux media state.
func (s ConnectionState) MediaState() gxcommon.MediaState {
	if s.IsConnected() {
		return gxcommon.MediaStateOpen
	}
	return gxcommon.MediaStateClosed
}

// String implements fmt.Stringer.
func (s ConnectionState) String() string {
	if s.IsConnected() {
		return "connected " + s.link.RemoteAddr()
	}
	return "disconnected"
}

// stateHolder keeps the latest ConnectionState and pushes every publication
// to its subscribers. New subscribers receive the current state first.
type stateHolder struct {
	mu        sync.Mutex
	state     ConnectionState
	nextID    uint64
	observers map[uint64]func(ConnectionState)
}

func newStateHolder(initial ConnectionState) *stateHolder {
	return &stateHolder{state: initial, observers: make(map[uint64]func(ConnectionState))}
}

func (h *stateHolder) get() ConnectionState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe registers observer and replays the current state to it.
func (h *stateHolder) Subscribe(observer func(ConnectionState)) Disposable {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.observers[id] = observer
	current := h.state
	h.mu.Unlock()
	observer(current)
	return func() {
		h.mu.Lock()
		delete(h.observers, id)
		h.mu.Unlock()
	}
}

func (h *stateHolder) publish(s ConnectionState) {
	h.mu.Lock()
	h.state = s
	observers := h.snapshot()
	h.mu.Unlock()
	for _, o := range observers {
		o(s)
	}
}

// disconnect publishes Disconnected only on a connected to disconnected transition.
func (h *stateHolder) disconnect() bool {
	h.mu.Lock()
	if !h.state.IsConnected() {
		h.mu.Unlock()
		return false
	}
	h.state = Disconnected()
	observers := h.snapshot()
	h.mu.Unlock()
	for _, o := range observers {
		o(Disconnected())
	}
	return true
}

func (h *stateHolder) dispose() {
	h.mu.Lock()
	clear(h.observers)
	h.mu.Unlock()
}

// snapshot must be called with mu held.
func (h *stateHolder) snapshot() []func(ConnectionState) {
	ret := make([]func(ConnectionState), 0, len(h.observers))
	for _, o := range h.observers {
		ret = append(ret, o)
	}
	return ret
}
