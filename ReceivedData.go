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
	"unicode/utf8"
)

// ReceivedData is one message read from a connection.
type ReceivedData struct {
	data   []byte
	sender string
}

func newReceivedData(data []byte, sender string) ReceivedData {
	tmp := make([]byte, len(data))
	copy(tmp, data)
	return ReceivedData{data: tmp, sender: sender}
}

// Bytes returns a copy of the received bytes.
func (r ReceivedData) Bytes() []byte {
	tmp := make([]byte, len(r.data))
	copy(tmp, r.data)
	return tmp
}

// Len returns the number of received bytes.
func (r ReceivedData) Len() int {
	return len(r.data)
}

// Sender returns the remote address the data was read from.
func (r ReceivedData) Sender() string {
	return r.sender
}

// String decodes the data as ASCII. Bytes above 0x7F are shown as '?'.
func (r ReceivedData) String() string {
	tmp := make([]byte, len(r.data))
	for i, b := range r.data {
		if b > 0x7F {
			b = '?'
		}
		tmp[i] = b
	}
	return string(tmp)
}

// asciiBytes encodes text as ASCII. Runes outside ASCII are replaced with '?'.
func asciiBytes(text string) []byte {
	ret := make([]byte, 0, len(text))
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if r > 0x7F {
			r = '?'
		}
		ret = append(ret, byte(r))
	}
	return ret
}

// messageEmitter delivers received messages to its listeners.
// Nothing is replayed to late listeners.
type messageEmitter struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]func(ReceivedData)
}

func newMessageEmitter() *messageEmitter {
	return &messageEmitter{listeners: make(map[uint64]func(ReceivedData))}
}

// Subscribe adds listener and returns a function that removes it.
func (e *messageEmitter) Subscribe(listener func(ReceivedData)) Disposable {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = listener
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

func (e *messageEmitter) notify(msg ReceivedData) {
	e.mu.RLock()
	listeners := make([]func(ReceivedData), 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.RUnlock()
	for _, l := range listeners {
		l(msg)
	}
}

func (e *messageEmitter) dispose() {
	e.mu.Lock()
	clear(e.listeners)
	e.mu.Unlock()
}
