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
	"bytes"
	"encoding/binary"

	"github.com/Gurux/gxcommon-go"
	"github.com/pkg/errors"
	"github.com/smallnest/ringbuffer"
)

// Framing selects how the byte stream is split into messages.
type Framing int

const (
	// FramingDrain flushes a message when the socket has no more pending bytes.
	FramingDrain Framing = iota
	// FramingLengthPrefix prefixes every message with a 4 byte big-endian length.
	FramingLengthPrefix
	// FramingDelimiter ends every message with the EOP marker.
	FramingDelimiter
)

// String returns the canonical name of the framing.
func (f Framing) String() string {
	switch f {
	case FramingDrain:
		return "Drain"
	case FramingLengthPrefix:
		return "LengthPrefix"
	case FramingDelimiter:
		return "Delimiter"
	}
	return ""
}

// Framer converts between application messages and the byte stream.
//
// Decode consumes one chunk read from the socket. pending is the number of
// bytes the socket still has queued after the read. Partial frames are kept
// until the next call.
type Framer interface {
	Encode(payload []byte) []byte
	Decode(chunk []byte, pending int) ([][]byte, error)
	Reset()
}

// accumulator is a bounded buffer for partially received frames.
type accumulator struct {
	buf *ringbuffer.RingBuffer
}

func newAccumulator(max int) accumulator {
	return accumulator{buf: ringbuffer.New(max)}
}

func (a accumulator) write(chunk []byte) error {
	if len(chunk) > a.buf.Free() {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes buffered, %d received, limit %d",
			a.buf.Length(), len(chunk), a.buf.Capacity())
	}
	_, err := a.buf.Write(chunk)
	return err
}

func (a accumulator) read(count int) ([]byte, error) {
	ret := make([]byte, count)
	if count == 0 {
		return ret, nil
	}
	n, err := a.buf.Read(ret)
	if err != nil {
		return nil, err
	}
	return ret[:n], nil
}

func (a accumulator) drain() ([]byte, error) {
	return a.read(a.buf.Length())
}

type drainFramer struct {
	acc accumulator
}

// NewDrainFramer returns the compatibility framer. Everything read until the
// socket reports no pending bytes forms one message, so one large message can
// be split and back-to-back messages can be merged. When max bytes are
// buffered before the socket drains, the buffered bytes are delivered as one
// message and reading continues.
func NewDrainFramer(max int) Framer {
	return &drainFramer{acc: newAccumulator(max)}
}

func (f *drainFramer) Encode(payload []byte) []byte {
	return payload
}

func (f *drainFramer) Decode(chunk []byte, pending int) ([][]byte, error) {
	var frames [][]byte
	if len(chunk) > f.acc.buf.Free() {
		frame, err := f.acc.drain()
		if err != nil {
			return nil, err
		}
		if len(frame) != 0 {
			frames = append(frames, frame)
		}
		if len(chunk) > f.acc.buf.Capacity() {
			frames = append(frames, append([]byte(nil), chunk...))
			chunk = nil
		}
	}
	if len(chunk) != 0 {
		if err := f.acc.write(chunk); err != nil {
			return frames, err
		}
	}
	if pending > 0 || f.acc.buf.IsEmpty() {
		return frames, nil
	}
	frame, err := f.acc.drain()
	if err != nil {
		return frames, err
	}
	return append(frames, frame), nil
}

func (f *drainFramer) Reset() {
	f.acc.buf.Reset()
}

const lengthHeaderSize = 4

type lengthPrefixFramer struct {
	acc      accumulator
	max      int
	expected int
}

// NewLengthPrefixFramer returns a framer where every message starts with its
// length as a 4 byte big-endian integer.
func NewLengthPrefixFramer(max int) Framer {
	return &lengthPrefixFramer{acc: newAccumulator(max + lengthHeaderSize), max: max, expected: -1}
}

func (f *lengthPrefixFramer) Encode(payload []byte) []byte {
	ret := make([]byte, lengthHeaderSize+len(payload))
	binary.BigEndian.PutUint32(ret, uint32(len(payload)))
	copy(ret[lengthHeaderSize:], payload)
	return ret
}

func (f *lengthPrefixFramer) Decode(chunk []byte, _ int) ([][]byte, error) {
	if err := f.acc.write(chunk); err != nil {
		return nil, err
	}
	var frames [][]byte
	for {
		if f.expected < 0 {
			if f.acc.buf.Length() < lengthHeaderSize {
				return frames, nil
			}
			header, err := f.acc.read(lengthHeaderSize)
			if err != nil {
				return frames, err
			}
			size := int(binary.BigEndian.Uint32(header))
			if size > f.max {
				return frames, errors.Wrapf(ErrFrameTooLarge, "length header %d, limit %d", size, f.max)
			}
			f.expected = size
		}
		if f.acc.buf.Length() < f.expected {
			return frames, nil
		}
		frame, err := f.acc.read(f.expected)
		if err != nil {
			return frames, err
		}
		f.expected = -1
		frames = append(frames, frame)
	}
}

func (f *lengthPrefixFramer) Reset() {
	f.acc.buf.Reset()
	f.expected = -1
}

type delimiterFramer struct {
	acc accumulator
	eop []byte
}

// NewDelimiterFramer returns a framer that ends every message with eop.
// eop can be a byte, a string or a byte slice.
func NewDelimiterFramer(eop any, max int) (Framer, error) {
	tmp, err := gxcommon.ToBytes(eop, binary.BigEndian)
	if err != nil {
		return nil, err
	}
	if len(tmp) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "end of packet marker is empty")
	}
	return &delimiterFramer{acc: newAccumulator(max + len(tmp)), eop: tmp}, nil
}

func (f *delimiterFramer) Encode(payload []byte) []byte {
	ret := make([]byte, 0, len(payload)+len(f.eop))
	ret = append(ret, payload...)
	return append(ret, f.eop...)
}

func (f *delimiterFramer) Decode(chunk []byte, _ int) ([][]byte, error) {
	if err := f.acc.write(chunk); err != nil {
		return nil, err
	}
	if !bytes.Contains(chunk, f.eop[len(f.eop)-1:]) {
		return nil, nil
	}
	data, err := f.acc.drain()
	if err != nil {
		return nil, err
	}
	var frames [][]byte
	for {
		pos := bytes.Index(data, f.eop)
		if pos < 0 {
			break
		}
		frames = append(frames, data[:pos])
		data = data[pos+len(f.eop):]
	}
	if len(data) != 0 {
		if err := f.acc.write(data); err != nil {
			return frames, err
		}
	}
	return frames, nil
}

func (f *delimiterFramer) Reset() {
	f.acc.buf.Reset()
}

// newFramer creates the framer selected in the configuration.
func newFramer(cfg *Config) (Framer, error) {
	switch cfg.Framing {
	case FramingDrain:
		return NewDrainFramer(cfg.MaxFrame), nil
	case FramingLengthPrefix:
		return NewLengthPrefixFramer(cfg.MaxFrame), nil
	case FramingDelimiter:
		return NewDelimiterFramer(cfg.EOP, cfg.MaxFrame)
	}
	return nil, errors.Wrapf(ErrInvalidArgument, "unknown framing %d", int(cfg.Framing))
}
