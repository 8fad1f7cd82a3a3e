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

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainFramerFlushesWhenNothingPending(t *testing.T) {
	f := NewDrainFramer(64)
	frames, err := f.Decode([]byte("hello "), 5)
	require.NoError(t, err)
	assert.Empty(t, frames)

	frames, err = f.Decode([]byte("world"), 0)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "hello world", string(frames[0]))

	frames, err = f.Decode([]byte("next"), 0)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "next", string(frames[0]))
	assert.Equal(t, []byte("raw"), f.Encode([]byte("raw")))
}

func TestDrainFramerFlushesWhenFull(t *testing.T) {
	f := NewDrainFramer(8)
	frames, err := f.Decode([]byte("12345"), 10)
	require.NoError(t, err)
	assert.Empty(t, frames)

	// Buffer is full before the socket drains.
	frames, err = f.Decode([]byte("67890"), 5)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("12345")}, frames)

	frames, err = f.Decode([]byte("ab"), 0)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("67890ab")}, frames)

	// A chunk larger than the buffer is passed through.
	f = NewDrainFramer(4)
	frames, err = f.Decode([]byte("123456"), 0)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("123456")}, frames)

	f.Reset()
	frames, err = f.Decode([]byte("1234"), 0)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("1234")}, frames)
}

func TestLengthPrefixFramerSplitsAndJoins(t *testing.T) {
	f := NewLengthPrefixFramer(1024)
	stream := append(f.Encode([]byte("first")), f.Encode([]byte("second"))...)
	stream = append(stream, f.Encode(nil)...)

	var got []string
	// Feed the stream in 3 byte chunks.
	for i := 0; i < len(stream); i += 3 {
		end := min(i+3, len(stream))
		frames, err := f.Decode(stream[i:end], 0)
		require.NoError(t, err)
		for _, fr := range frames {
			got = append(got, string(fr))
		}
	}
	assert.Equal(t, []string{"first", "second", ""}, got)
}

func TestLengthPrefixFramerRejectsLargeHeader(t *testing.T) {
	f := NewLengthPrefixFramer(4)
	_, err := f.Decode([]byte{0, 0, 0, 5, 1}, 0)
	assert.True(t, errors.Is(err, ErrFrameTooLarge))
}

func TestDelimiterFramer(t *testing.T) {
	f, err := NewDelimiterFramer("\r\n", 64)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping\r\n"), f.Encode([]byte("ping")))

	frames, err := f.Decode([]byte("one\r\ntw"), 0)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("one")}, frames)

	frames, err = f.Decode([]byte("o\r"), 0)
	require.NoError(t, err)
	assert.Empty(t, frames)

	frames, err = f.Decode([]byte("\nthree\r\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("two"), []byte("three")}, frames)
}

func TestNewFramerFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Framing = FramingDelimiter
	cfg.EOP = byte(0x7E)
	f, err := newFramer(&cfg)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0x7E}, f.Encode([]byte{1}))

	cfg.Framing = Framing(42)
	_, err = newFramer(&cfg)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
