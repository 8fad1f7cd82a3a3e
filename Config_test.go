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

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = 4059
	require.NoError(t, cfg.Validate())

	for _, port := range []int{-1, 0, 65536} {
		c := cfg
		c.Port = port
		assert.True(t, errors.Is(c.Validate(), ErrInvalidArgument), "port %d", port)
	}
	c := cfg
	c.Address = " "
	assert.True(t, errors.Is(c.Validate(), ErrInvalidArgument))

	c = cfg
	c.Framing = FramingDelimiter
	assert.True(t, errors.Is(c.Validate(), ErrInvalidArgument))
	c.EOP = "\n"
	assert.NoError(t, c.Validate())

	c = cfg
	c.Protocol = NetworkType(7)
	assert.True(t, errors.Is(c.Validate(), ErrUnsupportedProtocol))
}

func TestConfigSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = "localhost"
	cfg.Port = 4061
	cfg.Protocol = NetworkTypeUDP
	cfg.UseIPv6 = true
	cfg.Framing = FramingDelimiter
	cfg.EOP = "\n"

	var read Config
	require.NoError(t, read.SetSettings(cfg.Settings()))
	assert.Equal(t, "localhost", read.Address)
	assert.Equal(t, 4061, read.Port)
	assert.Equal(t, NetworkTypeUDP, read.Protocol)
	assert.True(t, read.UseIPv6)
	assert.Equal(t, FramingDelimiter, read.Framing)

	assert.NoError(t, read.SetSettings(""))
	assert.Error(t, read.SetSettings("<Framing>unknown</Framing>"))
}

func TestWithDefaults(t *testing.T) {
	var empty *Config
	cfg := empty.withDefaults()
	assert.Equal(t, 1024, cfg.ReadBuffer)
	assert.Equal(t, 1000, cfg.Backlog)
	assert.Equal(t, NetworkTypeTCP, cfg.Protocol)

	custom := Config{ReadBuffer: 16}
	cfg = custom.withDefaults()
	assert.Equal(t, 16, cfg.ReadBuffer)
	assert.Equal(t, 64*1024, cfg.MaxFrame)
	assert.NotNil(t, cfg.logger())
}

func TestNetworkTypeParse(t *testing.T) {
	v, err := NetworkTypeParse("tcp")
	require.NoError(t, err)
	assert.Equal(t, NetworkTypeTCP, v)
	assert.Equal(t, "UDP", NetworkTypeUDP.String())
	assert.Equal(t, "tcp4", NetworkTypeTCP.network(false))
	assert.Equal(t, "udp6", NetworkTypeUDP.network(true))
	_, err = NetworkTypeParse("sctp")
	assert.Error(t, err)
}

func TestFramingParse(t *testing.T) {
	for _, f := range []Framing{FramingDrain, FramingLengthPrefix, FramingDelimiter} {
		got, err := FramingParse(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
}
