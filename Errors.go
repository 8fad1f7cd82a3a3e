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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument is returned synchronously when an address or port is rejected.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedProtocol is returned when the protocol cannot be used for the operation.
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	// ErrNotConnected is reported when data is written to a closed connection.
	ErrNotConnected = errors.New("not connected")
	// ErrFrameTooLarge is reported when a frame does not fit into the receive buffer.
	ErrFrameTooLarge = errors.New("frame too large")
)

// validateEndpoint checks the address and the port before any socket is created.
// Port must be in range (0, 65535].
func validateEndpoint(address string, port int, protocol NetworkType) error {
	if strings.TrimSpace(address) == "" {
		return errors.Wrap(ErrInvalidArgument, "address is empty")
	}
	if port <= 0 || port > 65535 {
		return errors.Wrapf(ErrInvalidArgument, "port %d is out of range", port)
	}
	if !protocol.valid() {
		return errors.Wrapf(ErrUnsupportedProtocol, "protocol %d", int(protocol))
	}
	return nil
}

func joinHostPort(address string, port int) string {
	return net.JoinHostPort(address, strconv.Itoa(port))
}
