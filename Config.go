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
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// Config holds the connection settings shared by Client, Server and Connection.
type Config struct {
	// Address is the host name or IP address to connect to or listen on.
	Address  string
	Port     int
	Protocol NetworkType
	// UseIPv6 defines if IPv6 is used. Default is false (IPv4).
	UseIPv6 bool

	// ConnectTimeout bounds the dial. Zero waits until the context ends.
	ConnectTimeout time.Duration
	// WriteTimeout bounds each socket write. Zero means no deadline.
	WriteTimeout time.Duration

	// ReadBuffer is the size of a single socket read.
	ReadBuffer int
	// Backlog is the requested listen backlog.
	Backlog int
	// SendQueue is the number of outgoing messages buffered per connection.
	SendQueue int
	// MaxFrame is the largest message that can be received. With FramingDrain
	// a longer burst is delivered in MaxFrame sized messages.
	MaxFrame int

	Framing Framing
	// EOP is the end of packet marker used with FramingDelimiter.
	EOP any

	// Trace selects which sent and received data is traced.
	Trace    gxcommon.TraceLevel
	Language language.Tag
	Logger   logrus.FieldLogger
}

// DefaultConfig returns the default settings for TCP connections.
func DefaultConfig() Config {
	return Config{
		Protocol:       NetworkTypeTCP,
		ConnectTimeout: 10 * time.Second,
		ReadBuffer:     1024,
		Backlog:        1000,
		SendQueue:      256,
		MaxFrame:       64 * 1024,
		Framing:        FramingDrain,
		Language:       language.AmericanEnglish,
	}
}

// String returns address and port.
func (c *Config) String() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// Validate checks that the required fields are set.
func (c *Config) Validate() error {
	if err := validateEndpoint(c.Address, c.Port, c.Protocol); err != nil {
		return err
	}
	return c.validateBuffers()
}

func (c *Config) validateBuffers() error {
	if c.ReadBuffer <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "read buffer %d", c.ReadBuffer)
	}
	if c.MaxFrame <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "max frame %d", c.MaxFrame)
	}
	if c.SendQueue < 0 {
		return errors.Wrapf(ErrInvalidArgument, "send queue %d", c.SendQueue)
	}
	if c.Framing == FramingDelimiter && c.EOP == nil {
		return errors.Wrap(ErrInvalidArgument, "delimiter framing without end of packet marker")
	}
	return nil
}

// withDefaults returns a copy where unset values are replaced with defaults.
func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	var ret Config
	if c != nil {
		ret = *c
	} else {
		ret = def
	}
	if ret.ReadBuffer == 0 {
		ret.ReadBuffer = def.ReadBuffer
	}
	if ret.Backlog == 0 {
		ret.Backlog = def.Backlog
	}
	if ret.MaxFrame == 0 {
		ret.MaxFrame = def.MaxFrame
	}
	if ret.SendQueue == 0 {
		ret.SendQueue = def.SendQueue
	}
	if ret.Language == language.Und {
		ret.Language = def.Language
	}
	return &ret
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger().WithField("prefix", "gxsocket")
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// Settings returns the configuration as XML elements.
func (c *Config) Settings() string {
	var b strings.Builder
	if c.Address != "" {
		fmt.Fprintf(&b, "<IP>%s</IP>\n", xmlEscape(c.Address))
	}
	if c.Port != 0 {
		fmt.Fprintf(&b, "<Port>%d</Port>\n", c.Port)
	}
	if c.Protocol != NetworkTypeTCP {
		fmt.Fprintf(&b, "<Protocol>%d</Protocol>\n", int(c.Protocol))
	}
	if c.UseIPv6 {
		b.WriteString("<IPv6>1</IPv6>\n")
	}
	if c.Framing != FramingDrain {
		fmt.Fprintf(&b, "<Framing>%s</Framing>\n", c.Framing.String())
	}
	if s, ok := c.EOP.(string); ok && s != "" {
		fmt.Fprintf(&b, "<EOP>%s</EOP>\n", xmlEscape(s))
	}
	if c.Trace != 0 {
		fmt.Fprintf(&b, "<Trace>%s</Trace>\n", c.Trace.String())
	}
	return b.String()
}

// SetSettings reads XML elements written by Settings.
// Unknown elements are ignored.
func (c *Config) SetSettings(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	dec := xml.NewDecoder(strings.NewReader("<root>" + value + "</root>"))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "settings")
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local == "root" {
			continue
		}
		var v string
		if err := dec.DecodeElement(&v, &se); err != nil {
			return errors.Wrapf(err, "settings element %s", se.Name.Local)
		}
		v = strings.TrimSpace(v)
		switch se.Name.Local {
		case "Protocol":
			if n, err := strconv.Atoi(v); err == nil {
				c.Protocol = NetworkType(n)
			}
		case "Port":
			if n, err := strconv.Atoi(v); err == nil {
				c.Port = n
			}
		case "IP":
			c.Address = v
		case "IPv6":
			c.UseIPv6 = v == "1"
		case "Framing":
			f, err := FramingParse(v)
			if err != nil {
				return err
			}
			c.Framing = f
		case "EOP":
			c.EOP = v
		case "Trace":
			t, err := gxcommon.TraceLevelParse(v)
			if err != nil {
				return errors.Wrap(err, "settings trace")
			}
			c.Trace = t
		}
	}
	return nil
}

// FramingParse converts the given string into a Framing value.
func FramingParse(value string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "drain":
		return FramingDrain, nil
	case "lengthprefix", "length":
		return FramingLengthPrefix, nil
	case "delimiter", "eop":
		return FramingDelimiter, nil
	}
	return FramingDrain, fmt.Errorf("%w: %q", gxcommon.ErrUnknownEnum, value)
}
