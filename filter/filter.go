// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package filter implements the packet-acceptance grammar and matcher
// described in the project's capture-file specification: a compact
// textual filter over {ICMP, TCP, UDP, source/destination port ranges}
// that decides, per IPv4 datagram, whether a captured frame should be
// retained.
package filter

import (
	"fmt"
)

// Filter holds the per-protocol port acceptance tables produced by
// Parse and matches them against IPv4 datagrams during capture.
//
// The zero value is a usable, empty Filter: Match accepts everything
// until Parse installs at least one rule.
type Filter struct {
	enabled bool
	icmp    bool
	tcp     [maxPort + 1]portPair
	udp     [maxPort + 1]portPair
}

type portPair struct {
	src bool
	dst bool
}

const maxPort = 65535

// ParseError reports where in the filter expression parsing failed.
type ParseError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filter: invalid expression %q at byte %d: %s", e.Expr, e.Pos, e.Msg)
}

// Enabled reports whether Parse has installed at least one rule.
func (f *Filter) Enabled() bool {
	return f.enabled
}

// Parse compiles a filter expression into the receiver's port tables.
// On failure the receiver is left empty (as if never parsed), matching
// the "leave the filter empty, not partially parsed" rule.
func (f *Filter) Parse(expr string) error {
	p := &parser{f: f, expr: expr}
	if err := p.run(); err != nil {
		*f = Filter{}
		return err
	}
	f.enabled = true
	return nil
}

// Match decides whether an IPv4 datagram should be retained. ipHeader
// is the captured IP packet starting at its IPv4 header: the first
// ipHeaderLen bytes are the header plus any IP options, and the TCP or
// UDP ports are read from the bytes that follow them in the same
// slice. ipTotalLen is the total length of the IP packet (header +
// payload) as actually captured.
func (f *Filter) Match(ipHeader []byte, ipHeaderLen, ipTotalLen int) bool {
	if !f.enabled {
		return true
	}
	if len(ipHeader) < 20 || ipHeaderLen < 20 || ipHeaderLen > len(ipHeader) {
		return false
	}

	proto := ipHeader[9]
	switch proto {
	case protoICMP:
		return f.icmp
	case protoTCP:
		const minTCPHeader = 20
		if ipTotalLen < ipHeaderLen+minTCPHeader {
			return false
		}
		if len(ipHeader) < ipHeaderLen+minTCPHeader {
			return false
		}
		tcpHdr := ipHeader[ipHeaderLen:]
		dataOffset := int(tcpHdr[12]>>4) * 4
		if ipTotalLen < ipHeaderLen+dataOffset {
			return false
		}
		sport := int(tcpHdr[0])<<8 | int(tcpHdr[1])
		dport := int(tcpHdr[2])<<8 | int(tcpHdr[3])
		return f.tcp[sport].src || f.tcp[dport].dst
	case protoUDP:
		const udpHeader = 8
		if ipTotalLen < ipHeaderLen+udpHeader {
			return false
		}
		if len(ipHeader) < ipHeaderLen+udpHeader {
			return false
		}
		udpHdr := ipHeader[ipHeaderLen:]
		sport := int(udpHdr[0])<<8 | int(udpHdr[1])
		dport := int(udpHdr[2])<<8 | int(udpHdr[3])
		return f.udp[sport].src || f.udp[dport].dst
	default:
		return false
	}
}

const (
	protoICMP = 0x01
	protoTCP  = 0x06
	protoUDP  = 0x11
)

// String renders the currently-installed rules for diagnostic logging.
// It is never consulted by Match.
func (f *Filter) String() string {
	if !f.enabled {
		return "<no filter, accept all>"
	}
	s := ""
	if f.icmp {
		s += "icmp "
	}
	s += fmt.Sprintf("tcp-ports=%d udp-ports=%d", countAccepted(f.tcp[:]), countAccepted(f.udp[:]))
	return s
}

func countAccepted(ports []portPair) int {
	n := 0
	for _, p := range ports {
		if p.src || p.dst {
			n++
		}
	}
	return n
}
