// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/dnsrotate/dnsrotate/log"
	"github.com/miekg/dns"
)

// DefaultProbeTimeout bounds a single resolver liveness check.
const DefaultProbeTimeout = 2 * time.Second

const (
	// probeID is the fixed transaction id of the liveness query.
	probeID = 0xabcd
	// probeDomain is the question name of the liveness query.
	probeDomain = "google.com."

	maxProbeReply = 512
	minProbeReply = 12 // DNS header
)

// Prober judges resolver liveness with a single DNS query over UDP.
type Prober struct {
	timeout time.Duration
	logger  log.Logger

	// port is the resolver port, overridable in tests.
	port uint16
}

func NewProber(timeout time.Duration, logger log.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = log.NopLogger
	}
	return &Prober{
		timeout: timeout,
		logger:  logger,
		port:    53,
	}
}

// probeQuery packs the liveness query: transaction id 0xABCD, recursion
// desired, a single A/IN question for google.com.
func probeQuery() ([]byte, error) {
	m := new(dns.Msg)
	m.Id = probeID
	m.RecursionDesired = true
	m.Question = []dns.Question{{
		Name:   probeDomain,
		Qtype:  dns.TypeA,
		Qclass: dns.ClassINET,
	}}
	return m.Pack()
}

// IsResponsive reports whether the resolver at addr answers the liveness
// query with a well-formed DNS response within the probe timeout. It never
// returns an error: a timeout, socket error or malformed reply all mean the
// resolver is not responsive.
func (p *Prober) IsResponsive(ctx context.Context, addr netip.Addr) bool {
	query, err := probeQuery()
	if err != nil {
		p.logger.Errorf("pack probe query: %v", err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", netip.AddrPortFrom(addr, p.port).String())
	if err != nil {
		p.logger.Debugf("probe %s: dial: %v", addr, err)
		return false
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(p.timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		p.logger.Debugf("probe %s: set deadline: %v", addr, err)
		return false
	}

	if _, err := conn.Write(query); err != nil {
		p.logger.Debugf("probe %s: send: %v", addr, err)
		return false
	}

	reply := make([]byte, maxProbeReply)
	n, err := conn.Read(reply)
	if err != nil {
		p.logger.Debugf("probe %s: receive: %v", addr, err)
		return false
	}

	return validProbeReply(reply[:n])
}

// validProbeReply checks that a datagram is an answer to the probe query:
// a full DNS header, the transaction id we sent, and the QR bit set.
// Stray UDP traffic or a non-DNS service bound to port 53 fails these checks.
func validProbeReply(b []byte) bool {
	if len(b) < minProbeReply {
		return false
	}
	if b[0] != probeID>>8 || b[1] != probeID&0xff {
		return false
	}
	// QR is the most significant bit of the third header byte.
	return b[2]&0x80 != 0
}
