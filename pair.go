// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"fmt"
	"net/netip"
	"strings"
)

// Pair is a primary/secondary resolver address pair as applied to a network
// service. The roles are not interchangeable: (a, b) != (b, a).
type Pair struct {
	Primary   netip.Addr
	Secondary netip.Addr
}

// NewPair builds a Pair from two resolver address literals.
func NewPair(primary, secondary string) (Pair, error) {
	p, err := netip.ParseAddr(primary)
	if err != nil {
		return Pair{}, fmt.Errorf("invalid resolver address %q", primary)
	}
	s, err := netip.ParseAddr(secondary)
	if err != nil {
		return Pair{}, fmt.Errorf("invalid resolver address %q", secondary)
	}
	return Pair{Primary: p, Secondary: s}, nil
}

// ParsePair parses a "primary,secondary" resolver pair.
func ParsePair(val string) (Pair, error) {
	primary, secondary, ok := strings.Cut(val, ",")
	if !ok {
		return Pair{}, fmt.Errorf("expected primary,secondary resolver addresses, got %q", val)
	}
	return NewPair(strings.TrimSpace(primary), strings.TrimSpace(secondary))
}

func (p Pair) IsValid() bool {
	return p.Primary.IsValid() && p.Secondary.IsValid()
}

func (p Pair) String() string {
	return p.Primary.String() + ", " + p.Secondary.String()
}

func mustPair(primary, secondary string) Pair {
	return Pair{
		Primary:   netip.MustParseAddr(primary),
		Secondary: netip.MustParseAddr(secondary),
	}
}

// defaultCandidates is the built-in table of public resolver pairs the
// rotator chooses among. It is fixed at process start.
var defaultCandidates = []Pair{
	mustPair("1.1.1.1", "1.0.0.1"),               // Cloudflare
	mustPair("9.9.9.9", "149.112.112.112"),       // Quad9
	mustPair("208.67.222.222", "208.67.220.220"), // OpenDNS
	mustPair("64.6.64.6", "64.6.65.6"),           // Verisign
	mustPair("91.239.100.100", "89.233.43.71"),   // UncensoredDNS
	mustPair("185.228.168.9", "185.228.169.9"),   // CleanBrowsing
	mustPair("77.88.8.8", "77.88.8.1"),           // Yandex
	mustPair("176.103.130.130", "176.103.130.131"), // AdGuard
	mustPair("156.154.70.1", "156.154.71.1"),     // DNS Advantage
	mustPair("199.85.126.10", "199.85.127.10"),   // Norton
	mustPair("81.218.119.11", "209.88.198.133"),  // GreenTeam
	mustPair("195.46.39.39", "195.46.39.40"),     // SafeDNS
	mustPair("208.76.50.50", "208.76.51.51"),     // SmartViper
	mustPair("216.146.35.35", "216.146.36.36"),   // Dyn
	mustPair("37.235.1.174", "37.235.1.177"),     // FreeDNS
	mustPair("198.101.242.72", "23.253.163.53"),  // Alternate DNS
	mustPair("109.69.8.51", "8.8.8.8"),           // puntCAT
	mustPair("101.101.101.101", "101.102.103.104"), // Quad101
	mustPair("80.67.169.12", "80.67.169.40"),     // FDN
	mustPair("185.121.177.177", "185.121.177.53"), // OpenNIC
	mustPair("195.10.46.179", "212.82.225.7"),    // AS250.net
	mustPair("194.168.4.100", "194.168.8.100"),   // Orange
	mustPair("203.122.222.6", "203.122.223.6"),   // SingNet
	mustPair("209.244.0.3", "209.244.0.4"),       // Level3
	mustPair("8.8.8.8", "8.8.4.4"),               // Google
}

// DefaultCandidates returns a copy of the built-in resolver pair table.
func DefaultCandidates() []Pair {
	c := make([]Pair, len(defaultCandidates))
	copy(c, defaultCandidates)
	return c
}

// FallbackPair is applied when no candidate probes healthy.
func FallbackPair() Pair {
	return defaultCandidates[0]
}
