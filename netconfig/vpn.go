// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package netconfig

import (
	"context"
	"strings"
)

// vpnPrefixes are the interface naming conventions of tunnel, point-to-point,
// IPsec and WireGuard interfaces.
var vpnPrefixes = []string{"utun", "ppp", "tun", "tap", "ipsec", "wg"}

func (n *NetworkSetup) VPNActive(ctx context.Context) (bool, error) {
	out, err := n.exec(ctx, "ifconfig")
	if err != nil {
		return false, err
	}
	return vpnInterfaceUp(out), nil
}

// vpnInterfaceUp scans ifconfig output for a VPN-class interface whose flags
// mark it administratively up. Down utun interfaces left behind by iCloud or
// developer tools do not count.
func vpnInterfaceUp(out string) bool {
	for _, line := range strings.Split(out, "\n") {
		// Interface header lines start at column zero.
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		name, rest, ok := strings.Cut(line, ":")
		if !ok || !hasVPNPrefix(name) {
			continue
		}
		if interfaceUp(rest) {
			return true
		}
	}
	return false
}

func hasVPNPrefix(name string) bool {
	for _, p := range vpnPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// interfaceUp reports whether an ifconfig header line carries the UP flag,
// e.g. "flags=8051<UP,POINTOPOINT,RUNNING,MULTICAST> mtu 1380".
func interfaceUp(header string) bool {
	_, flags, ok := strings.Cut(header, "flags=")
	if !ok {
		return false
	}
	start := strings.IndexByte(flags, '<')
	end := strings.IndexByte(flags, '>')
	if start < 0 || end < start {
		return false
	}
	for _, f := range strings.Split(flags[start+1:end], ",") {
		if f == "UP" {
			return true
		}
	}
	return false
}
