// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package netconfig reads and writes the operating system resolver
// configuration. All operations shell out to the platform network tools with
// bounded timeouts; the package never serves or forwards DNS traffic itself.
package netconfig

import (
	"context"
	"net/netip"
)

// Configurator is the boundary to the OS network configuration.
type Configurator interface {
	// ListServices enumerates the configured network services.
	ListServices(ctx context.Context) ([]string, error)
	// ServiceEnabled reports whether a network service is administratively enabled.
	ServiceEnabled(ctx context.Context, service string) (bool, error)
	// DefaultRouteInterface returns the interface carrying the default route.
	DefaultRouteInterface(ctx context.Context) (string, error)
	// GetDNS returns the resolver addresses configured on a service.
	// An automatic (DHCP) configuration yields an empty slice.
	GetDNS(ctx context.Context, service string) ([]netip.Addr, error)
	// SetDNS configures explicit resolver addresses on a service.
	SetDNS(ctx context.Context, service string, addrs ...netip.Addr) error
	// ClearDNS restores automatic (DHCP) resolver configuration on a service.
	ClearDNS(ctx context.Context, service string) error
	// VPNActive reports whether a VPN-class interface is up.
	VPNActive(ctx context.Context) (bool, error)
}
