// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package netconfig

import (
	"context"
	"strings"

	"github.com/dnsrotate/dnsrotate/log"
)

// FallbackService is managed when no network service can be detected.
const FallbackService = "Wi-Fi"

// DetectService finds the network service to manage: the first enabled
// service, the default-route interface as a fallback, and FallbackService
// as a last resort.
func DetectService(ctx context.Context, c Configurator, logger log.Logger) string {
	if logger == nil {
		logger = log.NopLogger
	}

	services, err := c.ListServices(ctx)
	if err != nil {
		logger.Debugf("list network services: %v", err)
	}

	var active []string
	for _, s := range services {
		ok, err := c.ServiceEnabled(ctx, s)
		if err != nil {
			logger.Debugf("check network service %q: %v", s, err)
			continue
		}
		if ok {
			active = append(active, s)
		}
	}

	if len(active) > 0 {
		if len(active) > 1 {
			logger.Warnf("multiple active network services detected: %s, using %q, override with --interface",
				strings.Join(active, ", "), active[0])
		} else {
			logger.Infof("detected active network service: %s", active[0])
		}
		return active[0]
	}

	if iface, err := c.DefaultRouteInterface(ctx); err == nil && iface != "" {
		logger.Infof("detected interface via default route: %s", iface)
		return iface
	}

	logger.Warnf("could not detect a network service, defaulting to %q, override with --interface", FallbackService)
	return FallbackService
}
