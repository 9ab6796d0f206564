// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"context"
	"net/netip"
	"time"

	"github.com/dnsrotate/dnsrotate/log"
)

// DefaultHealthTTL bounds the staleness of cached probe results.
const DefaultHealthTTL = 30 * time.Minute

// ProbeFunc reports whether a single resolver address is responsive.
type ProbeFunc func(ctx context.Context, addr netip.Addr) bool

// HealthChecker caches which candidate resolver pairs are currently
// reachable. It is a read-through cache: a lookup past the TTL, or a forced
// one, triggers a full probe pass over the candidate list. A pair is healthy
// when either of its members answers, a pair still functions with one live
// member.
type HealthChecker struct {
	candidates []Pair
	probe      ProbeFunc
	ttl        time.Duration
	logger     log.Logger

	// now is the clock, overridable in tests.
	now func() time.Time
	// onProbe, when set, observes every probe result.
	onProbe func(healthy bool)

	healthy     map[Pair]struct{}
	lastRefresh time.Time
}

func NewHealthChecker(candidates []Pair, probe ProbeFunc, ttl time.Duration, logger log.Logger) *HealthChecker {
	if ttl <= 0 {
		ttl = DefaultHealthTTL
	}
	if logger == nil {
		logger = log.NopLogger
	}
	return &HealthChecker{
		candidates: candidates,
		probe:      probe,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Healthy returns the set of candidate pairs currently considered reachable,
// refreshing the cache when forced, never populated, or older than the TTL.
// The returned map is owned by the checker and must not be mutated.
func (h *HealthChecker) Healthy(ctx context.Context, forceRefresh bool) map[Pair]struct{} {
	if forceRefresh || h.expired() {
		h.logger.Infof("refreshing resolver health cache")
		h.healthy = h.validate(ctx)
		h.lastRefresh = h.now()
	}
	return h.healthy
}

func (h *HealthChecker) expired() bool {
	return h.lastRefresh.IsZero() || h.now().Sub(h.lastRefresh) > h.ttl
}

// validate probes both members of every candidate pair, serially, each probe
// bounded by its own timeout.
func (h *HealthChecker) validate(ctx context.Context) map[Pair]struct{} {
	healthy := make(map[Pair]struct{}, len(h.candidates))

	for _, p := range h.candidates {
		primaryOK := h.runProbe(ctx, p.Primary)
		secondaryOK := h.runProbe(ctx, p.Secondary)

		switch {
		case primaryOK && secondaryOK:
			h.logger.Debugf("healthy: %s", p)
		case primaryOK || secondaryOK:
			h.logger.Debugf("partial: %s", p)
		default:
			h.logger.Debugf("unreachable: %s", p)
			continue
		}
		healthy[p] = struct{}{}
	}

	h.logger.Infof("resolver health check complete: %d/%d pairs healthy", len(healthy), len(h.candidates))
	return healthy
}

func (h *HealthChecker) runProbe(ctx context.Context, addr netip.Addr) bool {
	ok := h.probe(ctx, addr)
	if h.onProbe != nil {
		h.onProbe(ok)
	}
	return ok
}
