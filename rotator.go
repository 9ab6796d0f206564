// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/dnsrotate/dnsrotate/log"
	"github.com/dnsrotate/dnsrotate/netconfig"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MinInterval and MaxInterval bound the rotation interval. Rotating
	// faster than MinInterval destabilizes the network stack.
	MinInterval = 180 * time.Second
	MaxInterval = 24 * time.Hour

	DefaultInterval = 5 * time.Minute
)

// ErrNoAlternative is reported by RotateOnce when only the currently applied
// pair is healthy. The caller should skip the cycle, not treat it as fatal.
var ErrNoAlternative = errors.New("no alternative resolver pair available")

// RotatorConfig configures a Rotator.
type RotatorConfig struct {
	// Interface is the network service whose resolvers are managed.
	Interface string
	// Interval between rotations, clamped to [MinInterval, MaxInterval].
	Interval time.Duration
	// ProbeTimeout bounds a single resolver liveness probe.
	ProbeTimeout time.Duration
	// HealthTTL bounds the staleness of cached probe results.
	HealthTTL time.Duration
	// Candidates is the resolver pair table to rotate among.
	// Empty means the built-in table.
	Candidates []Pair

	PromRegistry  prometheus.Registerer
	PromNamespace string
}

func DefaultRotatorConfig() *RotatorConfig {
	return &RotatorConfig{
		Interval:     DefaultInterval,
		ProbeTimeout: DefaultProbeTimeout,
		HealthTTL:    DefaultHealthTTL,
		Candidates:   DefaultCandidates(),
	}
}

// Rotator is the rotation controller. It owns the rotation timer and the
// paused/active state, watches for resolver drift and VPN presence, and
// applies newly selected pairs through the OS configurator.
//
// A Rotator is driven by a single goroutine, its state needs no locking.
type Rotator struct {
	iface    string
	interval time.Duration
	nc       netconfig.Configurator
	sel      *Selector
	logger   log.Logger

	// current is the last pair this rotator applied, nil before the first
	// successful apply. It is never updated speculatively.
	current *Pair
	paused  bool

	metrics *rotatorMetrics
}

func NewRotator(cfg *RotatorConfig, nc netconfig.Configurator, logger log.Logger) (*Rotator, error) {
	if nc == nil {
		return nil, errors.New("network configurator is required")
	}
	if cfg.Interface == "" {
		return nil, errors.New("network interface is required")
	}
	if logger == nil {
		logger = log.NopLogger
	}

	interval := cfg.Interval
	switch {
	case interval < MinInterval:
		logger.Warnf("interval %s is too short, using minimum %s", interval, MinInterval)
		interval = MinInterval
	case interval > MaxInterval:
		logger.Warnf("interval %s exceeds maximum, using maximum %s", interval, MaxInterval)
		interval = MaxInterval
	}

	candidates := cfg.Candidates
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}

	m := newRotatorMetrics(cfg.PromNamespace)
	if cfg.PromRegistry != nil {
		if err := m.register(cfg.PromRegistry); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	prober := NewProber(cfg.ProbeTimeout, logger)
	health := NewHealthChecker(candidates, prober.IsResponsive, cfg.HealthTTL, logger)
	health.onProbe = m.observeProbe

	return &Rotator{
		iface:    cfg.Interface,
		interval: interval,
		nc:       nc,
		sel:      NewSelector(health, logger),
		logger:   logger,
		metrics:  m,
	}, nil
}

// Interval returns the effective rotation interval after clamping.
func (r *Rotator) Interval() time.Duration {
	return r.interval
}

// Current returns the resolver pair the OS currently reports for the managed
// interface. A single configured address is reported as both members.
func (r *Rotator) Current(ctx context.Context) (Pair, bool) {
	addrs, err := r.nc.GetDNS(ctx, r.iface)
	if err != nil {
		r.logger.Debugf("read resolvers on %s: %v", r.iface, err)
		return Pair{}, false
	}
	return pairFromAddrs(addrs)
}

func pairFromAddrs(addrs []netip.Addr) (Pair, bool) {
	switch len(addrs) {
	case 0:
		return Pair{}, false
	case 1:
		return Pair{Primary: addrs[0], Secondary: addrs[0]}, true
	default:
		return Pair{Primary: addrs[0], Secondary: addrs[1]}, true
	}
}

// Set applies an explicit resolver pair and remembers it on success.
func (r *Rotator) Set(ctx context.Context, p Pair) error {
	if !p.IsValid() {
		return fmt.Errorf("invalid resolver pair %s", p)
	}

	if err := r.nc.SetDNS(ctx, r.iface, p.Primary, p.Secondary); err != nil {
		r.metrics.failures.Inc()
		return fmt.Errorf("set resolvers on %s: %w", r.iface, err)
	}

	cur := p
	r.current = &cur
	r.logger.Infof("resolvers on %s changed to %s", r.iface, p)
	return nil
}

// Reset restores automatic (DHCP) resolver configuration.
func (r *Rotator) Reset(ctx context.Context) error {
	if err := r.nc.ClearDNS(ctx, r.iface); err != nil {
		r.metrics.failures.Inc()
		return fmt.Errorf("reset resolvers on %s: %w", r.iface, err)
	}

	r.current = nil
	r.logger.Infof("resolvers on %s reset to automatic", r.iface)
	return nil
}

// RotateOnce selects a healthy pair other than the current one and applies
// it. It returns ErrNoAlternative when selection is exhausted.
func (r *Rotator) RotateOnce(ctx context.Context) error {
	p, ok := r.sel.Choose(ctx, r.current)
	if !ok {
		return ErrNoAlternative
	}

	if err := r.Set(ctx, p); err != nil {
		return err
	}

	r.metrics.rotations.Inc()
	return nil
}

// Run rotates continuously until ctx is canceled. An immediate rotation is
// performed before the first tick so a fresh instance does not idle for a
// full interval. Rotation pauses while an external actor owns the resolver
// configuration and resumes once it matches the last applied pair again.
func (r *Rotator) Run(ctx context.Context) error {
	r.logger.Infof("starting resolver rotation on %s every %s", r.iface, r.interval)

	if err := r.RotateOnce(ctx); err != nil {
		r.logRotateErr(err)
	}

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Infof("resolver rotation stopped")
			return nil
		case <-t.C:
			r.tick(ctx)
		}
	}
}

// tick evaluates one drift/VPN observation and, when active, rotates.
func (r *Rotator) tick(ctx context.Context) {
	if r.drifted(ctx) {
		if !r.paused {
			if vpn, err := r.nc.VPNActive(ctx); err == nil && vpn {
				r.logger.Warnf("resolvers overwritten while a VPN is active, pausing rotation")
			} else {
				r.logger.Warnf("resolvers overwritten by an external process, pausing rotation")
			}
			r.paused = true
			r.metrics.drift.Inc()
			r.metrics.paused.Set(1)
		}
	} else if r.paused {
		r.logger.Infof("resolver configuration is stable again, resuming rotation")
		r.paused = false
		r.metrics.paused.Set(0)
	}

	if r.paused {
		return
	}

	if err := r.RotateOnce(ctx); err != nil {
		r.logRotateErr(err)
	}
}

func (r *Rotator) logRotateErr(err error) {
	if errors.Is(err, ErrNoAlternative) {
		r.logger.Warnf("no alternative resolver pair this cycle, keeping current")
	} else {
		r.logger.Errorf("rotation failed: %v", err)
	}
}

// drifted reports whether the OS resolver configuration no longer matches
// the last pair this rotator applied. Unreadable configuration is treated as
// no drift, the state machine does not flip on inconclusive information.
func (r *Rotator) drifted(ctx context.Context) bool {
	if r.current == nil {
		return false
	}

	cur, ok := r.Current(ctx)
	if !ok {
		r.logger.Warnf("could not read current resolvers, skipping drift check")
		return false
	}

	if cur != *r.current {
		r.logger.Warnf("resolver drift detected: applied %s, found %s", *r.current, cur)
		return true
	}
	return false
}
