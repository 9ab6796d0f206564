// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/dnsrotate/dnsrotate/log"
	"github.com/dnsrotate/dnsrotate/netconfig"
)

// fakeConfigurator is an in-memory netconfig.Configurator.
type fakeConfigurator struct {
	dns    []netip.Addr
	getErr error
	setErr error
	vpn    bool

	setCalls   int
	clearCalls int
}

var _ netconfig.Configurator = (*fakeConfigurator)(nil)

func (f *fakeConfigurator) ListServices(context.Context) ([]string, error) {
	return []string{"Wi-Fi"}, nil
}

func (f *fakeConfigurator) ServiceEnabled(context.Context, string) (bool, error) {
	return true, nil
}

func (f *fakeConfigurator) DefaultRouteInterface(context.Context) (string, error) {
	return "en0", nil
}

func (f *fakeConfigurator) GetDNS(context.Context, string) ([]netip.Addr, error) {
	return f.dns, f.getErr
}

func (f *fakeConfigurator) SetDNS(_ context.Context, _ string, addrs ...netip.Addr) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls++
	f.dns = append([]netip.Addr(nil), addrs...)
	return nil
}

func (f *fakeConfigurator) ClearDNS(context.Context, string) error {
	f.clearCalls++
	f.dns = nil
	return nil
}

func (f *fakeConfigurator) VPNActive(context.Context) (bool, error) {
	return f.vpn, nil
}

func newTestRotator(nc netconfig.Configurator, candidates []Pair, probe ProbeFunc) *Rotator {
	h := NewHealthChecker(candidates, probe, time.Hour, log.NopLogger)
	return &Rotator{
		iface:    "Wi-Fi",
		interval: MinInterval,
		nc:       nc,
		sel:      NewSelector(h, log.NopLogger),
		logger:   log.NopLogger,
		metrics:  newRotatorMetrics(""),
	}
}

func TestNewRotatorClampsInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{
			name:     "below minimum",
			interval: 60 * time.Second,
			want:     MinInterval,
		},
		{
			name:     "above maximum",
			interval: 999999 * time.Second,
			want:     MaxInterval,
		},
		{
			name:     "within bounds",
			interval: 300 * time.Second,
			want:     300 * time.Second,
		},
		{
			name:     "at minimum",
			interval: MinInterval,
			want:     MinInterval,
		},
	}

	for i := range tests {
		tc := &tests[i]
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultRotatorConfig()
			cfg.Interface = "Wi-Fi"
			cfg.Interval = tc.interval

			r, err := NewRotator(cfg, &fakeConfigurator{}, log.NopLogger)
			if err != nil {
				t.Fatal(err)
			}
			if got := r.Interval(); got != tc.want {
				t.Errorf("Interval() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestNewRotatorRequiresInterface(t *testing.T) {
	cfg := DefaultRotatorConfig()
	if _, err := NewRotator(cfg, &fakeConfigurator{}, log.NopLogger); err == nil {
		t.Error("expected error for empty interface")
	}
}

func TestRotateOnceAppliesAlternative(t *testing.T) {
	nc := &fakeConfigurator{}
	candidates := []Pair{
		mustPair("1.1.1.1", "1.0.0.1"),
		mustPair("8.8.8.8", "8.8.4.4"),
	}
	r := newTestRotator(nc, candidates, alwaysHealthy)
	ctx := context.Background()

	if err := r.RotateOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if r.current == nil {
		t.Fatal("expected current pair after rotation")
	}
	first := *r.current

	if err := r.RotateOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if *r.current == first {
		t.Errorf("expected rotation to pick a different pair, got %s twice", first)
	}
	if nc.setCalls != 2 {
		t.Errorf("expected 2 applied configurations, got %d", nc.setCalls)
	}
}

func TestRotateOnceNoAlternative(t *testing.T) {
	nc := &fakeConfigurator{}
	only := mustPair("1.1.1.1", "1.0.0.1")
	r := newTestRotator(nc, []Pair{only}, alwaysHealthy)
	ctx := context.Background()

	if err := r.RotateOnce(ctx); err != nil {
		t.Fatal(err)
	}

	err := r.RotateOnce(ctx)
	if !errors.Is(err, ErrNoAlternative) {
		t.Fatalf("expected ErrNoAlternative, got %v", err)
	}
	if nc.setCalls != 1 {
		t.Errorf("expected no configuration change, got %d applies", nc.setCalls)
	}
}

func TestTickPausesOnDriftAndResumes(t *testing.T) {
	nc := &fakeConfigurator{}
	candidates := []Pair{
		mustPair("1.1.1.1", "1.0.0.1"),
		mustPair("8.8.8.8", "8.8.4.4"),
	}
	r := newTestRotator(nc, candidates, alwaysHealthy)
	ctx := context.Background()

	if err := r.RotateOnce(ctx); err != nil {
		t.Fatal(err)
	}
	applied := nc.setCalls

	// An external actor rewrites the resolvers.
	external := netip.MustParseAddr("192.0.2.53")
	nc.dns = []netip.Addr{external, external}

	r.tick(ctx)
	if !r.paused {
		t.Fatal("expected rotation to pause on drift")
	}
	if nc.setCalls != applied {
		t.Fatalf("expected no rotation while paused, got %d applies", nc.setCalls)
	}

	// Drift persists, rotation stays paused.
	r.tick(ctx)
	if !r.paused || nc.setCalls != applied {
		t.Fatal("expected rotation to stay paused while drift persists")
	}

	// The configuration matches the last applied pair again.
	nc.dns = []netip.Addr{r.current.Primary, r.current.Secondary}

	r.tick(ctx)
	if r.paused {
		t.Error("expected rotation to resume once configuration is stable")
	}
	if nc.setCalls != applied+1 {
		t.Errorf("expected rotation on the resuming tick, got %d applies", nc.setCalls)
	}
}

func TestTickPausesOnDriftWithVPN(t *testing.T) {
	nc := &fakeConfigurator{vpn: true}
	r := newTestRotator(nc, []Pair{mustPair("1.1.1.1", "1.0.0.1")}, alwaysHealthy)
	ctx := context.Background()

	if err := r.RotateOnce(ctx); err != nil {
		t.Fatal(err)
	}
	nc.dns = []netip.Addr{netip.MustParseAddr("10.0.0.53")}

	r.tick(ctx)
	if !r.paused {
		t.Error("expected rotation to pause on drift regardless of VPN presence")
	}
}

func TestTickSkipsDriftCheckBeforeFirstApply(t *testing.T) {
	nc := &fakeConfigurator{dns: []netip.Addr{netip.MustParseAddr("192.0.2.53")}}
	r := newTestRotator(nc, []Pair{mustPair("1.1.1.1", "1.0.0.1")}, alwaysHealthy)

	r.tick(context.Background())
	if r.paused {
		t.Error("expected no pause before the first applied pair")
	}
	if nc.setCalls != 1 {
		t.Errorf("expected the first tick to rotate, got %d applies", nc.setCalls)
	}
}

func TestTickUnreadableConfigurationIsNotDrift(t *testing.T) {
	nc := &fakeConfigurator{}
	r := newTestRotator(nc, []Pair{
		mustPair("1.1.1.1", "1.0.0.1"),
		mustPair("8.8.8.8", "8.8.4.4"),
	}, alwaysHealthy)
	ctx := context.Background()

	if err := r.RotateOnce(ctx); err != nil {
		t.Fatal(err)
	}
	nc.getErr = errors.New("networksetup: exit status 1")

	r.tick(ctx)
	if r.paused {
		t.Error("expected inconclusive reads to keep rotation active")
	}
}

func TestCurrent(t *testing.T) {
	a := netip.MustParseAddr("1.1.1.1")
	b := netip.MustParseAddr("1.0.0.1")

	tests := []struct {
		name string
		dns  []netip.Addr
		want Pair
		ok   bool
	}{
		{
			name: "automatic configuration",
			dns:  nil,
			ok:   false,
		},
		{
			name: "single address doubles",
			dns:  []netip.Addr{a},
			want: Pair{Primary: a, Secondary: a},
			ok:   true,
		},
		{
			name: "two addresses",
			dns:  []netip.Addr{a, b},
			want: Pair{Primary: a, Secondary: b},
			ok:   true,
		},
	}

	for i := range tests {
		tc := &tests[i]
		t.Run(tc.name, func(t *testing.T) {
			nc := &fakeConfigurator{dns: tc.dns}
			r := newTestRotator(nc, nil, alwaysHealthy)

			got, ok := r.Current(context.Background())
			if ok != tc.ok {
				t.Fatalf("Current() ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("Current() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSetRejectsInvalidPair(t *testing.T) {
	nc := &fakeConfigurator{}
	r := newTestRotator(nc, nil, alwaysHealthy)

	if err := r.Set(context.Background(), Pair{}); err == nil {
		t.Error("expected error for invalid pair")
	}
	if nc.setCalls != 0 {
		t.Errorf("expected no configuration change, got %d applies", nc.setCalls)
	}
}

func TestSetDoesNotUpdateCurrentOnFailure(t *testing.T) {
	nc := &fakeConfigurator{setErr: errors.New("networksetup: exit status 1")}
	r := newTestRotator(nc, nil, alwaysHealthy)

	if err := r.Set(context.Background(), mustPair("1.1.1.1", "1.0.0.1")); err == nil {
		t.Fatal("expected error")
	}
	if r.current != nil {
		t.Error("expected current to stay unset after a failed apply")
	}
}

func TestReset(t *testing.T) {
	nc := &fakeConfigurator{}
	r := newTestRotator(nc, []Pair{mustPair("1.1.1.1", "1.0.0.1")}, alwaysHealthy)
	ctx := context.Background()

	if err := r.RotateOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if nc.clearCalls != 1 {
		t.Errorf("expected 1 clear, got %d", nc.clearCalls)
	}
	if r.current != nil {
		t.Error("expected current to be cleared after reset")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	nc := &fakeConfigurator{}
	r := newTestRotator(nc, []Pair{mustPair("1.1.1.1", "1.0.0.1")}, alwaysHealthy)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if nc.setCalls != 1 {
		t.Errorf("expected the initial rotation to apply once, got %d", nc.setCalls)
	}
}
