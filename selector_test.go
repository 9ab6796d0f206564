// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/dnsrotate/dnsrotate/log"
)

func newTestSelector(candidates []Pair, probe ProbeFunc) *Selector {
	h := NewHealthChecker(candidates, probe, time.Hour, log.NopLogger)
	return NewSelector(h, log.NopLogger)
}

func TestChooseNeverReturnsExcluded(t *testing.T) {
	candidates := []Pair{
		mustPair("1.1.1.1", "1.0.0.1"),
		mustPair("8.8.8.8", "8.8.4.4"),
		mustPair("9.9.9.9", "149.112.112.112"),
	}
	exclude := candidates[1]

	s := newTestSelector(candidates, alwaysHealthy)

	for i := 0; i < 100; i++ {
		chosen, ok := s.Choose(context.Background(), &exclude)
		if !ok {
			t.Fatal("expected a choice with two alternatives available")
		}
		if chosen == exclude {
			t.Fatalf("Choose returned the excluded pair %s", exclude)
		}
	}
}

func TestChooseSingletonExcluded(t *testing.T) {
	only := mustPair("1.1.1.1", "1.0.0.1")

	s := newTestSelector([]Pair{only}, alwaysHealthy)

	if _, ok := s.Choose(context.Background(), &only); ok {
		t.Error("expected no choice when the only healthy pair is excluded")
	}
}

func TestChooseWithoutExclusion(t *testing.T) {
	candidates := []Pair{
		mustPair("8.8.8.8", "8.8.4.4"),
		mustPair("9.9.9.9", "149.112.112.112"),
	}

	s := newTestSelector(candidates, alwaysHealthy)

	chosen, ok := s.Choose(context.Background(), nil)
	if !ok {
		t.Fatal("expected a choice")
	}
	if chosen != candidates[0] && chosen != candidates[1] {
		t.Errorf("Choose returned %s, not a healthy candidate", chosen)
	}
}

func TestChooseFallsBackWhenNothingHealthy(t *testing.T) {
	candidates := []Pair{mustPair("8.8.8.8", "8.8.4.4")}

	var probes int
	s := newTestSelector(candidates, func(context.Context, netip.Addr) bool {
		probes++
		return false
	})

	chosen, ok := s.Choose(context.Background(), nil)
	if !ok {
		t.Fatal("expected the fallback pair")
	}
	if chosen != FallbackPair() {
		t.Errorf("Choose returned %s, want fallback %s", chosen, FallbackPair())
	}
	// An empty cache triggers exactly one forced re-validation.
	if probes != 4 {
		t.Errorf("expected 4 probes (initial pass plus forced re-validation), got %d", probes)
	}
}

func TestChooseFallbackEqualsExcluded(t *testing.T) {
	fallback := FallbackPair()

	s := newTestSelector([]Pair{mustPair("8.8.8.8", "8.8.4.4")}, neverHealthy)

	if _, ok := s.Choose(context.Background(), &fallback); ok {
		t.Error("expected no choice when the fallback pair is excluded")
	}
}

func TestChooseRetriesBoundDegenerate(t *testing.T) {
	candidates := []Pair{
		mustPair("1.1.1.1", "1.0.0.1"),
		mustPair("8.8.8.8", "8.8.4.4"),
	}

	s := newTestSelector(candidates, alwaysHealthy)

	var draws int
	s.randIndex = func(n int) int {
		draws++
		return 0
	}

	if _, ok := s.Choose(context.Background(), nil); !ok {
		t.Fatal("expected a choice")
	}
	if draws > DefaultMaxRetries {
		t.Errorf("expected at most %d draws, got %d", DefaultMaxRetries, draws)
	}
}
