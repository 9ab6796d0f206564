// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/dnsrotate/dnsrotate/log"
)

// DefaultMaxRetries bounds the defensive re-draw loop in Choose.
const DefaultMaxRetries = 5

// Selector picks the next resolver pair from the healthy set.
type Selector struct {
	health     *HealthChecker
	maxRetries int
	logger     log.Logger

	// randIndex draws a uniform index in [0, n), overridable in tests.
	randIndex func(n int) int
}

func NewSelector(health *HealthChecker, logger log.Logger) *Selector {
	if logger == nil {
		logger = log.NopLogger
	}
	return &Selector{
		health:     health,
		maxRetries: DefaultMaxRetries,
		logger:     logger,
		randIndex:  cryptoRandIndex,
	}
}

// Choose picks a healthy resolver pair other than exclude. When no healthy
// pair is cached it forces one re-validation; when none is found at all it
// falls back to the well-known Cloudflare pair. It reports false when the
// only option is the excluded pair itself, the caller should skip the cycle.
func (s *Selector) Choose(ctx context.Context, exclude *Pair) (Pair, bool) {
	healthy := s.health.Healthy(ctx, false)

	if len(healthy) == 0 {
		s.logger.Warnf("no healthy resolvers in cache, forcing re-validation")
		healthy = s.health.Healthy(ctx, true)
	}

	if len(healthy) == 0 {
		fallback := FallbackPair()
		s.logger.Errorf("no healthy resolvers found, using %s as fallback", fallback)
		if exclude != nil && *exclude == fallback {
			return Pair{}, false
		}
		return fallback, true
	}

	candidates := make([]Pair, 0, len(healthy))
	for p := range healthy {
		if exclude != nil && p == *exclude {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		s.logger.Warnf("only the current resolver pair is healthy, cannot rotate this cycle")
		return Pair{}, false
	}

	// The exclusion above already guarantees a draw differs from exclude,
	// the bounded retry guards against that filter regressing. A naive
	// reroll-until-different loop never terminates on a singleton pool.
	for i := 0; i < s.maxRetries; i++ {
		chosen := candidates[s.randIndex(len(candidates))]
		if exclude == nil || chosen != *exclude {
			return chosen, true
		}
	}

	return candidates[0], true
}

func cryptoRandIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// No randomness available, fall back to the first candidate.
		return 0
	}
	return int(v.Int64())
}
