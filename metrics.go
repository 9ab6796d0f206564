// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

type rotatorMetrics struct {
	rotations prometheus.Counter
	failures  prometheus.Counter
	drift     prometheus.Counter
	paused    prometheus.Gauge
	probes    *prometheus.CounterVec
}

func newRotatorMetrics(namespace string) *rotatorMetrics {
	return &rotatorMetrics{
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_total",
			Help:      "Number of successful resolver rotations",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotation_failures_total",
			Help:      "Number of failed resolver configuration changes",
		}),
		drift: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drift_detected_total",
			Help:      "Number of externally observed resolver configuration changes",
		}),
		paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paused",
			Help:      "Whether rotation is currently paused (1) or active (0)",
		}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Number of resolver liveness probes by result",
		}, []string{"healthy"}),
	}
}

func (m *rotatorMetrics) register(r prometheus.Registerer) error {
	return multierr.Combine(
		r.Register(m.rotations),
		r.Register(m.failures),
		r.Register(m.drift),
		r.Register(m.paused),
		r.Register(m.probes),
	)
}

func (m *rotatorMetrics) observeProbe(healthy bool) {
	m.probes.WithLabelValues(strconv.FormatBool(healthy)).Inc()
}
