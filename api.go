// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dnsrotate/dnsrotate/internal/version"
	"github.com/dnsrotate/dnsrotate/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAPIHandler returns the local diagnostics API: health, version and
// Prometheus metrics.
func NewAPIHandler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("OK\n")) //nolint:errcheck // best effort
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck // best effort
			"version": version.Version,
			"commit":  version.Commit,
			"time":    version.Time,
		})
	})

	if g != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}

	return mux
}

// RunAPIServer serves h on addr until ctx is canceled.
func RunAPIServer(ctx context.Context, addr string, h http.Handler, logger log.Logger) error {
	if logger == nil {
		logger = log.NopLogger
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Infof("API server listening on %s", addr)

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
