// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package run

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dnsrotate/dnsrotate"
	"github.com/dnsrotate/dnsrotate/bind"
	"github.com/dnsrotate/dnsrotate/internal/version"
	"github.com/dnsrotate/dnsrotate/log"
	"github.com/dnsrotate/dnsrotate/log/stdlog"
	"github.com/dnsrotate/dnsrotate/netconfig"
	"github.com/dnsrotate/dnsrotate/pidfile"
	"github.com/dnsrotate/dnsrotate/runctx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
)

const promNs = "dnsrotate"

type command struct {
	rotatorConfig  *dnsrotate.RotatorConfig
	logConfig      *log.Config
	lockFile       string
	commandTimeout time.Duration
	apiAddr        string

	goleak bool
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	if f := c.logConfig.File; f != nil {
		defer f.Close()
	}
	logger := stdlog.New(c.logConfig)

	defer func() {
		if cmdErr != nil {
			logger.Errorf("fatal error exiting: %s", cmdErr)
			cmd.SilenceErrors = true
		}
	}()

	logger.Infof("dnsrotate %s (%s)", version.Version, version.Commit)

	lock := pidfile.New(c.lockFile, logger.Named("lock"))
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		cmdErr = multierr.Append(cmdErr, lock.Release())
	}()

	ctx := cmd.Context()
	nc := netconfig.New(c.commandTimeout, logger.Named("netconfig"))

	if c.rotatorConfig.Interface == "" {
		c.rotatorConfig.Interface = netconfig.DetectService(ctx, nc, logger.Named("detect"))
	}

	promReg := prometheus.NewRegistry()
	c.rotatorConfig.PromRegistry = promReg
	c.rotatorConfig.PromNamespace = promNs

	r, err := dnsrotate.NewRotator(c.rotatorConfig, nc, logger.Named("rotator"))
	if err != nil {
		return err
	}

	g := runctx.NewGroup()
	g.Add(r.Run)

	if c.apiAddr != "" {
		var h http.Handler = dnsrotate.NewAPIHandler(promReg)
		apiLogger := logger.Named("api")
		g.Add(func(ctx context.Context) error {
			return dnsrotate.RunAPIServer(ctx, c.apiAddr, h, apiLogger)
		})
	}

	if c.goleak {
		defer func() {
			if err := goleak.Find(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "goleak: %s", err)
				os.Exit(1)
			}
		}()
	}

	return g.RunContext(ctx)
}

func Command() *cobra.Command {
	c := command{
		rotatorConfig:  dnsrotate.DefaultRotatorConfig(),
		logConfig:      log.DefaultConfig(),
		commandTimeout: netconfig.DefaultCommandTimeout,
	}

	cmd := &cobra.Command{
		Use:     "run [--interface <name>] [--interval <duration>]",
		Short:   "Rotate resolvers continuously until terminated",
		Long:    long,
		Example: example,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	bind.RotatorConfig(fs, c.rotatorConfig)
	bind.CommandTimeout(fs, &c.commandTimeout)
	bind.LockFile(fs, &c.lockFile)
	bind.APIAddress(fs, &c.apiAddr)
	bind.LogConfig(fs, c.logConfig)

	fs.BoolVar(&c.goleak, "goleak", false, "enable goleak")
	fs.Lookup("goleak").Hidden = true

	return cmd
}

const long = `Rotate the resolver pair on the managed network service at a fixed interval,
choosing among resolvers that answer a liveness probe. Rotation pauses while an
external process owns the resolver configuration (a VPN client, a manual change)
and resumes once the configuration is stable again.
Writing resolver configuration requires elevated privileges.
`

const example = `  # Rotate resolvers on the auto-detected service every 5 minutes
  dnsrotate run

  # Rotate resolvers on Ethernet every 30 minutes
  dnsrotate run --interface Ethernet --interval 30m

  # Expose health and metrics on localhost
  dnsrotate run --api-address localhost:10000
`
