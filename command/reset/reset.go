// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package reset

import (
	"time"

	"github.com/dnsrotate/dnsrotate"
	"github.com/dnsrotate/dnsrotate/bind"
	"github.com/dnsrotate/dnsrotate/log"
	"github.com/dnsrotate/dnsrotate/log/stdlog"
	"github.com/dnsrotate/dnsrotate/netconfig"
	"github.com/dnsrotate/dnsrotate/pidfile"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

type command struct {
	rotatorConfig  *dnsrotate.RotatorConfig
	logConfig      *log.Config
	lockFile       string
	commandTimeout time.Duration
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	logger := stdlog.New(c.logConfig)

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

	r, err := dnsrotate.NewRotator(c.rotatorConfig, nc, logger.Named("rotator"))
	if err != nil {
		return err
	}

	return r.Reset(ctx)
}

func Command() *cobra.Command {
	c := command{
		rotatorConfig:  dnsrotate.DefaultRotatorConfig(),
		logConfig:      log.DefaultConfig(),
		commandTimeout: netconfig.DefaultCommandTimeout,
	}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset resolvers to automatic (DHCP) configuration and exit",
		RunE:  c.runE,
	}

	fs := cmd.Flags()
	fs.StringVarP(&c.rotatorConfig.Interface, "interface", "i", "", "<name>"+
		"Network service to reset. Auto-detected when empty. ")
	bind.CommandTimeout(fs, &c.commandTimeout)
	bind.LockFile(fs, &c.lockFile)
	bind.LogConfig(fs, c.logConfig)

	return cmd
}
