// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package get

import (
	"errors"
	"fmt"
	"time"

	"github.com/dnsrotate/dnsrotate/bind"
	"github.com/dnsrotate/dnsrotate/log"
	"github.com/dnsrotate/dnsrotate/log/stdlog"
	"github.com/dnsrotate/dnsrotate/netconfig"
	"github.com/spf13/cobra"
)

type command struct {
	iface          string
	logConfig      *log.Config
	commandTimeout time.Duration
}

func (c *command) runE(cmd *cobra.Command, _ []string) error {
	logger := stdlog.New(c.logConfig)

	ctx := cmd.Context()
	nc := netconfig.New(c.commandTimeout, logger.Named("netconfig"))

	iface := c.iface
	if iface == "" {
		iface = netconfig.DetectService(ctx, nc, logger.Named("detect"))
	}

	addrs, err := nc.GetDNS(ctx, iface)
	if err != nil {
		return fmt.Errorf("read resolvers on %s: %w", iface, err)
	}
	if len(addrs) == 0 {
		return errors.New("no resolvers set, the service is on automatic configuration")
	}

	for _, a := range addrs {
		fmt.Fprintln(cmd.OutOrStdout(), a)
	}
	return nil
}

func Command() *cobra.Command {
	c := command{
		logConfig:      log.DefaultConfig(),
		commandTimeout: netconfig.DefaultCommandTimeout,
	}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the currently configured resolvers",
		RunE:  c.runE,
	}

	fs := cmd.Flags()
	fs.StringVarP(&c.iface, "interface", "i", "", "<name>"+
		"Network service to inspect. Auto-detected when empty. ")
	bind.CommandTimeout(fs, &c.commandTimeout)
	bind.LogConfig(fs, c.logConfig)

	return cmd
}
