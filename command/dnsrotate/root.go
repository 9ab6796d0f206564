// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dnsrotate

import (
	"github.com/dnsrotate/dnsrotate/bind"
	"github.com/dnsrotate/dnsrotate/command/get"
	"github.com/dnsrotate/dnsrotate/command/reset"
	"github.com/dnsrotate/dnsrotate/command/rotate"
	"github.com/dnsrotate/dnsrotate/command/run"
	"github.com/dnsrotate/dnsrotate/command/set"
	"github.com/dnsrotate/dnsrotate/command/version"
	"github.com/dnsrotate/dnsrotate/utils/cobrautil"
	"github.com/spf13/cobra"
)

const (
	EnvPrefix          = "DNSROTATE"
	ConfigFileFlagName = "config-file"
)

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dnsrotate",
		Short: "Rotate the host resolver pair among healthy public DNS servers",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cobrautil.BindAll(cmd, EnvPrefix, ConfigFileFlagName)
		},
		SilenceUsage: true,
	}
	bind.ConfigFile(cmd.PersistentFlags(), new(string))

	cmd.AddCommand(
		run.Command(),
		rotate.Command(),
		get.Command(),
		set.Command(),
		reset.Command(),
		version.Command(),
	)

	return cmd
}
