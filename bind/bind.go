// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"os"
	"time"

	"github.com/dnsrotate/dnsrotate"
	"github.com/dnsrotate/dnsrotate/log"
	"github.com/dnsrotate/dnsrotate/pidfile"
	"github.com/mmatczuk/anyflag"
	"github.com/spf13/pflag"
)

func ConfigFile(fs *pflag.FlagSet, configFile *string) {
	fs.StringVarP(configFile,
		"config-file", "c", *configFile, "<path>"+
			"Configuration file to load options from. "+
			"The supported formats are: JSON, YAML, TOML, HCL, and Java properties. "+
			"The file format is determined by the file extension, if not specified the default format is YAML. "+
			"The following precedence order of configuration sources is used: command flags, environment variables, config file, default values. ")
}

func RotatorConfig(fs *pflag.FlagSet, cfg *dnsrotate.RotatorConfig) {
	fs.StringVarP(&cfg.Interface,
		"interface", "i", cfg.Interface, "<name>"+
			"Network service whose resolvers are managed (e.g. Wi-Fi, Ethernet). "+
			"Auto-detected when empty. ")

	fs.DurationVarP(&cfg.Interval,
		"interval", "t", cfg.Interval,
		"Rotation interval. Values outside [3m, 24h] are clamped to the nearest bound. ")

	fs.DurationVar(&cfg.ProbeTimeout,
		"probe-timeout", cfg.ProbeTimeout,
		"Timeout for a single resolver liveness probe. ")

	fs.DurationVar(&cfg.HealthTTL,
		"health-ttl", cfg.HealthTTL,
		"How long probe results are cached before a full re-validation. ")

	fs.Var(anyflag.NewSliceValue[dnsrotate.Pair](cfg.Candidates, &cfg.Candidates, dnsrotate.ParsePair),
		"candidates", "<primary,secondary>"+
			"Resolver pair to rotate among instead of the built-in list. "+
			"The flag can be specified multiple times. ")
}

func CommandTimeout(fs *pflag.FlagSet, d *time.Duration) {
	fs.DurationVar(d,
		"command-timeout", *d,
		"Timeout for external network configuration commands. ")
}

func LockFile(fs *pflag.FlagSet, path *string) {
	if *path == "" {
		*path = pidfile.DefaultPath
	}
	fs.StringVar(path,
		"lock-file", *path, "<path>"+
			"PID lock file guaranteeing a single running instance. ")
}

func APIAddress(fs *pflag.FlagSet, addr *string) {
	fs.StringVar(addr,
		"api-address", *addr, "<host:port>"+
			"Local diagnostics API address serving health, version and metrics. "+
			"Disabled when empty. ")
}

func LogConfig(fs *pflag.FlagSet, cfg *log.Config) {
	logLevels := []log.Level{
		log.ErrorLevel,
		log.WarnLevel,
		log.InfoLevel,
		log.DebugLevel,
	}
	fs.Var(anyflag.NewValue[log.Level](cfg.Level, &cfg.Level, anyflag.EnumParser[log.Level](logLevels...)),
		"log-level", "<error|warn|info|debug>"+
			"Log level. ")

	fs.Var(NewFileFlag(&cfg.File, openLogFile),
		"log-file", "<path>"+
			"Log to file instead of stdout. ")
}

func openLogFile(name string) (*os.File, error) {
	return os.OpenFile(name, log.DefaultFileFlags, log.DefaultFileMode)
}
