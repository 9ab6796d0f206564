// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package netconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os/exec"
	"strings"
	"time"

	"github.com/dnsrotate/dnsrotate/log"
)

// DefaultCommandTimeout bounds a single external configuration command.
const DefaultCommandTimeout = 10 * time.Second

var _ Configurator = (*NetworkSetup)(nil)

// NetworkSetup configures resolvers through the macOS networksetup(8),
// route(8) and ifconfig(8) tools. Write operations require elevated
// privileges.
type NetworkSetup struct {
	timeout time.Duration
	logger  log.Logger

	// run executes an external command, overridable in tests.
	run func(ctx context.Context, name string, args ...string) (string, error)
}

func New(timeout time.Duration, logger log.Logger) *NetworkSetup {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = log.NopLogger
	}
	return &NetworkSetup{
		timeout: timeout,
		logger:  logger,
		run:     runCommand,
	}
}

// runCommand executes an external command with captured output. A non-zero
// exit is reduced to an error carrying the trimmed stderr.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s: %s", name, msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (n *NetworkSetup) exec(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	n.logger.Debugf("exec %s %s", name, strings.Join(args, " "))
	return n.run(ctx, name, args...)
}

func (n *NetworkSetup) ListServices(ctx context.Context) ([]string, error) {
	out, err := n.exec(ctx, "networksetup", "-listallnetworkservices")
	if err != nil {
		return nil, err
	}

	var services []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		// Skip the banner line and disabled services (marked with an asterisk).
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "An asterisk") {
			continue
		}
		services = append(services, line)
	}
	return services, nil
}

func (n *NetworkSetup) ServiceEnabled(ctx context.Context, service string) (bool, error) {
	out, err := n.exec(ctx, "networksetup", "-getnetworkserviceenabled", service)
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "Enabled"), nil
}

func (n *NetworkSetup) DefaultRouteInterface(ctx context.Context) (string, error) {
	out, err := n.exec(ctx, "route", "get", "default")
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(out, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(k) == "interface" {
			return strings.TrimSpace(v), nil
		}
	}
	return "", errors.New("no default route interface")
}

func (n *NetworkSetup) GetDNS(ctx context.Context, service string) ([]netip.Addr, error) {
	out, err := n.exec(ctx, "networksetup", "-getdnsservers", service)
	if err != nil {
		return nil, err
	}

	// Non-address lines ("There aren't any DNS Servers set on ...") mean
	// the service is on automatic configuration.
	var addrs []netip.Addr
	for _, line := range strings.Split(out, "\n") {
		a, err := netip.ParseAddr(strings.TrimSpace(line))
		if err != nil {
			continue
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

func (n *NetworkSetup) SetDNS(ctx context.Context, service string, addrs ...netip.Addr) error {
	if len(addrs) == 0 {
		return errors.New("no resolver addresses given")
	}

	args := []string{"-setdnsservers", service}
	for _, a := range addrs {
		if !a.IsValid() {
			return fmt.Errorf("invalid resolver address %v", a)
		}
		args = append(args, a.String())
	}

	_, err := n.exec(ctx, "networksetup", args...)
	return err
}

func (n *NetworkSetup) ClearDNS(ctx context.Context, service string) error {
	_, err := n.exec(ctx, "networksetup", "-setdnsservers", service, "Empty")
	return err
}
