// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pidfile provides a PID-file based single-instance lock. The lock
// arbitrates across process boundaries: a holder that no longer exists is
// reclaimed, and a process never removes a lock file it does not own.
package pidfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dnsrotate/dnsrotate/log"
	"github.com/shirou/gopsutil/v3/process"
)

// DefaultPath is the conventional lock file location.
const DefaultPath = "/var/run/dnsrotate.pid"

// ErrHeld is returned by Acquire when another live process owns the lock.
var ErrHeld = errors.New("lock held by a running process")

// Lock is an exclusive single-instance guard backed by a file holding the
// owner's decimal process id.
type Lock struct {
	path   string
	logger log.Logger

	pid   int
	alive func(pid int) bool
}

func New(path string, logger log.Logger) *Lock {
	if logger == nil {
		logger = log.NopLogger
	}
	return &Lock{
		path:   path,
		logger: logger,
		pid:    os.Getpid(),
		alive:  pidAlive,
	}
}

// pidAlive reports whether a process with the given pid exists.
func pidAlive(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

// Acquire takes the lock. A lock file owned by a dead process, or one that
// cannot be parsed, is treated as orphaned and reclaimed. It returns ErrHeld
// when the recorded holder is still running.
func (l *Lock) Acquire() error {
	if b, err := os.ReadFile(l.path); err == nil {
		holder, parseErr := strconv.Atoi(strings.TrimSpace(string(b)))
		if parseErr == nil && l.alive(holder) {
			return fmt.Errorf("%w (pid %d)", ErrHeld, holder)
		}

		if parseErr != nil {
			l.logger.Warnf("malformed lock file %s, removing it", l.path)
		} else {
			l.logger.Warnf("removing orphaned lock file (pid %d not running)", holder)
		}
		if err := os.Remove(l.path); err != nil {
			return fmt.Errorf("remove orphaned lock file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read lock file: %w", err)
	}

	if err := os.WriteFile(l.path, []byte(strconv.Itoa(l.pid)), 0o644); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}

	l.logger.Debugf("lock acquired (pid %d) at %s", l.pid, l.path)
	return nil
}

// Release removes the lock file if this process still owns it. It re-reads
// the file first so a lock overwritten by another instance is left alone.
// Release is idempotent, a missing file is not an error.
func (l *Lock) Release() error {
	b, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read lock file: %w", err)
	}

	holder, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || holder != l.pid {
		l.logger.Debugf("lock file %s not owned by this process, leaving it", l.path)
		return nil
	}

	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("remove lock file: %w", err)
	}

	l.logger.Debugf("lock released")
	return nil
}
