// Copyright 2026 The dnsrotate Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dnsrotate rotates the resolvers of a macOS network service among a
// table of public DNS providers. It probes candidate resolvers for liveness,
// caches the results, and periodically applies a randomly chosen healthy pair,
// pausing whenever an external actor rewrites the configuration.
package dnsrotate
