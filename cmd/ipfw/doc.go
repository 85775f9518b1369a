// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Ipfw forwards TCP connections from a listen address to a single
// target address for as long as the target stays reachable. It exits
// with status 1 as soon as the target cannot be connected to, and with
// status 0 on SIGINT or SIGTERM.
package main
