// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package forward implements a single-target TCP port forwarder that
// refuses to outlive its target.
//
// A [Forwarder] binds a listen endpoint and runs two units until one of
// them fails:
//
//   - [Monitor] keeps a probe connection open to the target and peeks
//     at it every [ProbeInterval]. When the target closes the probe
//     connection, the monitor reconnects immediately. When it cannot
//     connect at all, it returns a [FatalError].
//   - [Acceptor] accepts inbound connections. For each one it dials the
//     target and starts a [Session] relay in its own goroutine. Accept
//     errors are logged and skipped. A failed target dial returns a
//     [FatalError].
//
// The first unit to return cancels the other, and its error becomes the
// forwarder's outcome: the target is assumed gone, and there is no
// reason to keep listening. Sessions are independent of each other and
// of the two units; a relay error is logged and ends only its own
// session. When the forwarder stops, in-flight sessions are not
// drained.
//
// Endpoints are [netip.AddrPort] values produced by [ParseEndpoint]
// before anything starts, so a malformed address is a startup error
// rather than a runtime one.
package forward
