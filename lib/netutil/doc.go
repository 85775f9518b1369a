// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides the socket-level pieces of the forwarder.
//
// [Listen] binds a TCP listener, optionally restricted to IPv6 traffic
// by setting IPV6_V6ONLY before bind. [Peek] inspects a connection's
// receive queue with MSG_PEEK without consuming data, which is how a
// liveness probe learns that its peer has closed. [BridgeConnections]
// copies bytes in both directions between two connections until one
// direction finishes, then closes both. [IsExpectedCloseError]
// classifies errors that occur during normal teardown of such a bridge.
//
// The socket options and MSG_PEEK use golang.org/x/sys/unix, so this
// package builds on Unix platforms only.
package netutil
