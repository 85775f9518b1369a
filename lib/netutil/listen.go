// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Listen binds a TCP listener on address.
//
// When v6Only is false the platform default applies, which on Linux
// is a dual-stack socket for an unspecified IPv6 address such as
// "[::]:8080". When v6Only is true the socket is created as tcp6 and
// IPV6_V6ONLY is set before bind, so IPv4-mapped clients are refused;
// address must then be an IPv6 address.
func Listen(ctx context.Context, address string, v6Only bool) (net.Listener, error) {
	if !v6Only {
		var listenConfig net.ListenConfig
		return listenConfig.Listen(ctx, "tcp", address)
	}

	listenConfig := net.ListenConfig{
		Control: func(network, address string, rawConn syscall.RawConn) error {
			var sockoptError error
			if err := rawConn.Control(func(fd uintptr) {
				sockoptError = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1)
			}); err != nil {
				return err
			}
			if sockoptError != nil {
				return fmt.Errorf("setting IPV6_V6ONLY on %s: %w", address, sockoptError)
			}
			return nil
		},
	}
	return listenConfig.Listen(ctx, "tcp6", address)
}
