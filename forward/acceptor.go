// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package forward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
)

// Acceptor turns every connection accepted on Listener into a Session
// relaying to Target.
type Acceptor struct {
	// Listener is owned by the acceptor once Run starts and is closed
	// when Run returns.
	Listener net.Listener

	// Target is dialed once per accepted connection.
	Target netip.AddrPort

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

func (a *Acceptor) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Run accepts connections until the target cannot be dialed or ctx is
// done. A failed Accept is logged and the loop continues. A failed
// target dial closes the accepted connection and returns a *FatalError
// with ErrTargetConnect. Relays run in their own goroutines and are not
// waited for.
func (a *Acceptor) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { a.Listener.Close() })
	defer stop()
	defer a.Listener.Close()

	var dialer net.Dialer
	var sessionCount uint64

	for {
		inbound, err := a.Listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A closed listener fails every Accept from now on.
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("%s: %w", ComponentAcceptor, err)
			}
			a.logger().Error("accept failed", "error", err)
			continue
		}

		sessionCount++
		logger := a.logger().With("session_id", sessionCount)
		logger.Info("connection accepted", "remote_addr", inbound.RemoteAddr())

		target, err := dialer.DialContext(ctx, "tcp", a.Target.String())
		if err != nil {
			inbound.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &FatalError{
				Component: ComponentAcceptor,
				Kind:      ErrTargetConnect,
				Target:    a.Target,
				Err:       err,
			}
		}

		session := &Session{ID: sessionCount, Inbound: inbound, Target: target}
		go session.Relay(logger)
	}
}
