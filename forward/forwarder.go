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

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/ipfw/lib/clock"
	"github.com/bureau-foundation/ipfw/lib/netutil"
)

// Forwarder relays connections accepted on ListenAddr to TargetAddr
// while a Monitor checks that TargetAddr stays reachable.
type Forwarder struct {
	// ListenAddr is the address to accept connections on. Port 0 binds
	// an ephemeral port; see Addr.
	ListenAddr netip.AddrPort

	// TargetAddr is the address every connection is forwarded to.
	TargetAddr netip.AddrPort

	// V6Only restricts the listener to IPv6 traffic by setting
	// IPV6_V6ONLY before bind. ListenAddr must be an IPv6 address.
	V6Only bool

	// Logger receives structured log output. If nil, slog.Default() is
	// used. Per-session events carry a session_id attribute.
	Logger *slog.Logger

	// Clock paces the monitor. If nil, clock.Real() is used.
	Clock clock.Clock

	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
}

func (f *Forwarder) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Run starts the forwarder and blocks until it stops. See Wait for the
// returned error.
func (f *Forwarder) Run(ctx context.Context) error {
	if err := f.Start(ctx); err != nil {
		return err
	}
	return f.Wait()
}

// Start validates the endpoints, binds the listener, and starts the
// monitor and acceptor in the background. It returns once the listener
// is bound. Binding happens before the target is probed, so an
// unreachable target is reported by Wait, not by Start.
func (f *Forwarder) Start(ctx context.Context) error {
	if !f.ListenAddr.IsValid() {
		return fmt.Errorf("forward: ListenAddr is required")
	}
	if !f.TargetAddr.IsValid() {
		return fmt.Errorf("forward: TargetAddr is required")
	}
	if f.V6Only {
		address := f.ListenAddr.Addr()
		if !address.Is6() || address.Is4In6() {
			return &EndpointError{
				Role:  RoleListen,
				Value: f.ListenAddr.String(),
				Err:   errors.New("v6-only listener requires an IPv6 address"),
			}
		}
	}

	listener, err := netutil.Listen(ctx, f.ListenAddr.String(), f.V6Only)
	if err != nil {
		return fmt.Errorf("forward: failed to listen on %s: %w", f.ListenAddr, err)
	}
	f.listener = listener

	ctx, f.cancel = context.WithCancel(ctx)
	f.done = make(chan struct{})

	group, groupContext := errgroup.WithContext(ctx)
	monitor := &Monitor{
		Target: f.TargetAddr,
		Logger: f.logger().With("component", ComponentMonitor),
		Clock:  f.Clock,
	}
	acceptor := &Acceptor{
		Listener: listener,
		Target:   f.TargetAddr,
		Logger:   f.logger().With("component", ComponentAcceptor),
	}
	group.Go(func() error { return monitor.Run(groupContext) })
	group.Go(func() error { return acceptor.Run(groupContext) })

	go func() {
		defer close(f.done)
		f.err = group.Wait()
	}()

	f.logger().Info("forwarder started",
		"listen_addr", listener.Addr(),
		"target_addr", f.TargetAddr,
		"v6_only", f.V6Only,
	)
	return nil
}

// Addr returns the listener's address, useful when binding to port 0.
// Returns nil if the forwarder has not been started.
func (f *Forwarder) Addr() net.Addr {
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

// Wait blocks until the forwarder stops and returns the first error
// from the monitor or the acceptor. A *FatalError means the target was
// unreachable. context.Canceled means Stop was called or the context
// passed to Start was cancelled. Wait never returns nil after a
// successful Start.
func (f *Forwarder) Wait() error {
	if f.done == nil {
		return errors.New("forward: not started")
	}
	<-f.done
	return f.err
}

// Stop closes the listener and the probe connection and waits for the
// monitor and acceptor to return. In-flight sessions are left to end
// on their own. Stop is safe to call more than once.
func (f *Forwarder) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	if f.done != nil {
		<-f.done
	}
}
