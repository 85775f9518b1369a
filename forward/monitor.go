// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package forward

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/bureau-foundation/ipfw/lib/clock"
	"github.com/bureau-foundation/ipfw/lib/netutil"
)

// ProbeInterval is how long the monitor waits between peeks while the
// probe connection is alive and has unread data.
const ProbeInterval = 100 * time.Millisecond

// Monitor keeps a probe connection open to Target.
//
// The probe connection never carries data. Each peek blocks until the
// connection is readable. End of stream or a peek error means the
// target dropped the probe: the monitor closes it and dials again at
// once, without backoff, for as long as the target accepts. Unread
// data means the target is alive, and the monitor peeks again after
// ProbeInterval.
//
// A failed dial is fatal. One refused connection is taken to mean the
// target is gone, not busy.
type Monitor struct {
	// Target is the address to probe.
	Target netip.AddrPort

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// Clock paces the peek loop. If nil, clock.Real() is used.
	Clock clock.Clock
}

func (m *Monitor) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func (m *Monitor) clock() clock.Clock {
	if m.Clock != nil {
		return m.Clock
	}
	return clock.Real()
}

// Run probes the target until a dial fails or ctx is done. It returns a
// *FatalError with ErrProbeConnect in the first case and ctx.Err() in
// the second; it never returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	var dialer net.Dialer
	buffer := make([]byte, 1)

	for {
		probe, err := dialer.DialContext(ctx, "tcp", m.Target.String())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &FatalError{
				Component: ComponentMonitor,
				Kind:      ErrProbeConnect,
				Target:    m.Target,
				Err:       err,
			}
		}
		m.logger().Debug("probe connected",
			"target", m.Target,
			"local_addr", probe.LocalAddr(),
		)

		reason := m.watch(ctx, probe, buffer)
		probe.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		m.logger().Debug("probe connection ended",
			"target", m.Target,
			"reason", reason,
		)
	}
}

// watch peeks at probe until it ends and returns why. Cancelling ctx
// closes probe, which unblocks a pending peek.
func (m *Monitor) watch(ctx context.Context, probe net.Conn, buffer []byte) error {
	stop := context.AfterFunc(ctx, func() { probe.Close() })
	defer stop()

	for {
		count, err := netutil.Peek(probe, buffer)
		if err != nil {
			return err
		}
		if count == 0 {
			return io.EOF
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.clock().After(ProbeInterval):
		}
	}
}
