// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package forward

import (
	"log/slog"
	"net"

	"github.com/bureau-foundation/ipfw/lib/netutil"
)

// Session pairs one accepted connection with its own connection to the
// target. The session owns both connections; nothing else reads,
// writes, or closes them while Relay runs.
type Session struct {
	ID      uint64
	Inbound net.Conn
	Target  net.Conn
}

// Relay copies bytes in both directions until either side reaches end
// of stream or fails, then closes both connections. Errors are logged
// and go no further: a failed session never affects another session or
// the forwarder. There is no size, time, or idle limit.
func (s *Session) Relay(logger *slog.Logger) {
	stats, err := netutil.BridgeConnections(s.Inbound, s.Target)
	if err != nil {
		logger.Error("forward failed",
			"bytes_to_target", stats.AToB,
			"bytes_to_client", stats.BToA,
			"error", err,
		)
		return
	}
	logger.Debug("session closed",
		"bytes_to_target", stats.AToB,
		"bytes_to_client", stats.BToA,
	)
}
