// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"io"
	"net"
)

// BridgeStats reports the bytes copied in each direction by
// BridgeConnections.
type BridgeStats struct {
	// AToB counts bytes read from connection A and written to B.
	AToB int64
	// BToA counts bytes read from connection B and written to A.
	BToA int64
}

// bridgeCopyResult holds the outcome of one direction of a bidirectional copy.
type bridgeCopyResult struct {
	towardB     bool
	bytesCopied int64
	err         error
}

// BridgeConnections copies bytes bidirectionally between two connections.
//
// Returns when either direction finishes. Both connections are closed
// before returning, which unblocks the surviving direction; the caller
// must not use either connection afterwards. Returns the error from the
// direction that terminated first, or nil if that direction ended with
// end of stream. A reset or broken pipe on the first direction is
// returned. Errors on the surviving direction come from the local close
// and are discarded.
func BridgeConnections(connectionA, connectionB net.Conn) (BridgeStats, error) {
	done := make(chan bridgeCopyResult, 2)

	go func() {
		bytesCopied, err := io.Copy(connectionB, connectionA)
		done <- bridgeCopyResult{towardB: true, bytesCopied: bytesCopied, err: err}
	}()

	go func() {
		bytesCopied, err := io.Copy(connectionA, connectionB)
		done <- bridgeCopyResult{towardB: false, bytesCopied: bytesCopied, err: err}
	}()

	first := <-done
	connectionA.Close()
	connectionB.Close()
	second := <-done

	var stats BridgeStats
	for _, result := range []bridgeCopyResult{first, second} {
		if result.towardB {
			stats.AToB = result.bytesCopied
		} else {
			stats.BToA = result.bytesCopied
		}
	}

	if first.err != nil && !IsExpectedCloseError(first.err) {
		return stats, first.err
	}
	return stats, nil
}
