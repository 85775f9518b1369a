// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"io"
	"net"
)

// IsExpectedCloseError reports whether err is a normal connection
// termination: end of stream, or use of a connection that was already
// closed locally.
//
// A reset or broken pipe is not a normal termination. It means a peer
// aborted the connection, and the relay reports it.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
