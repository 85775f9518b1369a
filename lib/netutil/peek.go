// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Peek copies pending bytes from conn's receive queue into buffer
// without consuming them. It blocks until the connection is readable:
// data has arrived, the peer has closed, or the socket has an error.
//
// A return of (0, nil) means the peer closed its side (end of stream).
// conn must expose its file descriptor through syscall.Conn, as
// *net.TCPConn does. Closing conn from another goroutine unblocks Peek
// with an error.
func Peek(conn net.Conn, buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, errors.New("peek: empty buffer")
	}
	syscallConn, ok := conn.(syscall.Conn)
	if !ok {
		return 0, fmt.Errorf("peek: %T does not expose a file descriptor", conn)
	}
	rawConn, err := syscallConn.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("peek: %w", err)
	}

	var count int
	var recvError error
	err = rawConn.Read(func(fd uintptr) bool {
		for {
			count, _, recvError = unix.Recvfrom(int(fd), buffer, unix.MSG_PEEK)
			if recvError != unix.EINTR {
				break
			}
		}
		// Returning false parks the goroutine on the netpoller until the
		// descriptor becomes readable, then calls this function again.
		return recvError != unix.EAGAIN
	})
	if err != nil {
		return 0, err
	}
	if recvError != nil {
		return 0, os.NewSyscallError("recvfrom", recvError)
	}
	return count, nil
}
