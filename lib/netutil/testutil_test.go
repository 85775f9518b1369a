// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"net"
	"testing"
)

// tcpPair returns both ends of a loopback TCP connection. Both are
// closed when the test completes.
func tcpPair(t *testing.T) (client, server *net.TCPConn) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("tcpPair: listen: %v", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	acceptErrors := make(chan error, 1)
	go func() {
		connection, acceptError := listener.Accept()
		if acceptError != nil {
			acceptErrors <- acceptError
			return
		}
		accepted <- connection
	}()

	dialed, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("tcpPair: dial: %v", err)
	}

	var serverConnection net.Conn
	select {
	case serverConnection = <-accepted:
	case acceptError := <-acceptErrors:
		t.Fatalf("tcpPair: accept: %v", acceptError)
	}

	t.Cleanup(func() {
		dialed.Close()
		serverConnection.Close()
	})
	return dialed.(*net.TCPConn), serverConnection.(*net.TCPConn)
}
