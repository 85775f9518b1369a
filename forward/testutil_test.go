// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package forward

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/ipfw/lib/testutil"
)

// testTarget is a loopback TCP server standing in for the forwarding
// target. Every accepted connection is reported on accepted and handed
// to the handler in its own goroutine. The listener and all accepted
// connections are closed when the test completes.
type testTarget struct {
	listener net.Listener
	addr     netip.AddrPort
	accepted chan net.Conn

	mu          sync.Mutex
	connections []net.Conn
}

func startTarget(t *testing.T, handler func(net.Conn)) *testTarget {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("startTarget: listen: %v", err)
	}

	target := &testTarget{
		listener: listener,
		addr:     listener.Addr().(*net.TCPAddr).AddrPort(),
		accepted: make(chan net.Conn, 128),
	}
	t.Cleanup(func() {
		listener.Close()
		target.mu.Lock()
		defer target.mu.Unlock()
		for _, connection := range target.connections {
			connection.Close()
		}
	})

	go func() {
		for {
			connection, acceptError := listener.Accept()
			if acceptError != nil {
				return
			}
			target.mu.Lock()
			target.connections = append(target.connections, connection)
			target.mu.Unlock()
			select {
			case target.accepted <- connection:
			default:
			}
			if handler != nil {
				go handler(connection)
			}
		}
	}()

	return target
}

// echoHandler writes back everything it reads.
func echoHandler(connection net.Conn) {
	io.Copy(connection, connection)
}

// closedPort returns a loopback address with nothing listening on it.
func closedPort(t *testing.T) netip.AddrPort {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("closedPort: listen: %v", err)
	}
	addr := listener.Addr().(*net.TCPAddr).AddrPort()
	listener.Close()
	return addr
}

// discardLogger returns a logger that drops all records.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// syncBuffer is a bytes.Buffer safe for concurrent writers, so a slog
// handler can write from relay goroutines while the test reads.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

// waitForLog polls buffer until it contains want, failing the test if
// the record does not appear. Relay records are written from their own
// goroutines with no completion signal the test can select on.
func waitForLog(t *testing.T, buffer *syncBuffer, want string) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second) //nolint:realclock test hang prevention
	for {
		output := buffer.String()
		if strings.Contains(output, want) {
			return output
		}
		if time.Now().After(deadline) { //nolint:realclock test hang prevention
			t.Fatalf("log record %q not written within 5s:\n%s", want, output)
		}
		time.Sleep(10 * time.Millisecond) //nolint:realclock polling a log buffer
	}
}

func bufferLogger(buffer *syncBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// startForwarder starts a forwarder on an ephemeral loopback port and
// stops it when the test completes.
func startForwarder(t *testing.T, target netip.AddrPort) *Forwarder {
	t.Helper()
	forwarder := &Forwarder{
		ListenAddr: netip.MustParseAddrPort("127.0.0.1:0"),
		TargetAddr: target,
		Logger:     discardLogger(),
	}
	if err := forwarder.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(forwarder.Stop)
	return forwarder
}

// waitOutcome returns the forwarder's terminal error, failing the test
// if it keeps running.
func waitOutcome(t *testing.T, forwarder *Forwarder) error {
	t.Helper()
	outcome := make(chan error, 1)
	go func() { outcome <- forwarder.Wait() }()
	return testutil.RequireReceive(t, outcome, 5*time.Second, "waiting for forwarder to stop")
}

// readWithin reads exactly n bytes from connection, failing the test
// if they do not arrive.
func readWithin(t *testing.T, connection net.Conn, n int) []byte {
	t.Helper()
	type readResult struct {
		data []byte
		err  error
	}
	results := make(chan readResult, 1)
	go func() {
		data := make([]byte, n)
		_, err := io.ReadFull(connection, data)
		results <- readResult{data, err}
	}()
	result := testutil.RequireReceive(t, results, 5*time.Second, "reading %d bytes", n)
	if result.err != nil {
		t.Fatalf("ReadFull: %v", result.err)
	}
	return result.data
}

// requireClosedSoon fails the test unless a read on connection reports
// end of stream or an error promptly.
func requireClosedSoon(t *testing.T, connection net.Conn) {
	t.Helper()
	results := make(chan error, 1)
	go func() {
		_, err := connection.Read(make([]byte, 1))
		results <- err
	}()
	if err := testutil.RequireReceive(t, results, 5*time.Second, "connection was not closed"); err == nil {
		t.Fatal("read succeeded on a connection expected to be closed")
	}
}
