// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/ipfw/lib/testutil"
)

type bridgeOutcome struct {
	stats BridgeStats
	err   error
}

// startBridge bridges the server ends of two loopback pairs and returns
// the two outer client ends plus a channel that receives the outcome.
func startBridge(t *testing.T) (outerA, outerB *net.TCPConn, outcome <-chan bridgeOutcome) {
	t.Helper()
	outerA, innerA := tcpPair(t)
	outerB, innerB := tcpPair(t)

	results := make(chan bridgeOutcome, 1)
	go func() {
		stats, err := BridgeConnections(innerA, innerB)
		results <- bridgeOutcome{stats: stats, err: err}
	}()
	return outerA, outerB, results
}

func TestBridgeConnections_FullDuplex(t *testing.T) {
	outerA, outerB, outcome := startBridge(t)

	if _, err := outerA.Write([]byte("ping")); err != nil {
		t.Fatalf("Write A: %v", err)
	}
	got := make([]byte, 4)
	if _, err := io.ReadFull(outerB, got); err != nil {
		t.Fatalf("ReadFull B: %v", err)
	}
	if string(got) != "ping" {
		t.Fatalf("B received %q, want %q", got, "ping")
	}

	if _, err := outerB.Write([]byte("pong!")); err != nil {
		t.Fatalf("Write B: %v", err)
	}
	got = make([]byte, 5)
	if _, err := io.ReadFull(outerA, got); err != nil {
		t.Fatalf("ReadFull A: %v", err)
	}
	if string(got) != "pong!" {
		t.Fatalf("A received %q, want %q", got, "pong!")
	}

	outerA.Close()
	result := testutil.RequireReceive(t, outcome, 5*time.Second, "waiting for bridge to finish")
	if result.err != nil {
		t.Fatalf("BridgeConnections returned %v, want nil for a normal close", result.err)
	}
	if result.stats.AToB != 4 || result.stats.BToA != 5 {
		t.Fatalf("stats = %+v, want AToB=4 BToA=5", result.stats)
	}
}

// Closing one side must close the other promptly rather than leaving a
// half-open pair behind.
func TestBridgeConnections_CloseTearsDownBothSides(t *testing.T) {
	for _, closeSide := range []string{"A", "B"} {
		t.Run("close "+closeSide, func(t *testing.T) {
			outerA, outerB, outcome := startBridge(t)

			closing, surviving := outerA, outerB
			if closeSide == "B" {
				closing, surviving = outerB, outerA
			}
			closing.Close()

			testutil.RequireReceive(t, outcome, 5*time.Second, "waiting for bridge to finish")

			readDone := make(chan error, 1)
			go func() {
				_, err := surviving.Read(make([]byte, 1))
				readDone <- err
			}()
			err := testutil.RequireReceive(t, readDone, 5*time.Second, "surviving side was not closed")
			if err == nil {
				t.Fatal("read on surviving side succeeded, want EOF or reset")
			}
		})
	}
}

func TestBridgeConnections_LargePayload(t *testing.T) {
	outerA, outerB, outcome := startBridge(t)

	payload := make([]byte, 1<<20)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	received := make(chan []byte, 1)
	go func() {
		data, _ := io.ReadAll(outerB)
		received <- data
	}()

	if _, err := outerA.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Half-closing A ends the A->B direction after all bytes are
	// delivered; the bridge then closes B, which ends ReadAll.
	if err := outerA.CloseWrite(); err != nil {
		t.Fatalf("CloseWrite: %v", err)
	}

	data := testutil.RequireReceive(t, received, 10*time.Second, "waiting for payload")
	if !bytes.Equal(payload, data) {
		t.Fatalf("payload mismatch: sent %d bytes, got %d bytes", len(payload), len(data))
	}
	result := testutil.RequireReceive(t, outcome, 5*time.Second, "waiting for bridge to finish")
	if result.stats.AToB != int64(len(payload)) {
		t.Fatalf("AToB = %d, want %d", result.stats.AToB, len(payload))
	}
}

// failingConn fails every read with a fixed error.
type failingConn struct {
	net.Conn
	err error
}

func (c *failingConn) Read([]byte) (int, error) { return 0, c.err }

func TestBridgeConnections_ReportsUnexpectedError(t *testing.T) {
	pipeA, _ := net.Pipe()
	pipeB, peerB := net.Pipe()
	defer peerB.Close()

	injected := errors.New("disk on fire")
	_, err := BridgeConnections(&failingConn{Conn: pipeA, err: injected}, pipeB)
	if !errors.Is(err, injected) {
		t.Fatalf("BridgeConnections returned %v, want %v", err, injected)
	}
}

// A peer that aborts with RST ends the first direction with a reset,
// which is a failure rather than a normal close.
func TestBridgeConnections_ReportsReset(t *testing.T) {
	outerA, _, outcome := startBridge(t)

	if err := outerA.SetLinger(0); err != nil {
		t.Fatalf("SetLinger: %v", err)
	}
	outerA.Close()

	result := testutil.RequireReceive(t, outcome, 5*time.Second, "waiting for bridge to finish")
	if !errors.Is(result.err, unix.ECONNRESET) {
		t.Fatalf("BridgeConnections returned %v, want ECONNRESET", result.err)
	}
}
