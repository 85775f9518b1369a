// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package forward

import (
	"errors"
	"fmt"
	"net/netip"
)

// Component names the unit that terminated the forwarder.
type Component string

const (
	ComponentMonitor  Component = "monitor"
	ComponentAcceptor Component = "acceptor"
)

// Kinds of FatalError. Match them with errors.Is.
var (
	// ErrProbeConnect means the monitor could not open a probe
	// connection to the target.
	ErrProbeConnect = errors.New("cannot open probe connection")

	// ErrTargetConnect means the acceptor could not connect to the
	// target for an accepted connection.
	ErrTargetConnect = errors.New("cannot connect to target")
)

// FatalError terminates the forwarder. Both kinds mean the same thing,
// that the target is unreachable, but name different detectors.
//
// FatalError unwraps to both Kind and Err, so errors.Is matches the
// kind sentinel as well as the underlying network error.
type FatalError struct {
	Component Component
	Kind      error
	Target    netip.AddrPort
	Err       error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Component, e.Kind, e.Err)
}

func (e *FatalError) Unwrap() []error { return []error{e.Kind, e.Err} }
