// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package forward

import (
	"errors"
	"fmt"
	"net/netip"
)

// Endpoint roles, used in error messages.
const (
	RoleListen = "listen"
	RoleTarget = "target"
)

// EndpointError reports an address that cannot be used. It is a
// startup error: it is returned before any connection is attempted.
type EndpointError struct {
	Role  string
	Value string
	Err   error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("invalid %s address %q: %v", e.Role, e.Value, e.Err)
}

func (e *EndpointError) Unwrap() error { return e.Err }

// ParseEndpoint parses value as a numeric socket address: "ip:port" for
// IPv4 or "[ip]:port" for IPv6, optionally with a zone. Host names are
// rejected; the forwarder resolves nothing at runtime.
//
// A target endpoint must have a non-zero port. A listen endpoint may
// use port 0 to bind an ephemeral port.
func ParseEndpoint(role, value string) (netip.AddrPort, error) {
	addrPort, err := netip.ParseAddrPort(value)
	if err != nil {
		return netip.AddrPort{}, &EndpointError{Role: role, Value: value, Err: err}
	}
	if role == RoleTarget && addrPort.Port() == 0 {
		return netip.AddrPort{}, &EndpointError{Role: role, Value: value, Err: errors.New("port 0 cannot be dialed")}
	}
	return addrPort, nil
}
