// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests waiting on a forwarder, a relay, or a probe loop do not need
// direct time.After calls. The timeout only bounds a hung test; it
// never drives the behavior under test.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package depends on no other packages in this module.
package testutil
