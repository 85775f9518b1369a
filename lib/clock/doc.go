// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the forwarder's
// polling loops.
//
// Production code holds a [Clock] and waits with Clock.After instead of
// calling time.After or time.Sleep directly. [Real] is backed by the
// time package. [Fake] returns a [FakeClock] whose time only moves when
// the test calls Advance, so a 100 ms poll interval can be stepped
// deterministically:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	monitor := &forward.Monitor{Clock: fake, ...}
//	go monitor.Run(ctx)
//	fake.WaitForTimers(1)                // the monitor is now waiting
//	fake.Advance(forward.ProbeInterval) // release it
package clock
