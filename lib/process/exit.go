// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// ExitCode is returned by binaries when run() fails.
const ExitCode = 1

// exit is replaced in tests.
var exit = os.Exit

// Fatal writes "error: err" to stderr and exits with ExitCode. Use it
// in main() for errors from run().
func Fatal(err error) {
	Report(os.Stderr, err)
	exit(ExitCode)
}

// Report writes the diagnostic line Fatal prints, without exiting.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
