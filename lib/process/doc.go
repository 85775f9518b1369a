// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers: fatal error
// reporting to stderr when the structured logger may not be
// initialized, and the process exit that follows an unrecoverable
// error in main().
//
// The forwarder's fatal errors already name the failing component
// (monitor or acceptor) and the target endpoint, so [Fatal] prints
// them unchanged.
package process
