// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for ipfw.
//
// Configuration is loaded from a single file named either by the
// IPFW_CONFIG environment variable (via [Load]) or a --config flag (via
// [LoadFile]). There is no automatic file search. Command-line
// arguments given explicitly take precedence over file values; that
// merge happens in cmd/ipfw, not here.
//
// ${VAR} and ${VAR:-default} patterns in the listen and target
// addresses are expanded after loading, so one file can serve several
// hosts:
//
//	listen: "[::]:${IPFW_PORT:-8443}"
//	target: "${IPFW_TARGET}"
//	v6_only: true
//	log:
//	  level: debug
//	  format: json
//
// Address syntax is checked by forward.ParseEndpoint, not by
// [Config.Validate]; Validate only checks presence and enumerations.
//
// This package depends on no other packages in this module.
package config
