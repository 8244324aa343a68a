// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

//go:build windows

package config

import "io/fs"

// ExposedMode always reports false: access is governed by ACLs, not mode bits.
func ExposedMode(string) (fs.FileMode, bool) { return 0, false }

// WarnInsecurePermissions does nothing on Windows.
func WarnInsecurePermissions(string) {}
