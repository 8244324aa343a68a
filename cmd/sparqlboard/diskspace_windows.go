// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import "github.com/sigil-dev/sparqlboard/pkg/health"

func checkDiskSpace(dir string) health.Check {
	return health.Warn("Disk Space", "not checked on windows ("+dir+")")
}
