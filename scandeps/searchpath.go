// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"slices"
	"strings"
)

// DefaultSysIncludeDir is the system include dir.
const DefaultSysIncludeDir = "/usr/include/"

// SearchPaths are include search paths.
// Order matters; first match wins.
type SearchPaths struct {
	// Quote are dirs checked first for `#include "foo.h"`.
	Quote []string

	// Angle are dirs checked for `#include <foo.h>`, and for
	// `#include "foo.h"` not found in Quote.
	Angle []string

	// SysIncludeDir is the system include dir.
	// headers under this dir are not scanned.
	SysIncludeDir string
}

// NewSearchPaths returns search paths for quote and angle dirs.
// If stdInc is true, sysIncludeDir is appended to angle dirs.
// Empty sysIncludeDir means DefaultSysIncludeDir.
func NewSearchPaths(quote, angle []string, stdInc bool, sysIncludeDir string) SearchPaths {
	if sysIncludeDir == "" {
		sysIncludeDir = DefaultSysIncludeDir
	}
	sp := SearchPaths{
		Quote:         slices.Clone(quote),
		Angle:         slices.Clone(angle),
		SysIncludeDir: sysIncludeDir,
	}
	if stdInc {
		sp.Angle = append(sp.Angle, sysIncludeDir)
	}
	return sp
}

// isSystem reports whether canonical path fname is in the system
// include dir.
func (sp SearchPaths) isSystem(fname string) bool {
	return sp.SysIncludeDir != "" && strings.HasPrefix(fname, canonicalDir(sp.SysIncludeDir))
}
