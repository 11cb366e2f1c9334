// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc command lines.
package gccutil

import (
	"path/filepath"
	"slices"
	"strings"
)

// CurrentDir is the dir searched first for `#include "..."`
// unless -I- is given.
const CurrentDir = "./"

// IncludeDirs are include dirs given on a gcc command line.
type IncludeDirs struct {
	// Dirs are -I dirs before -I-, or all -I dirs if no -I-.
	Dirs []string

	// SplitDirs are -I dirs after -I-.
	SplitDirs []string

	// Quote are -iquote dirs.
	Quote []string

	// System are -isystem dirs.
	System []string

	// Split is true if -I- is given.
	Split bool

	// NoStdInc is true if -nostdinc is given.
	NoStdInc bool

	// Sysroot is --sysroot dir.
	Sysroot string
}

// ParseIncludeDirs parses args and returns include dirs.
// It only parses flags related to include dirs.
// Other flags are ignored.
func ParseIncludeDirs(args []string) IncludeDirs {
	var d IncludeDirs
	addDir := func(dir string) {
		if d.Split {
			d.SplitDirs = append(d.SplitDirs, dir)
			return
		}
		d.Dirs = append(d.Dirs, dir)
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-I-":
			d.Split = true
			continue
		case "-nostdinc":
			d.NoStdInc = true
			continue
		case "-I", "--include-directory":
			if i+1 < len(args) {
				i++
				addDir(args[i])
			}
			continue
		case "-iquote":
			if i+1 < len(args) {
				i++
				d.Quote = append(d.Quote, args[i])
			}
			continue
		case "-isystem":
			if i+1 < len(args) {
				i++
				d.System = append(d.System, args[i])
			}
			continue
		case "--sysroot":
			if i+1 < len(args) {
				i++
				d.Sysroot = args[i]
			}
			continue
		}
		switch {
		case strings.HasPrefix(arg, "-I-"):
			// not a dir, e.g. -I-foo.
		case strings.HasPrefix(arg, "-I"):
			addDir(strings.TrimPrefix(arg, "-I"))
		case strings.HasPrefix(arg, "--include-directory="):
			addDir(strings.TrimPrefix(arg, "--include-directory="))
		case strings.HasPrefix(arg, "-iquote"):
			d.Quote = append(d.Quote, strings.TrimPrefix(arg, "-iquote"))
		case strings.HasPrefix(arg, "-isystem"):
			d.System = append(d.System, strings.TrimPrefix(arg, "-isystem"))
		case strings.HasPrefix(arg, "--sysroot="):
			d.Sysroot = strings.TrimPrefix(arg, "--sysroot=")
		}
	}
	return d
}

// SearchLists returns search dirs for `#include "..."` and
// `#include <...>`.
//
// Without -I-, "..." is searched in the current dir, -iquote dirs and
// -I dirs, and <...> in -I dirs and -isystem dirs.
// With -I-, "..." is searched in -iquote dirs and -I dirs before -I-,
// and <...> in -I dirs after -I- and -isystem dirs. The current dir is
// not searched.
// The system include dir is not included.
func (d IncludeDirs) SearchLists() (quote, angle []string) {
	if d.Split {
		quote = append(slices.Clone(d.Quote), d.Dirs...)
		angle = append(slices.Clone(d.SplitDirs), d.System...)
		return quote, angle
	}
	quote = append([]string{CurrentDir}, d.Quote...)
	quote = append(quote, d.Dirs...)
	angle = append(slices.Clone(d.Dirs), d.System...)
	return quote, angle
}

// SysIncludeDir returns the system include dir under sysroot,
// or "" if no sysroot is given.
func (d IncludeDirs) SysIncludeDir() string {
	if d.Sysroot == "" {
		return ""
	}
	return strings.TrimSuffix(filepath.ToSlash(d.Sysroot), "/") + "/usr/include/"
}
