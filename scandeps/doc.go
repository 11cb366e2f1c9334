// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps provides a simple C/C++ header dependency scanner
// that produces Makefile dependency rules, like `-MM` of compilers.
//
// It only checks the following forms of #include
//
//	#include "foo.h"
//	#include <foo.h>
//
// It doesn't expand macros nor evaluate `#if`/`#ifdef`, so it reports
// every #include it sees, even ones in dead code.  Extra dependencies
// only cause extra rebuilds; missing ones cause stale builds.
//
// "foo.h" is searched in quote dirs, then angle dirs, then the dir of
// the including file.  <foo.h> is searched in angle dirs only.
// Headers under the system include dir are leaves; they are not scanned.
//
// Each header is scanned at most once per ScanDeps and its direct
// includes are cached.  The cache entry is created before the header is
// scanned, so include cycles terminate.  The closure for a source file
// is computed by walking the cache.
package scandeps
