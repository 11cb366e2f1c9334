// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

// ErrSourceNotFound is returned when a source file can't be read.
var ErrSourceNotFound = errors.New("source file not found")

// Closure returns all headers that source depends on, directly or
// transitively, sorted. source itself is not included.
// Unresolvable includes are omitted.
// It returns ErrSourceNotFound if source can't be read, and ctx.Err()
// if ctx is done while scanning.
func (s *ScanDeps) Closure(ctx context.Context, source string) ([]string, error) {
	includes, err := s.directIncludes(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, source, err)
	}
	if !s.allowIncludeLoops {
		includes = s.directClosure(ctx, includes)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return includes, nil
	}
	seen := make(map[string]bool)
	for _, incpath := range includes {
		s.walk(ctx, seen, incpath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	delete(seen, canonicalPath(source))
	deps := slices.Sorted(maps.Keys(seen))
	if log.V(1) {
		clog.Infof(ctx, "closure %s -> %d headers", source, len(deps))
	}
	return deps, nil
}

// walk adds fname and everything it includes to seen.
// seen terminates the walk on include cycles and diamonds.
func (s *ScanDeps) walk(ctx context.Context, seen map[string]bool, fname string) {
	if seen[fname] {
		return
	}
	seen[fname] = true
	h := s.ResolveHeader(ctx, fname)
	for _, dep := range h.Deps() {
		s.walk(ctx, seen, dep)
	}
}

// directClosure is used when include loops are not allowed.
// It returns direct includes only, and makes sure every header
// reachable from them is in the cache, so that per-header rules
// can be emitted later by HeaderRules.
// A header already in the cache is not walked again, so headers
// first reached via another path are not expanded here.
func (s *ScanDeps) directClosure(ctx context.Context, includes []string) []string {
	for _, incpath := range includes {
		h := s.ResolveHeader(ctx, incpath)
		s.cacheDeps(ctx, h)
	}
	return includes
}

func (s *ScanDeps) cacheDeps(ctx context.Context, h *HeaderRecord) {
	for _, dep := range h.Deps() {
		if s.cache.Has(dep) {
			continue
		}
		s.cacheDeps(ctx, s.ResolveHeader(ctx, dep))
	}
}
