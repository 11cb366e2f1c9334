// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

// HeaderRecord is a scan result of a header file.
type HeaderRecord struct {
	// Path is the resolved path of the header.
	Path string

	// direct includes, sorted and unique. never contains Path.
	deps []string

	// closed when deps is populated.
	done chan struct{}

	// set if the scan was interrupted. such a record is no longer
	// in the cache.
	err error
}

// Deps returns resolved paths of headers that the header directly
// includes, sorted. Callers must not modify it.
func (h *HeaderRecord) Deps() []string {
	<-h.done
	return h.deps
}

// HeaderCache holds HeaderRecords by resolved path.
// Records are never evicted.
type HeaderCache struct {
	mu sync.Mutex
	m  map[string]*HeaderRecord

	scans atomic.Int64
}

// NewHeaderCache creates new HeaderCache.
func NewHeaderCache() *HeaderCache {
	return &HeaderCache{
		m: make(map[string]*HeaderRecord),
	}
}

// getOrInsert returns a record for fname.
// It returns true if the record is newly inserted, in which case
// the caller must populate it and close its done.
func (c *HeaderCache) getOrInsert(fname string) (*HeaderRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.m[fname]; ok {
		return h, false
	}
	h := &HeaderRecord{
		Path: fname,
		done: make(chan struct{}),
	}
	c.m[fname] = h
	return h, true
}

// remove removes h from the cache, if it is still there.
func (c *HeaderCache) remove(h *HeaderRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m[h.Path] == h {
		delete(c.m, h.Path)
	}
}

// Has reports whether fname is in the cache.
func (c *HeaderCache) Has(fname string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.m[fname]
	return ok
}

// Len returns number of headers in the cache.
func (c *HeaderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Scans returns number of header files that have been scanned.
func (c *HeaderCache) Scans() int {
	return int(c.scans.Load())
}

// Records returns all records sorted by path.
func (c *HeaderCache) Records() []*HeaderRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs := make([]*HeaderRecord, 0, len(c.m))
	for _, k := range slices.Sorted(maps.Keys(c.m)) {
		recs = append(recs, c.m[k])
	}
	return recs
}

// ResolveHeader returns the HeaderRecord for the canonical header path.
// The header is scanned only the first time it is requested.
// If ctx is done before the scan starts, the returned record has no
// deps and is not cached, so a later call scans it.
func (s *ScanDeps) ResolveHeader(ctx context.Context, fname string) *HeaderRecord {
	for {
		h, inserted := s.cache.getOrInsert(fname)
		if inserted {
			s.populate(ctx, h)
			return h
		}
		<-h.done
		if h.err != nil && ctx.Err() == nil {
			// interrupted in other caller's ctx.
			continue
		}
		return h
	}
}

// populate scans h and closes h.done.
func (s *ScanDeps) populate(ctx context.Context, h *HeaderRecord) {
	defer close(h.done)
	if s.paths.isSystem(h.Path) {
		if log.V(2) {
			clog.Infof(ctx, "system header %s", h.Path)
		}
		return
	}
	err := s.sema.Do(ctx, func(ctx context.Context) error {
		s.cache.scans.Add(1)
		deps, err := s.directIncludes(ctx, h.Path)
		if err != nil {
			// treat unreadable header as no dependencies.
			if log.V(1) {
				clog.Infof(ctx, "scan %s: %v", h.Path, err)
			}
			return nil
		}
		h.deps = deps
		return nil
	})
	if err != nil {
		clog.Warningf(ctx, "scan %s: %v", h.Path, err)
		h.err = err
		s.cache.remove(h)
		return
	}
	if log.V(1) {
		clog.Infof(ctx, "header %s -> %q", h.Path, h.deps)
	}
}

// directIncludes scans fname and returns resolved paths of files
// it includes, sorted and unique, excluding fname itself.
// It returns error only if fname can't be opened.
func (s *ScanDeps) directIncludes(ctx context.Context, fname string) ([]string, error) {
	r, err := s.fsys.Open(ctx, fname)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	self := canonicalPath(fname)
	var deps []string
	for inc := range CPPIncludes(ctx, r, s.ignore) {
		incpath, ok := s.resolver.Resolve(ctx, inc.Name, inc.Quoted, fname)
		if !ok {
			continue
		}
		if s.ignore != nil && s.ignore.MatchString(incpath) {
			if log.V(1) {
				clog.Infof(ctx, "ignore %s", incpath)
			}
			continue
		}
		if incpath == self {
			continue
		}
		deps = insertSorted(deps, incpath)
	}
	return deps, nil
}

func insertSorted(list []string, s string) []string {
	i, found := slices.BinarySearch(list, s)
	if found {
		return list
	}
	return slices.Insert(list, i, s)
}
