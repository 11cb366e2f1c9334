// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
	"go.chromium.org/infra/build/mkdeps/runtimex"
	"go.chromium.org/infra/build/mkdeps/sync/semaphore"
	"go.chromium.org/infra/build/mkdeps/toolsupport/makeutil"
)

// ScanDeps is a simple C/C++ dependency scanner.
// It holds the header cache for a run.
type ScanDeps struct {
	fsys     FileSystem
	paths    SearchPaths
	resolver *PathResolver
	ignore   *regexp.Regexp

	allowIncludeLoops bool

	cache *HeaderCache
	sema  *semaphore.Semaphore
}

// Options are options of ScanDeps.
type Options struct {
	// SearchPaths are include search paths.
	SearchPaths SearchPaths

	// Ignore is a pattern of include names and resolved paths to ignore.
	Ignore *regexp.Regexp

	// DisallowIncludeLoops makes Closure return only direct includes,
	// and Run emit a rule for each header with its direct includes.
	// GNU make doesn't understand such rules when headers include
	// each other, so it is off by default.
	DisallowIncludeLoops bool

	// MaxScans limits number of concurrent header scans.
	// Default is runtimex.NumCPU().
	MaxScans int
}

// New creates new ScanDeps.
func New(fsys FileSystem, opts Options) *ScanDeps {
	return &ScanDeps{
		fsys:              fsys,
		paths:             opts.SearchPaths,
		resolver:          NewPathResolver(fsys, opts.SearchPaths),
		ignore:            opts.Ignore,
		allowIncludeLoops: !opts.DisallowIncludeLoops,
		cache:             NewHeaderCache(),
		sema:              semaphore.New("headerscan", runtimex.Jobs(opts.MaxScans)),
	}
}

// Cache returns the header cache.
func (s *ScanDeps) Cache() *HeaderCache {
	return s.cache
}

// Target is a source file and its make rule name.
type Target struct {
	// Source is the source file path to scan.
	Source string

	// Rule is the target name in Makefile.
	// It must be exactly the same as in the source file list of Makefile.
	Rule string
}

// RunOptions are options of Run.
type RunOptions struct {
	// ObjDir is a make variable name for the object dir.
	// If set, rule names are rewritten to ${ObjDir}/basename.
	ObjDir string

	// Jobs is the number of sources scanned in parallel.
	// Jobs <= 1 scans sources one by one.
	Jobs int
}

// RunStats are stats of Run.
type RunStats struct {
	// Targets is number of targets.
	Targets int

	// Rules is number of rules written.
	Rules int

	// Skipped are sources that couldn't be read.
	Skipped []string

	// Headers is number of distinct headers in the cache.
	Headers int

	// Scans is number of header files scanned.
	Scans int

	Duration time.Duration
}

// Run computes closures of targets and writes Makefile rules to w
// in the order of targets.
// Sources that can't be read are skipped and reported in RunStats.
// It returns error only when writing to w fails or ctx is done.
func (s *ScanDeps) Run(ctx context.Context, targets []Target, w io.Writer, opts RunOptions) (RunStats, error) {
	started := time.Now()
	stats := RunStats{Targets: len(targets)}
	var err error
	if opts.Jobs <= 1 {
		err = s.runSerial(ctx, targets, w, opts, &stats)
	} else {
		err = s.runParallel(ctx, targets, w, opts, &stats)
	}
	if err != nil {
		return stats, err
	}
	if !s.allowIncludeLoops {
		n, err := s.HeaderRules(w, opts.ObjDir)
		stats.Rules += n
		if err != nil {
			return stats, err
		}
	}
	stats.Headers = s.cache.Len()
	stats.Scans = s.cache.Scans()
	stats.Duration = time.Since(started)
	clog.Infof(ctx, "scandeps %d targets: rules=%d skipped=%d headers=%d scans=%d in %s (%s cap=%d reqs=%d)", stats.Targets, stats.Rules, len(stats.Skipped), stats.Headers, stats.Scans, stats.Duration, s.sema.Name(), s.sema.Capacity(), s.sema.NumRequests())
	return stats, nil
}

func (s *ScanDeps) runSerial(ctx context.Context, targets []Target, w io.Writer, opts RunOptions, stats *RunStats) error {
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		deps, cerr := s.Closure(clog.WithLabel(ctx, "source", t.Source), t.Source)
		err := s.emit(ctx, w, t, deps, cerr, opts, stats)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ScanDeps) runParallel(ctx context.Context, targets []Target, w io.Writer, opts RunOptions, stats *RunStats) error {
	type result struct {
		deps []string
		err  error
	}
	results := make([]result, len(targets))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Jobs)
	for i, t := range targets {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			deps, err := s.Closure(clog.WithLabel(gctx, "source", t.Source), t.Source)
			results[i] = result{deps: deps, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for i, t := range targets {
		if err := s.emit(ctx, w, t, results[i].deps, results[i].err, opts, stats); err != nil {
			return err
		}
	}
	return nil
}

func (s *ScanDeps) emit(ctx context.Context, w io.Writer, t Target, deps []string, err error, opts RunOptions, stats *RunStats) error {
	if err != nil {
		if errors.Is(err, ErrSourceNotFound) {
			clog.Warningf(ctx, "source file %q not found", t.Source)
			stats.Skipped = append(stats.Skipped, t.Source)
			return nil
		}
		return err
	}
	if len(deps) == 0 {
		if log.V(1) {
			clog.Infof(ctx, "no deps for %s", t.Source)
		}
		return nil
	}
	err = makeutil.WriteRule(w, t.Rule, opts.ObjDir, deps)
	if err != nil {
		return fmt.Errorf("write rule for %s: %w", t.Rule, err)
	}
	stats.Rules++
	return nil
}

// HeaderRules writes a rule for each cached header with its direct
// includes, and returns number of rules written.
// Headers without includes have no rule.
func (s *ScanDeps) HeaderRules(w io.Writer, objDir string) (int, error) {
	n := 0
	for _, h := range s.cache.Records() {
		deps := h.Deps()
		if len(deps) == 0 {
			continue
		}
		err := makeutil.WriteRule(w, h.Path, objDir, deps)
		if err != nil {
			return n, fmt.Errorf("write rule for %s: %w", h.Path, err)
		}
		n++
	}
	return n, nil
}

// Request is a request to scan deps, used by the scandeps subcommand.
type Request struct {
	// Sources are source files.
	Sources []string `json:"sources"`

	// QuoteDirs are search paths for `#include "..."`.
	QuoteDirs []string `json:"quote_dirs,omitempty"`

	// AngleDirs are search paths for `#include <...>`.
	AngleDirs []string `json:"angle_dirs,omitempty"`

	// SysIncludeDir is the system include dir.
	// default is DefaultSysIncludeDir.
	SysIncludeDir string `json:"sys_include_dir,omitempty"`

	// NoStdInc excludes SysIncludeDir from AngleDirs.
	NoStdInc bool `json:"no_std_inc,omitempty"`

	// IgnorePattern is a regexp of includes to ignore.
	IgnorePattern string `json:"ignore_pattern,omitempty"`
}

// Options returns Options for the request.
func (req Request) Options() (Options, error) {
	opts := Options{
		SearchPaths: NewSearchPaths(req.QuoteDirs, req.AngleDirs, !req.NoStdInc, req.SysIncludeDir),
	}
	if req.IgnorePattern != "" {
		re, err := regexp.Compile(req.IgnorePattern)
		if err != nil {
			return Options{}, fmt.Errorf("bad ignore pattern %q: %w", req.IgnorePattern, err)
		}
		opts.Ignore = re
	}
	return opts, nil
}
