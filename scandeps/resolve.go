// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"io"
	"io/fs"
	"path"
	"strings"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

// FileSystem is a filesystem used by scandeps.
// osfs.OSFS implements it.
type FileSystem interface {
	Stat(ctx context.Context, fname string) (fs.FileInfo, error)
	Open(ctx context.Context, fname string) (io.ReadCloser, error)
}

// PathResolver resolves include names to file paths.
type PathResolver struct {
	fsys  FileSystem
	paths SearchPaths
}

// NewPathResolver creates new PathResolver on fsys with paths.
func NewPathResolver(fsys FileSystem, paths SearchPaths) *PathResolver {
	return &PathResolver{
		fsys:  fsys,
		paths: paths,
	}
}

// Resolve resolves include name to the canonical path of the file.
// quoted is true for `#include "name"`, false for `#include <name>`.
// includer is the path of the including file.
// It returns false if name is not found.
func (r *PathResolver) Resolve(ctx context.Context, name string, quoted bool, includer string) (string, bool) {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") {
		if r.exists(ctx, name) {
			return canonicalPath(name), true
		}
		return "", false
	}
	if quoted {
		if p, ok := r.search(ctx, r.paths.Quote, name); ok {
			return canonicalPath(p), true
		}
	}
	if p, ok := r.search(ctx, r.paths.Angle, name); ok {
		return canonicalPath(p), true
	}
	if !quoted {
		if log.V(1) {
			clog.Infof(ctx, "not found <%s>", name)
		}
		return "", false
	}
	// assume in the same dir as the including file.
	p := combinePath(includerDir(includer), name)
	if r.exists(ctx, p) {
		return canonicalPath(p), true
	}
	if log.V(1) {
		clog.Infof(ctx, "not found %q from %s", name, includer)
	}
	return "", false
}

func (r *PathResolver) search(ctx context.Context, dirs []string, name string) (string, bool) {
	for _, dir := range dirs {
		p := combinePath(dir, name)
		if r.exists(ctx, p) {
			return p, true
		}
	}
	return "", false
}

func (r *PathResolver) exists(ctx context.Context, fname string) bool {
	fi, err := r.fsys.Stat(ctx, fname)
	if err != nil {
		return false
	}
	return !fi.IsDir()
}

// combinePath joins dir and name with a single slash.
func combinePath(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// includerDir returns dir part of fname with trailing slash,
// or "./" if fname has no dir part.
func includerDir(fname string) string {
	i := strings.LastIndexByte(fname, '/')
	if i < 0 {
		return "./"
	}
	return fname[:i+1]
}

// canonicalPath returns the form of fname used as the header cache key
// and written in Makefile.
// Relative paths are cleaned and start with "./" unless they go up,
// so "src/x.h", "./src/x.h" and "src/../src/x.h" are the same header.
func canonicalPath(fname string) string {
	p := path.Clean(fname)
	if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return p
	}
	return "./" + p
}

// canonicalDir is canonicalPath for dir, with a trailing slash.
func canonicalDir(dir string) string {
	switch p := path.Clean(dir); p {
	case ".":
		return "./"
	case "/":
		return "/"
	}
	return canonicalPath(dir) + "/"
}
