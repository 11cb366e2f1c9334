// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make: parsing and writing
// dependency rules, and managing the generated part of Makefile.
package makeutil

import (
	"bytes"
	"context"
	"io/fs"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

// ParseDepsFile reads the depfile fname on fsys and returns the
// inputs of its first rule. Empty fname has no inputs.
func ParseDepsFile(ctx context.Context, fsys fs.FS, fname string) ([]string, error) {
	if fname == "" {
		return nil, nil
	}
	b, err := fs.ReadFile(fsys, fname)
	if err != nil {
		return nil, err
	}
	inputs := ParseDeps(b)
	if log.V(1) {
		clog.Infof(ctx, "depfile %s: %d inputs %q", fname, len(inputs), inputs)
	}
	return inputs, nil
}

// ParseDeps returns the inputs of the first rule in depfile contents
// generated by a compiler (e.g. gcc -MMD) or by depend.
//
//	main.o: main.cpp ./include/foo.h \
//	  ./bar.h
//
// Backslash-newline continues the rule, and backslash-space is a space
// in a path. The rule ends at a newline; later rules, such as phony
// targets by -MP, are ignored.
func ParseDeps(b []byte) []string {
	_, rest, ok := bytes.Cut(b, []byte{':'})
	if !ok {
		return nil
	}
	var inputs []string
	var path []byte
	flush := func() {
		if len(path) > 0 {
			inputs = append(inputs, string(path))
			path = path[:0]
		}
	}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch c {
		case '\\':
			if i+1 == len(rest) {
				path = append(path, c)
				continue
			}
			i++
			switch rest[i] {
			case ' ':
				path = append(path, ' ')
			case '\r':
				if i+1 < len(rest) && rest[i+1] == '\n' {
					i++
				}
				flush()
			case '\n':
				flush()
			default:
				path = append(path, c, rest[i])
			}
		case ' ', '\t', '\r':
			flush()
		case '\n':
			flush()
			return inputs
		default:
			path = append(path, c)
		}
	}
	flush()
	return inputs
}
