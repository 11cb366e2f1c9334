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
	"sync"
	"testing/fstest"
)

// fakeFS is an in-memory FileSystem for tests.
// Paths are cleaned, so "./foo.h", "foo.h" and "/foo.h" are the
// same file.
type fakeFS struct {
	fsys fstest.MapFS

	mu       sync.Mutex
	opens    map[string]int
	openErrs map[string]error
}

func newFakeFS(files map[string]string) *fakeFS {
	fsys := make(fstest.MapFS)
	for name, content := range files {
		fsys[fakeKey(name)] = &fstest.MapFile{Data: []byte(content)}
	}
	return &fakeFS{
		fsys:     fsys,
		opens:    make(map[string]int),
		openErrs: make(map[string]error),
	}
}

func fakeKey(name string) string {
	return strings.TrimPrefix(path.Clean(name), "/")
}

func (f *fakeFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	return fs.Stat(f.fsys, fakeKey(name))
}

func (f *fakeFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.opens[name]++
	err := f.openErrs[name]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.fsys.Open(fakeKey(name))
}

func (f *fakeFS) numOpens(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[name]
}

func (f *fakeFS) setOpenErr(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErrs[name] = err
}
