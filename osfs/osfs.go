// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osfs provides OS Filesystem access.
package osfs

import (
	"context"
	"io"
	"io/fs"
	"os"
	"runtime"
	"time"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
	"go.chromium.org/infra/build/mkdeps/o11y/iometrics"
)

// OSFS provides OS Filesystem access.
// It counts metrics by iometrics.
type OSFS struct {
	*iometrics.IOMetrics
}

// New creates new OSFS.
func New(name string) *OSFS {
	return &OSFS{IOMetrics: iometrics.New(name)}
}

func logSlow(ctx context.Context, name string, dur time.Duration, err error) {
	buf := make([]byte, 4*1024)
	n := runtime.Stack(buf, false)
	clog.Warningf(ctx, "slow op %s: %s %v\n%s", name, dur, err, buf[:n])
}

// Stat returns a FileInfo describing the named file.
func (fsys *OSFS) Stat(ctx context.Context, fname string) (fs.FileInfo, error) {
	started := time.Now()
	fi, err := os.Stat(fname)
	fsys.StatDone(err)
	if dur := time.Since(started); dur > 1*time.Minute {
		logSlow(ctx, fname, dur, err)
	}
	return fi, err
}

// Open opens the named file for reading.
// Bytes read through the returned reader are counted when it is closed.
func (fsys *OSFS) Open(ctx context.Context, fname string) (io.ReadCloser, error) {
	started := time.Now()
	f, err := os.Open(fname)
	fsys.OpenDone(err)
	if err != nil {
		return nil, err
	}
	return &file{ctx: ctx, file: f, started: started, fsys: fsys}, nil
}

type file struct {
	ctx     context.Context
	file    *os.File
	started time.Time
	fsys    *OSFS
	n       int
	err     error
}

func (f *file) Read(buf []byte) (int, error) {
	n, err := f.file.Read(buf)
	f.n += n
	if err != nil && err != io.EOF {
		f.err = err
	}
	return n, err
}

func (f *file) Close() error {
	name := f.file.Name()
	err := f.file.Close()
	rerr := f.err
	if rerr == nil {
		rerr = err
	}
	f.fsys.ReadDone(f.n, rerr)
	if dur := time.Since(f.started); dur > 1*time.Minute {
		logSlow(f.ctx, name, dur, err)
	}
	return err
}
