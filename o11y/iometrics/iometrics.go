// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package iometrics manages I/O metrics.
package iometrics

import "sync"

// IOMetrics holds I/O metrics of file lookups and reads.
type IOMetrics struct {
	name string

	mu sync.Mutex

	stats    int64
	statErrs int64
	opens    int64
	openErrs int64
	rBytes   int64
	rErrs    int64
}

// New returns new iometrics for name.
func New(name string) *IOMetrics {
	return &IOMetrics{name: name}
}

// StatDone counts when a stat (existence check) is done.
// A not-exist error counts as an error too.
func (m *IOMetrics) StatDone(err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats++
	if err != nil {
		m.statErrs++
	}
}

// OpenDone counts when a file open is done.
func (m *IOMetrics) OpenDone(err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	if err != nil {
		m.openErrs++
	}
}

// ReadDone counts when reading an opened file is done.
// n is the number of bytes, and err is a read error.
func (m *IOMetrics) ReadDone(n int, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rBytes += int64(n)
	if err != nil {
		m.rErrs++
	}
}

// Name returns the name of the iometrics.
func (m *IOMetrics) Name() string {
	if m == nil {
		return "<nil>"
	}
	return m.name
}

// Stats holds iometrics.
type Stats struct {
	// Number of stat operations.
	Stats int64
	// Number of stat errors, mostly missing files on search paths.
	StatErrs int64

	// Number of open operations.
	Opens int64
	// Number of open errors.
	OpenErrs int64

	// Number of read bytes.
	RBytes int64
	// Number of read errors.
	RErrs int64
}

// Stats returns the snapshot of the iometrics.
func (m *IOMetrics) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Stats:    m.stats,
		StatErrs: m.statErrs,
		Opens:    m.opens,
		OpenErrs: m.openErrs,
		RBytes:   m.rBytes,
		RErrs:    m.rErrs,
	}
}
