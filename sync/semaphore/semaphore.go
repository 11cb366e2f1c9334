// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package semaphore provides a counting semaphore used to bound
// concurrent file scans.
package semaphore

import (
	"context"
	"sync/atomic"
)

// Semaphore is a semaphore.
// A nil *Semaphore never blocks.
type Semaphore struct {
	name string
	ch   chan struct{}

	reqs atomic.Int64
}

// New creates a new semaphore with name and capacity.
// n <= 0 is treated as 1.
func New(name string, n int) *Semaphore {
	if n <= 0 {
		n = 1
	}
	return &Semaphore{
		name: name,
		ch:   make(chan struct{}, n),
	}
}

// WaitAcquire acquires a semaphore.
// It returns func to release it.
// It fails without acquiring if ctx is already done.
func (s *Semaphore) WaitAcquire(ctx context.Context) (func(), error) {
	if s == nil {
		return func() {}, nil
	}
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	select {
	case s.ch <- struct{}{}:
		s.reqs.Add(1)
		return func() { <-s.ch }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
}

// Do runs f under semaphore.
func (s *Semaphore) Do(ctx context.Context, f func(ctx context.Context) error) error {
	done, err := s.WaitAcquire(ctx)
	if err != nil {
		return err
	}
	defer done()
	return f(ctx)
}

// Name returns name of the semaphore.
func (s *Semaphore) Name() string {
	if s == nil {
		return "<nil>"
	}
	return s.name
}

// Capacity returns capacity of the semaphore.
func (s *Semaphore) Capacity() int {
	if s == nil {
		return 0
	}
	return cap(s.ch)
}

// NumRequests returns total number of served requests.
func (s *Semaphore) NumRequests() int {
	if s == nil {
		return 0
	}
	return int(s.reqs.Load())
}
