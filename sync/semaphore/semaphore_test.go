// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package semaphore_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.chromium.org/infra/build/mkdeps/sync/semaphore"
)

func TestWaitAcquire(t *testing.T) {
	ctx := context.Background()
	sema := semaphore.New(t.Name(), 2)
	if name := sema.Name(); name != t.Name() {
		t.Errorf("Name=%q; want %q", name, t.Name())
	}
	if n := sema.Capacity(); n != 2 {
		t.Errorf("Capacity=%d; want %d", n, 2)
	}

	var dones []func()
	for i := 0; i < 2; i++ {
		done, err := sema.WaitAcquire(ctx)
		if err != nil {
			t.Fatalf("WaitAcquire %d: %v", i, err)
		}
		dones = append(dones, done)
	}
	func() {
		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := sema.WaitAcquire(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("WaitAcquire=%v; want %v", err, context.DeadlineExceeded)
		}
	}()
	dones[0]()
	done, err := sema.WaitAcquire(ctx)
	if err != nil {
		t.Fatalf("WaitAcquire after release: %v", err)
	}
	done()
	dones[1]()
	if n := sema.NumRequests(); n != 3 {
		t.Errorf("NumRequests=%d; want %d", n, 3)
	}
}

func TestWaitAcquire_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sema := semaphore.New(t.Name(), 1)
	for range 10 {
		_, err := sema.WaitAcquire(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("WaitAcquire(canceled ctx)=%v; want %v", err, context.Canceled)
		}
	}
	if n := sema.NumRequests(); n != 0 {
		t.Errorf("NumRequests=%d; want 0", n)
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	sema := semaphore.New(t.Name(), 3)

	var running, maxRunning, called atomic.Int32
	f := func(ctx context.Context) error {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		called.Add(1)
		time.Sleep(time.Millisecond)
		return nil
	}

	const count = 50
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sema.Do(ctx, f)
			if err != nil {
				t.Errorf("Do %d: %v", i, err)
			}
		}()
	}
	wg.Wait()
	if n := called.Load(); n != count {
		t.Errorf("called=%d; want %d", n, count)
	}
	if n := maxRunning.Load(); n > 3 {
		t.Errorf("max running=%d; want <= 3", n)
	}
}

func TestDo_err(t *testing.T) {
	ctx := context.Background()
	sema := semaphore.New(t.Name(), 1)
	wantErr := errors.New("error")
	err := sema.Do(ctx, func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Do %v; want %v", err, wantErr)
	}
}

func TestNil(t *testing.T) {
	var sema *semaphore.Semaphore
	done, err := sema.WaitAcquire(context.Background())
	if err != nil {
		t.Errorf("nil WaitAcquire=%v; want nil", err)
	}
	done()
	if n := sema.Capacity(); n != 0 {
		t.Errorf("nil Capacity=%d; want 0", n)
	}
}
