// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestParseDeps(t *testing.T) {
	for _, tc := range []struct {
		name     string
		depsfile []byte
		want     []string
	}{
		{
			name:     "simple",
			depsfile: []byte("foo.o:\tbar baz qux"),
			want: []string{
				"bar",
				"baz",
				"qux",
			},
		},
		{
			name:     "spaceinname",
			depsfile: []byte(`foo\ bar.o: baz\ qux`),
			want: []string{
				"baz qux",
			},
		},
		{
			name:     "newlinewhitespaces",
			depsfile: []byte("foo.o :\tbar\\\n\tbaz\\\r\n  qux"),
			want: []string{
				"bar",
				"baz",
				"qux",
			},
		},
		{
			name:     "backslashes",
			depsfile: []byte("foo\\bar.o: baz\\qux\\\n  quux\\corge"),
			want: []string{
				`baz\qux`,
				`quux\corge`,
			},
		},
		{
			name:     "crlf-continuation",
			depsfile: []byte("foo.o: bar\\\r\n  baz\r\n"),
			want: []string{
				"bar",
				"baz",
			},
		},
		{
			name:     "mkdeps",
			depsfile: []byte("main.o: ./bar.h ./include/foo.h\n\nother.o: ./baz.h\n\n"),
			want: []string{
				"./bar.h",
				"./include/foo.h",
			},
		},
		{
			name:     "no-inputs",
			depsfile: []byte("foo.o:\nbar.h:\n"),
		},
		{
			name:     "trailing-backslash",
			depsfile: []byte("foo.o: bar\\ baz\\"),
			want: []string{
				"bar baz\\",
			},
		},
		{
			name: "rust-multi",
			depsfile: []byte(`clang_x64_for_rust_host_build_tools/obj/third_party/rust/unicode_ident/v1/lib/libunicode_ident-unicode_ident-1.rlib: ../../third_party/rust/unicode_ident/v1/crate/src/lib.rs ../../third_party/rust/unicode_ident/v1/crate/src/tables.rs

../../third_party/rust/unicode_ident/v1/crate/src/lib.rs:
../../third_party/rust/unicode_ident/v1/crate/src/tables.rs:
`),
			want: []string{
				"../../third_party/rust/unicode_ident/v1/crate/src/lib.rs",
				"../../third_party/rust/unicode_ident/v1/crate/src/tables.rs",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDeps(tc.depsfile)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseDeps(%q) -want +got:\n%s", tc.depsfile, diff)
			}
		})
	}
}

func TestParseDepsFile(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"obj/foo.o.d": &fstest.MapFile{
			Data: []byte("obj/foo.o: ../../foo.cc ../../foo.h \\\n ../../bar.h\n"),
		},
	}
	got, err := ParseDepsFile(ctx, fsys, "obj/foo.o.d")
	if err != nil {
		t.Fatalf("ParseDepsFile(ctx, fsys, %q)=%v, %v; want nil err", "obj/foo.o.d", got, err)
	}
	want := []string{"../../foo.cc", "../../foo.h", "../../bar.h"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDepsFile -want +got:\n%s", diff)
	}

	_, err = ParseDepsFile(ctx, fsys, "obj/missing.o.d")
	if err == nil {
		t.Errorf("ParseDepsFile(ctx, fsys, missing)=nil err; want err")
	}
	got, err = ParseDepsFile(ctx, fsys, "")
	if got != nil || err != nil {
		t.Errorf("ParseDepsFile(ctx, fsys, \"\")=%v, %v; want nil, nil", got, err)
	}
}
