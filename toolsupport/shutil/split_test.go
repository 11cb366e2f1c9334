// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	for _, tc := range []struct {
		s    string
		want []string
	}{
		{
			s: `-D_FORTIFY_SOURCE=2 -DCR_CLANG_REVISION=\"llvmorg-13-init-14086-ge1b8fde1-1\" -DNDEBUG -I../.. -Igen -I../../third_party/abseil/src -fPIE --sysroot=../../build/linux/debian_sid_amd64-sysroot -O2 -std=c++14 -nostdinc++ -isystem../../buildtools/third_party/libc++/trunk/include`,
			want: []string{
				"-D_FORTIFY_SOURCE=2",
				`-DCR_CLANG_REVISION="llvmorg-13-init-14086-ge1b8fde1-1"`,
				"-DNDEBUG",
				"-I../..",
				"-Igen",
				"-I../../third_party/abseil/src",
				"-fPIE",
				"--sysroot=../../build/linux/debian_sid_amd64-sysroot",
				"-O2",
				"-std=c++14",
				"-nostdinc++",
				"-isystem../../buildtools/third_party/libc++/trunk/include",
			},
		},
		{
			s: `-I. -DNAME="a b" -I'dir with space' -I"quoted \"dir\""`,
			want: []string{
				"-I.",
				"-DNAME=a b",
				"-Idir with space",
				`-Iquoted "dir"`,
			},
		},
		{
			s:    "  -I.\t-Iinclude\n ",
			want: []string{"-I.", "-Iinclude"},
		},
		{
			s:    `-DEMPTY= "" ''`,
			want: []string{"-DEMPTY=", "", ""},
		},
		{
			s:    `-I'it'\''s'`,
			want: []string{"-Iit's"},
		},
		{
			s: "",
		},
	} {
		got, err := Split(tc.s)
		if err != nil {
			t.Errorf("Split(%q)=%q, %v; want nil error", tc.s, got, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Split(%q); diff -want +got:\n%s", tc.s, diff)
		}
	}
}

func TestSplit_Error(t *testing.T) {
	for _, s := range []string{
		`-I$(SRCDIR)/include`,
		`-I. ; rm -rf /`,
		`-DFOO="bar`,
		`-DFOO='bar`,
		`-I.\`,
		"-I`pwd`",
	} {
		got, err := Split(s)
		if err == nil {
			t.Errorf("Split(%q)=%q, %v; want err", s, got, err)
		}
	}
}

func TestJoin(t *testing.T) {
	for _, words := range [][]string{
		{"-I.", "-Iinclude"},
		{"-DNAME=a b", "-Iit's", ""},
		{`-DREV="r1"`, "-I$dir"},
	} {
		s := Join(words)
		got, err := Split(s)
		if err != nil {
			t.Errorf("Split(Join(%q))=%q, %v; want nil err", words, got, err)
			continue
		}
		if diff := cmp.Diff(words, got); diff != "" {
			t.Errorf("Split(Join(%q)) diff -want +got:\n%s", words, diff)
		}
	}
	if got, want := Join([]string{"-I.", "-Iinclude"}), "-I. -Iinclude"; got != want {
		t.Errorf("Join=%q; want %q", got, want)
	}
}
