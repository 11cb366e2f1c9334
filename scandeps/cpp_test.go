// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCPPIncludes(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name   string
		buf    string
		ignore string
		want   []Include
	}{
		{
			name: "helloworld",
			buf: `
#include <stdio.h>

int main(int arg, char *argv[]) {
  printf("hello, world\n");
}
`,
			want: []Include{
				{Name: "stdio.h"},
			},
		},
		{
			name: "base",
			buf: `
// Copyright 2012 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

#ifndef BASE_VERSION_H_
#define BASE_VERSION_H_

#include <stdint.h>

#include <iosfwd>
#include <string>
#include <vector>

#include "base/base_export.h"
#include "base/strings/string_piece.h"

namespace base {
 ...
}
`,
			want: []Include{
				{Name: "stdint.h"},
				{Name: "iosfwd"},
				{Name: "string"},
				{Name: "vector"},
				{Name: "base/base_export.h", Quoted: true},
				{Name: "base/strings/string_piece.h", Quoted: true},
			},
		},
		{
			name: "spaces",
			buf: "  #  include   \"a.h\"\n" +
				"\t#include\t<b.h>\r\n" +
				"#include<c.h>\n" +
				"#include \"d.h\" // comment\n",
			want: []Include{
				{Name: "a.h", Quoted: true},
				{Name: "b.h"},
				{Name: "c.h"},
				{Name: "d.h", Quoted: true},
			},
		},
		{
			name: "conditional",
			buf: `
#if 0
#include "dead.h"
#endif
/*
#include "commented.h"
*/
`,
			want: []Include{
				{Name: "dead.h", Quoted: true},
				{Name: "commented.h", Quoted: true},
			},
		},
		{
			name: "unsupported",
			buf: `
#include FOO_H
#include_next <next.h>
#include "unclosed.h
#include <unclosed.h
#include ""
#import "objc.h"
#define FOO_H "foo.h"
int x; #include "not_directive.h"
`,
		},
		{
			name:   "ignore",
			ignore: `generated_.*\.h`,
			buf: `
#include "generated_config.h"
#include "config.h"
#include <gen/generated_tables.h>
`,
			want: []Include{
				{Name: "config.h", Quoted: true},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var ignore *regexp.Regexp
			if tc.ignore != "" {
				ignore = regexp.MustCompile(tc.ignore)
			}
			got := slices.Collect(CPPIncludes(ctx, strings.NewReader(tc.buf), ignore))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("CPPIncludes(ctx, %q) diff -want +got:\n%s", tc.name, diff)
			}
		})
	}
}

func TestCPPIncludes_stop(t *testing.T) {
	ctx := context.Background()
	buf := "#include <a.h>\n#include <b.h>\n#include <c.h>\n"
	var got []string
	for inc := range CPPIncludes(ctx, strings.NewReader(buf), nil) {
		got = append(got, inc.String())
		if len(got) == 2 {
			break
		}
	}
	want := []string{"<a.h>", "<b.h>"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CPPIncludes stopped diff -want +got:\n%s", diff)
	}
}

func TestCPPIncludes_longLine(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("x", 2<<20)
	for _, tc := range []struct {
		name string
		buf  string
		want []Include
	}{
		{
			name: "comment",
			buf:  "// " + long + "\n#include \"after.h\"\n",
			want: []Include{{Name: "after.h", Quoted: true}},
		},
		{
			name: "data",
			buf:  "#include <before.h>\nstatic const char data[] = {" + long + "};\n#include \"after.h\"\n",
			want: []Include{{Name: "before.h"}, {Name: "after.h", Quoted: true}},
		},
		{
			name: "directive-head",
			buf:  "#include \"head.h\" // " + long + "\n#include \"after.h\"",
			want: []Include{{Name: "head.h", Quoted: true}, {Name: "after.h", Quoted: true}},
		},
		{
			name: "last-line",
			buf:  "#include \"before.h\"\n// " + long,
			want: []Include{{Name: "before.h", Quoted: true}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := slices.Collect(CPPIncludes(ctx, strings.NewReader(tc.buf), nil))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("CPPIncludes long line diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestIncludeString(t *testing.T) {
	for _, tc := range []struct {
		inc  Include
		want string
	}{
		{inc: Include{Name: "foo.h", Quoted: true}, want: `"foo.h"`},
		{inc: Include{Name: "foo.h"}, want: `<foo.h>`},
	} {
		if got := tc.inc.String(); got != tc.want {
			t.Errorf("%#v.String()=%q; want %q", tc.inc, got, tc.want)
		}
	}
}
