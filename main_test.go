// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMkdepsMain(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	for name, content := range map[string]string{
		"Makefile":  "all: main.o\n# DO NOT DELETE THIS LINE -- mkdeps depends on it.\nmain.o: old.h\n",
		"main.cpp":  "#include \"main.h\"\n",
		"main.h":    "#include <lib.h>\n",
		"inc/lib.h": "",
	} {
		fname := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fname, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{
		"mkdeps",
		"depend",
		"-no-std-inc",
		"-j", "1",
		"Makefile", "--", "-Iinc", "--", "main.cpp", "main.o",
	}

	exitCode := mkdepsMain()
	if exitCode != 0 {
		t.Fatalf("mkdepsMain() returned exit code %d", exitCode)
	}
	buf, err := os.ReadFile("Makefile")
	if err != nil {
		t.Fatal(err)
	}
	want := "all: main.o\n# DO NOT DELETE THIS LINE -- mkdeps depends on it.\n\nmain.o: ./inc/lib.h ./main.h\n\n"
	if got := string(buf); got != want {
		t.Errorf("Makefile=%q; want %q", got, want)
	}
}
