// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"io"
	"path"
	"strings"
)

// RuleTarget returns the target name for rule.
// If objDir is set, the dir part of rule is replaced with ${objDir}.
//
//	RuleTarget("src/foo.o", "")    => "src/foo.o"
//	RuleTarget("src/foo.o", "OBJ") => "${OBJ}/foo.o"
func RuleTarget(rule, objDir string) string {
	if objDir == "" {
		return rule
	}
	return "${" + objDir + "}/" + path.Base(rule)
}

// WriteRule writes a dependency rule to w.
//
//	<target>: <dep1> <dep2> ... <depN>
//	<empty line>
//
// deps are written in the given order.
// Nothing is written if deps is empty.
func WriteRule(w io.Writer, rule, objDir string, deps []string) error {
	if len(deps) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(RuleTarget(rule, objDir))
	sb.WriteByte(':')
	for _, dep := range deps {
		sb.WriteByte(' ')
		sb.WriteString(dep)
	}
	sb.WriteString("\n\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
