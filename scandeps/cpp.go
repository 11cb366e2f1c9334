// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"regexp"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

// maxLineSize is the longest head of a line CPPIncludes parses.
// The rest of a longer line is skipped.
const maxLineSize = 64 * 1024

// Include is an #include directive.
type Include struct {
	// Name is the include name without delimiters.
	Name string

	// Quoted is true for `#include "name"`, false for `#include <name>`.
	Quoted bool
}

func (inc Include) String() string {
	if inc.Quoted {
		return `"` + inc.Name + `"`
	}
	return "<" + inc.Name + ">"
}

// CPPIncludes returns #include directives in r, in file order.
// Includes whose name matches ignore are skipped.
// It reads r line by line while the sequence is iterated.
// Lines of any length are accepted. A read error ends the sequence.
func CPPIncludes(ctx context.Context, r io.Reader, ignore *regexp.Regexp) iter.Seq[Include] {
	return func(yield func(Include) bool) {
		br := bufio.NewReaderSize(r, maxLineSize)
		for {
			line, err := readLine(br)
			if inc, ok := parseInclude(line); ok {
				switch {
				case ignore != nil && ignore.MatchString(inc.Name):
					if log.V(1) {
						clog.Infof(ctx, "ignore %s", inc)
					}
				case !yield(inc):
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				clog.Warningf(ctx, "scan stopped: %v", err)
				return
			}
		}
	}
}

// readLine reads a line from br, and returns at most maxLineSize
// bytes of its head. The rest of a longer line is discarded.
// The returned line is valid until the next read on br.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if !errors.Is(err, bufio.ErrBufferFull) {
		return line, err
	}
	line = bytes.Clone(line)
	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = br.ReadSlice('\n')
	}
	return line, err
}

// parseInclude parses line as
//
//	#include "name"
//	#include <name>
//
// whitespaces are allowed before and after '#', and before
// the name.
func parseInclude(line []byte) (Include, bool) {
	const spaces = " \t\v\f\r"
	line = bytes.TrimLeft(line, spaces)
	if len(line) == 0 || line[0] != '#' {
		return Include{}, false
	}
	line = bytes.TrimLeft(line[1:], spaces)
	if !bytes.HasPrefix(line, []byte("include")) {
		return Include{}, false
	}
	line = bytes.TrimLeft(line[len("include"):], spaces)
	if len(line) == 0 {
		return Include{}, false
	}
	var delim byte
	switch line[0] {
	case '"':
		delim = '"'
	case '<':
		delim = '>'
	default:
		// #include_next, #include MACRO etc.
		return Include{}, false
	}
	i := bytes.IndexByte(line[1:], delim)
	if i <= 0 {
		// unclosed or empty name.
		return Include{}, false
	}
	return Include{
		Name:   string(line[1 : i+1]),
		Quoted: delim == '"',
	}, true
}
