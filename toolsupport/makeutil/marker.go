// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
)

// DependMarker is the line in Makefile after which generated
// dependency rules are appended.
const DependMarker = "# DO NOT DELETE THIS LINE -- mkdeps depends on it."

// TruncateAfterMarker removes everything after the marker line in fname,
// so that previously generated rules are dropped.
// It returns false if fname doesn't exist or has no marker line,
// in which case fname is not modified.
func TruncateAfterMarker(fname, marker string) (bool, error) {
	buf, err := os.ReadFile(fname)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	off, ok := markerEnd(buf, marker)
	if !ok {
		return false, nil
	}
	if off == len(buf) {
		return true, nil
	}
	return true, os.Truncate(fname, int64(off))
}

// markerEnd returns offset just after the marker line in buf.
func markerEnd(buf []byte, marker string) (int, bool) {
	for off := 0; off < len(buf); {
		line := buf[off:]
		next := len(buf)
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = off + i + 1
		}
		if string(bytes.TrimSuffix(line, []byte("\r"))) == marker {
			return next, true
		}
		off = next
	}
	return 0, false
}
