// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides utilities of shell words.
package shutil

import (
	"fmt"
	"strings"
)

// Split splits s into words as sh does, without expansion.
// Double quotes, single quotes and backslash escapes are handled.
// It returns error for unterminated quote or escape, and for
// shell metachars that need a shell to interpret.
//
//	Split(`-I. -DNAME="a b" -I'dir with space'`)
//	  => ["-I.", "-DNAME=a b", "-Idir with space"]
func Split(s string) ([]string, error) {
	var words []string
	var sb strings.Builder
	inWord := false
	var quote rune
	escaped := false
	for _, ch := range s {
		switch {
		case escaped:
			sb.WriteRune(ch)
			escaped = false
			continue
		case quote == '\'':
			if ch == '\'' {
				quote = 0
				continue
			}
			sb.WriteRune(ch)
			continue
		case quote == '"':
			switch ch {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				sb.WriteRune(ch)
			}
			continue
		}
		switch ch {
		case ' ', '\t', '\n':
			if inWord {
				words = append(words, sb.String())
				sb.Reset()
				inWord = false
			}
		case '\\':
			inWord = true
			escaped = true
		case '"', '\'':
			inWord = true
			quote = ch
		case ';', '&', '|', '<', '>', '$', '`', '(', ')':
			return nil, fmt.Errorf("failed to split %q: shell metachar %c", s, ch)
		default:
			inWord = true
			sb.WriteRune(ch)
		}
	}
	if escaped {
		return nil, fmt.Errorf("failed to split %q: unterminated escape", s)
	}
	if quote != 0 {
		return nil, fmt.Errorf("failed to split %q: unterminated quote %c", s, quote)
	}
	if inWord {
		words = append(words, sb.String())
	}
	return words, nil
}

// Join joins words to a single string that Split splits to the words.
func Join(words []string) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(quoteWord(w))
	}
	return sb.String()
}

func quoteWord(w string) string {
	if w == "" {
		return "''"
	}
	if !strings.ContainsAny(w, " \t\n\\\"';&|<>$`()") {
		return w
	}
	return "'" + strings.ReplaceAll(w, "'", `'\''`) + "'"
}
