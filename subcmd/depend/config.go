// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depend

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is a config file of depend.
//
//	cflags: -I../include -I-
//	quote_dirs: ["./gen/"]
//	angle_dirs: ["../third_party/include/"]
//	obj_dir: OBJ_DIR
//	ignore_pattern: 'generated_.*\.h'
//	jobs: 8
//
// Command line flags take precedence over the config.
type Config struct {
	// QuoteDirs are appended to the search paths for `#include "..."`.
	QuoteDirs []string `yaml:"quote_dirs"`

	// AngleDirs are appended to the search paths for `#include <...>`.
	AngleDirs []string `yaml:"angle_dirs"`

	// CFlags are compiler flags split as sh does, and put before
	// the compiler flags on the command line.
	CFlags string `yaml:"cflags"`

	SysIncludeDir string `yaml:"sys_include_dir"`
	NoStdInc      bool   `yaml:"no_std_inc"`
	ObjDir        string `yaml:"obj_dir"`
	IgnorePattern string `yaml:"ignore_pattern"`

	// AllowIncludeLoops is true if not set.
	AllowIncludeLoops *bool `yaml:"allow_include_loops"`

	Jobs int `yaml:"jobs"`
}

// LoadConfig loads config from fname.
// Unknown fields are error. Empty file is a zero config.
func LoadConfig(fname string) (Config, error) {
	var cfg Config
	f, err := os.Open(fname)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(&cfg)
	if errors.Is(err, io.EOF) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", fname, err)
	}
	return cfg, nil
}

func (cfg Config) allowIncludeLoops() bool {
	if cfg.AllowIncludeLoops == nil {
		return true
	}
	return *cfg.AllowIncludeLoops
}
