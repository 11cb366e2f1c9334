// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps is scandeps subcommand for debugging scandeps.
package scandeps

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
	"go.chromium.org/infra/build/mkdeps/osfs"
	"go.chromium.org/infra/build/mkdeps/scandeps"
	"go.chromium.org/infra/build/mkdeps/toolsupport/makeutil"
)

const usage = `run scandeps

 $ mkdeps scandeps -req '<json scandeps request>' [-depfile foo.d]

<json scandeps request> is json string of
infra/build/mkdeps/scandeps.Request, e.g.

 {"sources":["main.cpp"],"quote_dirs":["./","./include/"]}

It prints all headers each source depends on.
With -depfile, it compares the headers of the first source with
the inputs of the depfile generated by the compiler (e.g. gcc -MMD).
`

// Cmd returns the Command for the `scandeps` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "scandeps <args>...",
		ShortDesc: "run scandeps",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	reqString string
	depfile   string
}

func (c *run) init() {
	c.Flags.StringVar(&c.reqString, "req", "", "json format of scandeps request")
	c.Flags.StringVar(&c.depfile, "depfile", "", "compiler generated depfile to compare with")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, a.GetOut())
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
		default:
			clog.Errorf(ctx, "scandeps failed: %v", err)
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer) error {
	if c.reqString == "" {
		return fmt.Errorf("missing req: %w", flag.ErrHelp)
	}
	var req scandeps.Request
	err := json.Unmarshal([]byte(c.reqString), &req)
	if err != nil {
		return err
	}
	if len(req.Sources) == 0 {
		return fmt.Errorf("no sources in req: %w", flag.ErrHelp)
	}
	opts, err := req.Options()
	if err != nil {
		return err
	}
	log.Infof("request=%#v", req)

	fsys := osfs.New("scandeps")
	s := scandeps.New(fsys, opts)
	var first []string
	for i, src := range req.Sources {
		deps, err := s.Closure(ctx, src)
		if err != nil {
			return err
		}
		if i == 0 {
			first = deps
		}
		fmt.Fprintf(w, "%s:\n", src)
		for _, dep := range deps {
			fmt.Fprintf(w, " %s\n", dep)
		}
	}
	st := fsys.Stats()
	log.Infof("headers=%d scans=%d stats=%d opens=%d read=%d", s.Cache().Len(), s.Cache().Scans(), st.Stats, st.Opens, st.RBytes)
	if c.depfile == "" {
		return nil
	}
	return compare(ctx, w, req.Sources[0], first, c.depfile)
}

// compare prints the difference between scanned deps and the inputs
// of depfile, and returns error if scanned deps miss some of them.
// Paths are compared after path.Clean.
// System headers are not written by gcc -MMD, so extra deps are
// reported but not an error.
func compare(ctx context.Context, w io.Writer, src string, deps []string, depfile string) error {
	fname, err := filepath.Abs(depfile)
	if err != nil {
		return err
	}
	inputs, err := makeutil.ParseDepsFile(ctx, os.DirFS("/"), strings.TrimPrefix(filepath.ToSlash(fname), "/"))
	if err != nil {
		return err
	}
	scanned := make(map[string]bool)
	for _, dep := range deps {
		scanned[path.Clean(dep)] = true
	}
	want := make(map[string]bool)
	var missing []string
	for _, in := range inputs {
		in = path.Clean(in)
		want[in] = true
		if in == path.Clean(src) || scanned[in] {
			continue
		}
		missing = append(missing, in)
	}
	for _, dep := range deps {
		if !want[path.Clean(dep)] {
			fmt.Fprintf(w, "+%s\n", dep)
		}
	}
	for _, m := range missing {
		fmt.Fprintf(w, "-%s\n", m)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d inputs of %s are missing in scandeps", len(missing), depfile)
	}
	return nil
}
