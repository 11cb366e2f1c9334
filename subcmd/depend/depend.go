// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depend provides depend subcommand.
package depend

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
	"go.chromium.org/infra/build/mkdeps/osfs"
	"go.chromium.org/infra/build/mkdeps/runtimex"
	"go.chromium.org/infra/build/mkdeps/scandeps"
	"go.chromium.org/infra/build/mkdeps/toolsupport/gccutil"
	"go.chromium.org/infra/build/mkdeps/toolsupport/makeutil"
	"go.chromium.org/infra/build/mkdeps/toolsupport/shutil"
)

const usage = `append dependencies of source files to Makefile.

 $ mkdeps depend [flags] <makefile> -- <compiler flags> -- <transfer file>
 $ mkdeps depend [flags] <makefile> -- <compiler flags> -- <src> <rule> [<src> <rule>...]

<compiler flags> are checked for -I<dir>, -I-, -iquote, -isystem,
--sysroot and -nostdinc. Other flags are ignored.
<transfer file> has a source file and its make rule name on
alternate lines.

Everything after the line
  # DO NOT DELETE THIS LINE -- mkdeps depends on it.
in <makefile> is replaced with the dependencies.
--obj-dir <var> and --no-std-inc are also accepted between
<makefile> and the first "--".
`

const ignorePatternEnv = "MKDEPS_IGNORE_PATTERN"

// Cmd returns the Command for the `depend` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "depend [flags] <makefile> -- <compiler flags> -- <files>",
		ShortDesc: "append dependencies of source files to Makefile",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	objDir     string
	noStdInc   bool
	sysInclude string
	configFile string
	ignore     string
	jobs       int
}

func (c *run) init() {
	c.Flags.StringVar(&c.objDir, "obj-dir", "", "make variable name of the dir for all .o files")
	c.Flags.BoolVar(&c.noStdInc, "no-std-inc", false, "exclude dependencies on files in the system include dir")
	c.Flags.StringVar(&c.sysInclude, "sys-include", "", "system include dir. default is "+scandeps.DefaultSysIncludeDir)
	c.Flags.StringVar(&c.configFile, "config", "", "config file in yaml")
	c.Flags.StringVar(&c.ignore, "ignore", os.Getenv(ignorePatternEnv), "regexp of includes to ignore. can be set by $"+ignorePatternEnv)
	c.Flags.IntVar(&c.jobs, "j", 0, "number of source files scanned in parallel. default is number of CPUs")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
			return 2
		default:
			clog.Errorf(ctx, "depend failed: %v", err)
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	inv, err := parseArgs(args)
	if err != nil {
		return err
	}
	var cfg Config
	if c.configFile != "" {
		cfg, err = LoadConfig(c.configFile)
		if err != nil {
			return err
		}
	}
	if len(inv.files) == 0 {
		log.Infof("no source files for %s", inv.makefile)
		return nil
	}
	targets, err := inv.targets()
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	ctx = clog.NewSpan(ctx, runID, "", map[string]string{"run": runID})
	clog.Infof(ctx, "depend %s: %d targets", inv.makefile, len(targets))

	fsys := osfs.New("depend")
	opts, err := c.options(ctx, fsys, inv, cfg)
	if err != nil {
		return err
	}
	s := scandeps.New(fsys, opts)
	ropts := scandeps.RunOptions{
		ObjDir: cmp.Or(c.objDir, inv.objDir, cfg.ObjDir),
		Jobs:   runtimex.Jobs(cmp.Or(c.jobs, cfg.Jobs)),
	}
	stats, err := appendDeps(ctx, s, inv.makefile, targets, ropts)
	for _, src := range stats.Skipped {
		log.Warnf("source file not found: %s", src)
	}
	st := fsys.Stats()
	clog.Infof(ctx, "fs %s: stat=%d(err=%d) open=%d(err=%d) read=%d(err=%d)", fsys.Name(), st.Stats, st.StatErrs, st.Opens, st.OpenErrs, st.RBytes, st.RErrs)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", inv.makefile, err)
	}
	return nil
}

// invocation is a parsed command line of depend.
type invocation struct {
	makefile string
	objDir   string
	noStdInc bool
	cflags   []string
	files    []string
}

// parseArgs parses
//
//	<makefile> [--obj-dir <var>] [--no-std-inc] -- <compiler flags> [-- <files>]
//
// Missing second "--" means no files.
func parseArgs(args []string) (invocation, error) {
	var inv invocation
	if len(args) == 0 {
		return inv, fmt.Errorf("no makefile: %w", flag.ErrHelp)
	}
	inv.makefile = args[0]
	args = args[1:]
	for len(args) > 0 && args[0] != "--" {
		switch args[0] {
		case "--obj-dir", "-obj-dir":
			if len(args) < 2 {
				return inv, fmt.Errorf("no value for %s: %w", args[0], flag.ErrHelp)
			}
			args = args[1:]
			inv.objDir = args[0]
		case "--no-std-inc", "-no-std-inc":
			inv.noStdInc = true
		default:
			log.Warnf("unknown argument %s", args[0])
		}
		args = args[1:]
	}
	if len(args) == 0 {
		return inv, fmt.Errorf(`missing first "--": %w`, flag.ErrHelp)
	}
	args = args[1:]
	i := slices.Index(args, "--")
	if i < 0 {
		inv.cflags = args
		return inv, nil
	}
	inv.cflags = args[:i]
	inv.files = args[i+1:]
	return inv, nil
}

// targets returns targets from a transfer file if only one file is given,
// or from pairs of source and rule.
func (inv invocation) targets() ([]scandeps.Target, error) {
	switch len(inv.files) {
	case 0:
		return nil, nil
	case 1:
		return readTransferFile(inv.files[0])
	}
	if len(inv.files)%2 != 0 {
		return nil, fmt.Errorf("no rule for %s: %w", inv.files[len(inv.files)-1], flag.ErrHelp)
	}
	var targets []scandeps.Target
	for i := 0; i < len(inv.files); i += 2 {
		targets = append(targets, scandeps.Target{
			Source: inv.files[i],
			Rule:   inv.files[i+1],
		})
	}
	return targets, nil
}

// readTransferFile reads source file and make rule name on
// alternate lines. Empty lines at the end are ignored.
func readTransferFile(fname string) ([]scandeps.Target, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	var lines []string
	for line := range strings.Lines(string(buf)) {
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines)%2 != 0 {
		return nil, fmt.Errorf("transfer file %s: no rule for %s", fname, lines[len(lines)-1])
	}
	var targets []scandeps.Target
	for i := 0; i < len(lines); i += 2 {
		targets = append(targets, scandeps.Target{
			Source: lines[i],
			Rule:   lines[i+1],
		})
	}
	return targets, nil
}

// options returns scandeps options from compiler flags, command line
// flags and cfg. -I dirs that are not directories are dropped.
func (c *run) options(ctx context.Context, fsys *osfs.OSFS, inv invocation, cfg Config) (scandeps.Options, error) {
	cflags := inv.cflags
	if cfg.CFlags != "" {
		words, err := shutil.Split(cfg.CFlags)
		if err != nil {
			return scandeps.Options{}, fmt.Errorf("bad cflags in config: %w", err)
		}
		cflags = append(words, cflags...)
	}
	clog.Infof(ctx, "cflags: %s", shutil.Join(cflags))
	dirs := gccutil.ParseIncludeDirs(cflags)
	dirs.Dirs = validDirs(ctx, fsys, dirs.Dirs)
	dirs.SplitDirs = validDirs(ctx, fsys, dirs.SplitDirs)
	dirs.Quote = validDirs(ctx, fsys, dirs.Quote)
	dirs.System = validDirs(ctx, fsys, dirs.System)
	quote, angle := dirs.SearchLists()
	quote = append(quote, cfg.QuoteDirs...)
	angle = append(angle, cfg.AngleDirs...)

	noStdInc := c.noStdInc || inv.noStdInc || dirs.NoStdInc || cfg.NoStdInc
	sysInclude := cmp.Or(c.sysInclude, cfg.SysIncludeDir, dirs.SysIncludeDir())
	opts := scandeps.Options{
		SearchPaths:          scandeps.NewSearchPaths(quote, angle, !noStdInc, sysInclude),
		DisallowIncludeLoops: !cfg.allowIncludeLoops(),
	}
	clog.Infof(ctx, "quote=%q angle=%q sys=%q", opts.SearchPaths.Quote, opts.SearchPaths.Angle, opts.SearchPaths.SysIncludeDir)
	pattern := cmp.Or(c.ignore, cfg.IgnorePattern)
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return opts, fmt.Errorf("bad ignore pattern %q: %w", pattern, err)
		}
		opts.Ignore = re
	}
	return opts, nil
}

func validDirs(ctx context.Context, fsys *osfs.OSFS, dirs []string) []string {
	var valid []string
	for _, dir := range dirs {
		fi, err := fsys.Stat(ctx, dir)
		if err != nil || !fi.IsDir() {
			log.Warnf("invalid path -I%s", dir)
			continue
		}
		valid = append(valid, dir)
	}
	return valid
}

// appendDeps truncates makefile after the marker line, and appends
// dependency rules of targets.
func appendDeps(ctx context.Context, s *scandeps.ScanDeps, makefile string, targets []scandeps.Target, opts scandeps.RunOptions) (stats scandeps.RunStats, err error) {
	found, err := makeutil.TruncateAfterMarker(makefile, makeutil.DependMarker)
	if err != nil {
		return stats, err
	}
	if !found {
		clog.Warningf(ctx, "no marker line in %s", makefile)
	}
	f, err := os.OpenFile(makefile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return stats, err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	_, err = w.WriteString("\n")
	if err != nil {
		return stats, err
	}
	stats, err = s.Run(ctx, targets, w, opts)
	if err != nil {
		return stats, err
	}
	return stats, w.Flush()
}
