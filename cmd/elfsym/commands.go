package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/midbel/cli"
	"github.com/midbel/elfsym/elf"
	"github.com/midbel/elfsym/internal/config"
	"github.com/midbel/elfsym/internal/dump"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	errNoFile = errors.New("no file given")
	errNoName = errors.New("no symbol name given")
)

// setup registers the options shared by all commands, parses args
// prefixed with ELFSYM_OPTIONS, and merges the configuration file with
// the flags given explicitly.
func setup(cmd *cli.Command, args []string) (config.Config, error) {
	var (
		file     = cmd.Flag.String("c", "", "configuration file")
		verbose  = cmd.Flag.Bool("v", false, "verbose output")
		demangle = cmd.Flag.Bool("C", false, "demangle C++ symbol names")
		defined  = cmd.Flag.Bool("d", false, "only show defined symbols")
	)
	opts, err := config.Options()
	if err != nil {
		return config.Config{}, fmt.Errorf("%s: %w", config.EnvOptions, err)
	}
	if err := cmd.Flag.Parse(append(opts, args...)); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(*file)
	if err != nil {
		return cfg, err
	}
	cmd.Flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbose = *verbose
		case "C":
			cfg.Demangle = *demangle
		case "d":
			cfg.DefinedOnly = *defined
		}
	})
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	if cfg.File != "" {
		logger.WithField("config", cfg.File).Debug("configuration loaded")
	}
	return cfg, nil
}

func dumper(w io.Writer, cfg config.Config, file string) *dump.Dumper {
	return dump.New(w, logger.WithField("file", file),
		dump.Verbose(cfg.Verbose),
		dump.Demangle(cfg.Demangle),
		dump.DefinedOnly(cfg.DefinedOnly),
		dump.SkipInvalid(cfg.Archive.SkipInvalid),
	)
}

func runSymbols(cmd *cli.Command, args []string) error {
	cfg, err := setup(cmd, args)
	if err != nil {
		return err
	}
	return symbols(os.Stdout, cfg, cmd.Flag.Args())
}

// symbols processes files in parallel; the output of each file is
// buffered and written in the order of files, even when one of them
// fails.
func symbols(w io.Writer, cfg config.Config, files []string) error {
	if len(files) == 0 {
		return errNoFile
	}
	var (
		group errgroup.Group
		bufs  = make([]bytes.Buffer, len(files))
	)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			if len(files) > 1 {
				fmt.Fprintf(&bufs[i], "\n%s:\n", file)
			}
			return dumper(&bufs[i], cfg, file).File(file)
		})
	}
	err := group.Wait()
	for i := range bufs {
		if _, err := bufs[i].WriteTo(w); err != nil {
			return err
		}
	}
	return err
}

func runHeader(cmd *cli.Command, args []string) error {
	return runFile(cmd, args, func(d *dump.Dumper, f *elf.File) error {
		return d.Header(f)
	})
}

func runSections(cmd *cli.Command, args []string) error {
	return runFile(cmd, args, func(d *dump.Dumper, f *elf.File) error {
		return d.Sections(f)
	})
}

func runSegments(cmd *cli.Command, args []string) error {
	return runFile(cmd, args, func(d *dump.Dumper, f *elf.File) error {
		return d.Segments(f)
	})
}

func runLookup(cmd *cli.Command, args []string) error {
	cfg, err := setup(cmd, args)
	if err != nil {
		return err
	}
	if cmd.Flag.NArg() < 2 {
		return errNoName
	}
	return lookup(os.Stdout, cfg, cmd.Flag.Arg(0), cmd.Flag.Args()[1:])
}

func lookup(w io.Writer, cfg config.Config, file string, names []string) error {
	return withFile(w, cfg, file, func(d *dump.Dumper, f *elf.File) error {
		return d.Lookup(f, names)
	})
}

func runFile(cmd *cli.Command, args []string, fn func(*dump.Dumper, *elf.File) error) error {
	cfg, err := setup(cmd, args)
	if err != nil {
		return err
	}
	if cmd.Flag.NArg() == 0 {
		return errNoFile
	}
	return withFile(os.Stdout, cfg, cmd.Flag.Arg(0), fn)
}

func withFile(w io.Writer, cfg config.Config, file string, fn func(*dump.Dumper, *elf.File) error) error {
	f, err := elf.OpenFile(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(dumper(w, cfg, file), f)
}
