// Command qrdecode decodes QR codes in image files.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
	"github.com/spf13/afero"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/scan"
)

type options struct {
	cells     int
	maxPixels int
	pure      bool
	jobs      int
	watch     bool
	urls      bool
	raw       bool
	platform  bool
	verbose   bool
	help      bool
	files     []string
}

func parseArgs(args []string) (*options, *getopt.Set, error) {
	o := &options{
		cells:     qrsnap.DefaultCellsPerSide,
		maxPixels: qrsnap.DefaultMaxPixels,
		jobs:      4,
	}
	set := getopt.New()
	set.SetProgram(filepath.Base(args[0]))
	set.SetParameters("image ...")
	set.FlagLong(&o.cells, "cells", 'c', "threshold cells per side", "n")
	set.FlagLong(&o.maxPixels, "max-pixels", 'm', "largest image accepted, in pixels", "n")
	set.FlagLong(&o.pure, "pure", 'p', "images hold only an unrotated code")
	set.FlagLong(&o.jobs, "jobs", 'j', "files decoded in parallel", "n")
	set.FlagLong(&o.watch, "watch", 'w', "decode images created in the given directories")
	set.FlagLong(&o.urls, "urls", 'u', "print URL payloads normalized")
	set.FlagLong(&o.raw, "raw", 'r', "print payloads without file names")
	set.FlagLong(&o.platform, "platform", 'P', "try the goqr decoder first")
	set.FlagLong(&o.verbose, "verbose", 'v', "log decoder diagnostics")
	set.FlagLong(&o.help, "help", 'h', "show this help")

	if err := set.Getopt(args, nil); err != nil {
		return nil, set, err
	}
	o.files = set.Args()
	switch {
	case o.help:
	case len(o.files) == 0:
		return nil, set, fmt.Errorf("no images given")
	case o.jobs < 1:
		return nil, set, fmt.Errorf("jobs must be at least 1, got %d", o.jobs)
	case o.cells < 1:
		return nil, set, fmt.Errorf("cells must be at least 1, got %d", o.cells)
	}
	return o, set, nil
}

func (o *options) backend(logger *log.Logger) scan.Backend {
	opts := &qrsnap.Options{
		PureBarcode:  o.pure,
		CellsPerSide: o.cells,
		MaxPixels:    o.maxPixels,
	}
	if o.verbose {
		opts.Logger = logger
	}
	engine := scan.NewEngineBackend(opts)
	if !o.platform {
		return engine
	}
	return &scan.Chain{
		Primary:  &scan.PlatformBackend{MaxPixels: o.maxPixels},
		Fallback: engine,
		Logger:   opts.Logger,
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("qrdecode: ")

	o, set, err := parseArgs(os.Args)
	if err != nil {
		log.Println(err)
		set.PrintUsage(os.Stderr)
		os.Exit(2)
	}
	if o.help {
		set.PrintUsage(os.Stdout)
		return
	}

	d := &decoder{
		fs:      afero.NewOsFs(),
		backend: o.backend(log.Default()),
		out:     os.Stdout,
		names:   !o.raw && (len(o.files) > 1 || isatty.IsTerminal(os.Stdout.Fd())),
		urls:    o.urls,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.watch {
		if err := d.watch(ctx, o.files); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if !d.decodeAll(ctx, o.files, o.jobs) {
		os.Exit(1)
	}
}
