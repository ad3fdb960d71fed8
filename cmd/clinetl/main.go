// Command clinetl loads ClinVar variant summaries and FHIR bundle directories
// into a relational store.
//
// Usage:
//
//	clinetl [flags] <command>
//
// Commands:
//
//	fetch      download the variant summary to -source
//	load       copy descriptive variant columns into "variant"
//	filter     select pathogenic rows into "variant_pathogenic"
//	normalize  derive identifiers into "variant_vrs"
//	variants   filter, then normalize
//	bundles    map -bundles-dir into the clinical tables
//	validate   check the configuration and exit
//
// Exit status is 0 on success, 1 when the run fails and 2 when the
// configuration or command line is invalid.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"clinetl/internal/config"
	"clinetl/internal/storage"

	// register all backends with the storage factory.
	_ "clinetl/internal/storage/all"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var commands = []string{"fetch", "load", "filter", "normalize", "variants", "bundles", "validate"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, assembles the configuration and executes one command.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("clinetl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "optional config file (.json, .yaml, .yml)")
	flags := config.BindFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: clinetl [flags] <%s>\n", strings.Join(commands, "|"))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if fs.NArg() != 1 || !slices.Contains(commands, fs.Arg(0)) {
		fs.Usage()
		return exitUsage
	}
	cmd := fs.Arg(0)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}
	flags.Apply(&cfg)

	issues := config.Validate(cfg, storage.Kinds())
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid")
		return exitUsage
	}
	if cmd == "validate" {
		log.Printf("configuration is valid")
		return exitOK
	}

	a := newApp(cfg)
	defer a.close()

	if err := a.run(ctx, cmd); err != nil {
		log.Printf("%s: %v", cmd, err)
		return exitFailure
	}
	return exitOK
}
