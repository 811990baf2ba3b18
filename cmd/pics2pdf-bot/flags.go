package main

import (
	flag "github.com/spf13/pflag"
)

// cliFlags holds command-line options. Everything else comes from the
// config file or the environment.
type cliFlags struct {
	config  string
	verbose bool
	workers int
}

// parseFlags parses args (including the program name at args[0]).
func parseFlags(args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	f := &cliFlags{}
	fs.StringVarP(&f.config, "config", "c", "", "path to YAML config file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fs.IntVarP(&f.workers, "workers", "w", 0, "browser pool size (0 = auto)")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	return f, nil
}
