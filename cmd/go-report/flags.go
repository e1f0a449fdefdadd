package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// cliFlags holds parsed command-line options. Flags override the
// corresponding fields of the YAML report config.
type cliFlags struct {
	config    string
	name      string
	mode      string
	dest      string
	path      string
	overwrite bool
	open      bool
	verbose   bool
	version   bool
}

// parseFlags parses args (excluding the program name) into cliFlags.
func parseFlags(args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet("go-report", flag.ContinueOnError)

	f := &cliFlags{}
	fs.StringVarP(&f.config, "config", "c", "report.yaml", "path to the report config file")
	fs.StringVarP(&f.name, "name", "n", "", "report name (overrides config)")
	fs.StringVarP(&f.mode, "mode", "m", "", "output mode: build, save, or string (overrides config)")
	fs.StringVar(&f.dest, "dest", "", "build: parent directory for the app dir (overrides config)")
	fs.StringVarP(&f.path, "out", "o", "", "save: output HTML path (overrides config)")
	fs.BoolVar(&f.overwrite, "overwrite", false, "build: replace an existing app directory")
	fs.BoolVar(&f.open, "open", false, "save: open the report in the system viewer")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print progress to stderr")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: go-report [flags]")
		fmt.Fprintln(fs.Output(), "\nCompiles the report config into an HTML artifact.\n\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
