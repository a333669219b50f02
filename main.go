package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/Enkerli/MIDIcurator/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type command struct {
	usage string
	run   func(cfg *config.Config, args []string) error
}

const (
	tagUsage        = "tag [--dry-run] DIR"
	analyzeUsage    = "analyze [-o OUTDIR] DIR"
	dumpSequUsage   = "dump-sequ FILE..."
	dumpMIDIUsage   = "dump-midi FILE"
	initConfigUsage = "init-config"
)

var commands = map[string]command{
	"tag":         {tagUsage, runTag},
	"analyze":     {analyzeUsage, runAnalyze},
	"dump-sequ":   {dumpSequUsage, runDumpSequ},
	"dump-midi":   {dumpMIDIUsage, runDumpMIDI},
	"init-config": {initConfigUsage, runInitConfig},
}

// configPath is the -config flag; empty means the default location.
var configPath string

func usage() {
	fmt.Fprintf(os.Stderr, "usage: midicurator [-config FILE] [-v] COMMAND [ARGS]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  midicurator %s\n", commands[name].usage)
	}
}

func main() {
	verbose := false

	flag.StringVar(&configPath, "config", "", "config file (default ~/.config/midicurator/config.json)")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Usage = usage

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logrus.Fatal(err)
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(cfg.Level())
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := cmd.run(cfg, flag.Args()[1:]); err != nil {
		logrus.Fatal(err)
	}
}

// runInitConfig writes the loaded configuration, defaults filled in, back to
// its file.
func runInitConfig(cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: midicurator " + initConfigUsage)
	}
	if configPath != "" {
		return cfg.SaveFile(configPath)
	}
	return cfg.Save()
}
