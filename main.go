package main

import (
	"flag"
	"fmt"
	"os"

	"artifactd/internal/di"
	"artifactd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to stderr in addition to log files")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "artifactd: %s\n", err)
		os.Exit(1)
	}
}
