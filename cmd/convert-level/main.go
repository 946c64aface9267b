package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cory-johannsen/mapforge/internal/config"
	"github.com/cory-johannsen/mapforge/internal/convert"
	"github.com/cory-johannsen/mapforge/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to converter config file")
	sourceDir := flag.String("source", "", "override paths.source_dir")
	outputFile := flag.String("output", "", "override paths.output_file")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: convert-level -config <file> [-source <dir>] [-output <file>]")
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if *sourceDir != "" {
		cfg.Paths.SourceDir = *sourceDir
	}
	if *outputFile != "" {
		cfg.Paths.OutputFile = *outputFile
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	report, err := convert.New(cfg, logger).Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Print(report.Summary())
	if !report.Validated() {
		return 2
	}
	return 0
}
