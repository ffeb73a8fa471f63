// Command ico-pack bundles PNG files into a single .ico container.
//
//	ico-pack -o favicon.ico icon-16.png icon-32.png icon-256.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ico-builder-go/internal/domain/icon"
	"ico-builder-go/internal/platform/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ico-pack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("o", "", "output file (default: icon.default_name from config)")
	configPath := fs.String("config", "", "optional config file supplying icon limits")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: ico-pack [-o out.ico] [-config file] image.png...")
		return 2
	}

	loader := config.NewLoader().WithDotEnv(false)
	if *configPath != "" {
		loader = loader.WithPath(*configPath)
	}
	res, err := loader.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	cfg := res.Config.Icon

	sources := make([]icon.Source, 0, fs.NArg())
	for _, path := range fs.Args() {
		sources = append(sources, icon.FileSource(path))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := icon.NewService(icon.Options{
		Limits: icon.Limits{
			MaxFileSize: cfg.MaxFileSize,
			MaxEntries:  cfg.MaxEntries,
		},
		LoadConcurrency: cfg.LoadConcurrency,
		DefaultName:     cfg.DefaultName,
	})

	name := *output
	if name == "" {
		name = cfg.DefaultName
	}
	report, err := svc.Build(ctx, filepath.Base(name), sources)
	if report != nil {
		printReport(stdout, report)
	}
	if err != nil {
		if errors.Is(err, icon.ErrEmptyInput) && report != nil {
			fmt.Fprintln(stderr, report.Summary.Message)
		} else {
			fmt.Fprintf(stderr, "build: %v\n", err)
		}
		return 1
	}

	target := name
	if *output == "" {
		target = report.Artifact.Name
	}
	if err := os.WriteFile(target, report.Artifact.Data, 0o644); err != nil {
		fmt.Fprintf(stderr, "write %s: %v\n", target, err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes, %d entries)\n", target, len(report.Artifact.Data), len(report.Artifact.Entries))
	return 0
}

func printReport(w io.Writer, report *icon.Report) {
	for _, c := range report.Candidates {
		if c.Validity.IsValid() {
			fmt.Fprintf(w, "  ok    %4dx%-4d %s\n", c.Width, c.Height, c.Name)
			continue
		}
		fmt.Fprintf(w, "  skip  %-9s %s: %s\n", string(c.Validity.Reason), c.Name, c.Validity.Reason.Message())
	}
	fmt.Fprintln(w, report.Summary.Message)
}
