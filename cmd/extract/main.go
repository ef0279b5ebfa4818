// Command extract runs the batch extraction pipeline over local NCDC record
// files (plain or gzip), writing the accepted-record stream and the per-year
// report. Each input file is one partition; partitions are folded in parallel
// and the partial aggregates merged, which produces the same report as a
// sequential pass.
//
// Usage:
//
//	go run ./cmd/extract \
//	  -records out/accepted.txt \
//	  -report out/report.txt \
//	  -workers 8 \
//	  data/1930.gz data/1931.gz
//
// Malformed and rejected lines are counted and dropped, never fatal; the run
// only fails on I/O errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/couchcryptid/ncdc-temperature-etl/internal/aggregate"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/observability"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/pipeline"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/sink"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/source"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	recordsOut := flag.String("records", "", "accepted-record stream output path (\"-\" for stdout, empty to discard)")
	reportOut := flag.String("report", "-", "report output path (\"-\" for stdout)")
	workers := flag.Int("workers", runtime.NumCPU(), "number of partition workers")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		return fmt.Errorf("no input files")
	}

	logger := newLogger(*logLevel)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources := make([]pipeline.LineSource, 0, len(paths))
	for _, path := range paths {
		src, err := source.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		sources = append(sources, src)
	}

	out, flush, err := recordSink(*recordsOut)
	if err != nil {
		return err
	}

	report, err := pipeline.RunPartitioned(ctx, sources, *workers, out, logger, metrics)
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	return writeReport(*reportOut, report)
}

// recordSink resolves the -records flag into a sink plus its flush hook.
func recordSink(path string) (pipeline.RecordSink, func() error, error) {
	switch path {
	case "":
		return sink.Discard{}, func() error { return nil }, nil
	case "-":
		w := sink.NewStreamWriter(os.Stdout)
		return w, w.Flush, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create records output: %w", err)
		}
		w := sink.NewStreamWriter(f)
		flush := func() error {
			if err := w.Flush(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}
		return w, flush, nil
	}
}

// writeReport renders the final report to path, "-" meaning stdout.
func writeReport(path string, report aggregate.Report) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return sink.WriteReport(w, report)
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
