package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/ncdc-temperature-etl/internal/aggregate"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/domain"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/observability"
)

// LineSource iterates raw record lines in bufio.Scanner style: Scan until it
// returns false, then consult Err to distinguish EOF from failure.
type LineSource interface {
	Scan() bool
	Text() string
	Err() error
}

// flushEvery bounds how many accepted records a worker buffers before
// handing them to the sink.
const flushEvery = 1024

// Run folds a single source through parse → filter → aggregate and returns
// the final report. Zero lines yield an empty report.
func Run(ctx context.Context, src LineSource, out RecordSink, logger *slog.Logger, metrics *observability.Metrics) (aggregate.Report, error) {
	return RunPartitioned(ctx, []LineSource{src}, 1, out, logger, metrics)
}

// RunPartitioned distributes sources across workers, each folding its
// partitions into a worker-local aggregator with no shared mutable state,
// then merges the partials into one aggregate. Merge is associative and
// commutative, so the result is identical to a sequential run over the
// concatenated input. A worker whose partitions held no accepted records
// contributes an empty aggregator, the merge identity.
func RunPartitioned(ctx context.Context, sources []LineSource, workers int, out RecordSink, logger *slog.Logger, metrics *observability.Metrics) (aggregate.Report, error) {
	if workers < 1 {
		workers = 1
	}
	if len(sources) > 0 && workers > len(sources) {
		workers = len(sources)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srcCh := make(chan LineSource)
	go func() {
		defer close(srcCh)
		for _, src := range sources {
			select {
			case srcCh <- src:
			case <-ctx.Done():
				return
			}
		}
	}()

	partials := make(chan *aggregate.Aggregator, workers)
	errCh := make(chan error, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := aggregate.New()
			for src := range srcCh {
				if err := foldSource(ctx, src, local, out, metrics); err != nil {
					errCh <- err
					cancel()
					break
				}
				metrics.PartitionsProcessed.Inc()
			}
			partials <- local
		}()
	}

	wg.Wait()
	close(partials)
	close(errCh)

	if err := <-errCh; err != nil {
		return aggregate.Report{}, err
	}

	start := time.Now()
	merged := aggregate.New()
	for partial := range partials {
		merged.Merge(partial)
	}
	metrics.MergeDuration.Observe(time.Since(start).Seconds())

	logger.Info("partitioned run complete",
		"partitions", len(sources), "workers", workers, "years", merged.Years())

	return merged.Report(), nil
}

// foldSource runs the single-partition pass: screen every line, update the
// local aggregator, and flush accepted records to the sink in batches.
// Source read errors are fatal; dirty lines are not.
func foldSource(ctx context.Context, src LineSource, agg *aggregate.Aggregator, out RecordSink, metrics *observability.Metrics) error {
	batch := make([]domain.AcceptedRecord, 0, flushEvery)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := out.WriteBatch(ctx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for src.Scan() {
		metrics.LinesRead.Inc()

		rec, ok := screen(src.Text(), metrics)
		if !ok {
			continue
		}

		agg.Update(rec)
		batch = append(batch, rec)

		if len(batch) == flushEvery {
			if err := flush(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	if err := src.Err(); err != nil {
		return err
	}
	return flush()
}
