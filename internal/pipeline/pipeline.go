// Package pipeline wires line sources through parse → filter → aggregate.
// Two drivers share the same per-line logic: Pipeline runs the streaming
// extract-screen-load loop against a batch extractor, and RunPartitioned
// folds a set of partitions in parallel and merges the partial aggregators.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ncdc-temperature-etl/internal/aggregate"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/domain"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw lines from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawLine, error)
}

// RecordSink receives accepted records. Implementations must be safe for
// concurrent use when shared across partitioned workers.
type RecordSink interface {
	WriteBatch(ctx context.Context, recs []domain.AcceptedRecord) error
}

// Pipeline orchestrates the streaming extract-screen-load loop while
// maintaining a running aggregate.
type Pipeline struct {
	extractor BatchExtractor
	sink      RecordSink
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int

	// mu guards agg: Run updates it while HTTP handlers snapshot it.
	mu  sync.Mutex
	agg *aggregate.Aggregator
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, s RecordSink, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		sink:      s,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
		agg:       aggregate.New(),
	}
}

// CheckReadiness returns nil if the pipeline has processed at least one batch,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any records yet")
	}
	return nil
}

// Snapshot renders the current running aggregate. Safe to call while Run is
// active.
func (p *Pipeline) Snapshot() aggregate.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agg.Report()
}

// Run executes the streaming loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during source outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-screen-load cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	accepted := make([]domain.AcceptedRecord, 0, len(rawBatch))
	acceptedRaws := make([]domain.RawLine, 0, len(rawBatch))

	for _, raw := range rawBatch {
		p.metrics.LinesRead.Inc()
		rec, ok := screen(raw.Text, p.metrics)
		if !ok {
			// Dropped lines are fully handled; commit so they are not redelivered.
			p.commitLine(ctx, raw)
			continue
		}
		accepted = append(accepted, rec)
		acceptedRaws = append(acceptedRaws, raw)
	}

	if len(accepted) == 0 {
		p.ready.Store(true)
		return true
	}

	if err := p.sink.WriteBatch(ctx, accepted); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(accepted))
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.mu.Lock()
	for _, rec := range accepted {
		p.agg.Update(rec)
	}
	p.mu.Unlock()

	for _, raw := range acceptedRaws {
		p.commitLine(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitLine commits the line's source offset if a commit function is available.
func (p *Pipeline) commitLine(ctx context.Context, raw domain.RawLine) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// screen parses and filters one raw line, recording the outcome in metrics.
// Dropped lines are expected dirty data: counted, never logged per line, never
// fatal.
func screen(line string, m *observability.Metrics) (domain.AcceptedRecord, bool) {
	c, err := domain.Parse(line)
	if err != nil {
		reason := observability.ReasonMalformedTemp
		if errors.Is(err, domain.ErrTooShort) {
			reason = observability.ReasonTooShort
		}
		m.ParseFailures.WithLabelValues(reason).Inc()
		return domain.AcceptedRecord{}, false
	}

	if !domain.Accept(c) {
		reason := observability.ReasonUntrustedSource
		if c.Temperature == domain.MissingTemperature {
			reason = observability.ReasonMissingReading
		}
		m.RecordsRejected.WithLabelValues(reason).Inc()
		return domain.AcceptedRecord{}, false
	}

	m.RecordsAccepted.Inc()
	return domain.AcceptedRecord{Year: c.Year, Temperature: c.Temperature}, true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
