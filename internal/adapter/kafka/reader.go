// Package kafka adapts the segmentio/kafka-go client to the pipeline's
// extractor and sink interfaces. Message values on the source topic are raw
// fixed-width NCDC lines; the sink topic carries the accepted-record stream.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ncdc-temperature-etl/internal/config"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes raw record lines from the source topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	logger        *slog.Logger
	flushInterval time.Duration
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaSourceTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, logger: logger, flushInterval: cfg.BatchFlushInterval}
}

// ExtractBatch fetches up to batchSize messages, waiting at most the
// configured flush interval once the first message arrives. A deadline with
// a partial batch is not an error; an empty batch is returned instead.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawLine, error) {
	batchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
	defer cancel()

	lines := make([]domain.RawLine, 0, batchSize)
	for len(lines) < batchSize {
		msg, err := r.reader.FetchMessage(batchCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return lines, nil
			}
			if ctx.Err() != nil {
				return lines, ctx.Err()
			}
			return nil, fmt.Errorf("fetch message: %w", err)
		}
		lines = append(lines, r.toRawLine(msg))
	}
	return lines, nil
}

// toRawLine wraps a fetched message with a commit callback bound to it.
func (r *Reader) toRawLine(msg kafkago.Message) domain.RawLine {
	return domain.RawLine{
		Text:      string(msg.Value),
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
