package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/ncdc-temperature-etl/internal/config"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces accepted records to the sink topic.
// It implements pipeline.RecordSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// WriteBatch publishes multiple accepted records in a single WriteMessages
// call for efficiency. Keying by year keeps a year's records on one
// partition, so per-year downstream consumers see them in emission order.
func (w *Writer) WriteBatch(ctx context.Context, recs []domain.AcceptedRecord) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(recs))
	for i, rec := range recs {
		msgs[i] = toMessage(rec)
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// toMessage renders an accepted record as a sink message. The value is the
// two-field stream line, so topic consumers and file consumers share one
// format.
func toMessage(rec domain.AcceptedRecord) kafkago.Message {
	return kafkago.Message{
		Key:   []byte(rec.Year),
		Value: []byte(rec.String()),
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(rec.Year)},
			{Key: "processed_at", Value: []byte(domain.Now().Format(time.RFC3339))},
		},
	}
}
