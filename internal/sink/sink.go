// Package sink writes the pipeline's two flat text outputs: the
// accepted-record stream and the final per-year report.
package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/couchcryptid/ncdc-temperature-etl/internal/aggregate"
	"github.com/couchcryptid/ncdc-temperature-etl/internal/domain"
)

// StreamWriter emits accepted records as "<year> <temperature>" lines, the
// format the downstream GROUP BY stage expects. Safe for concurrent use so
// partitioned workers can share one writer.
type StreamWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewStreamWriter wraps w in a buffered accepted-record writer. The caller
// must Flush before closing the underlying writer.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: bufio.NewWriter(w)}
}

// WriteBatch appends one stream line per record.
func (s *StreamWriter) WriteBatch(_ context.Context, recs []domain.AcceptedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		if _, err := fmt.Fprintln(s.w, rec.String()); err != nil {
			return fmt.Errorf("write accepted record: %w", err)
		}
	}
	return nil
}

// Flush drains buffered records to the underlying writer.
func (s *StreamWriter) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush accepted records: %w", err)
	}
	return nil
}

// Discard drops accepted records, for runs that only want the aggregate
// report. It is the identity sink.
type Discard struct{}

func (Discard) WriteBatch(context.Context, []domain.AcceptedRecord) error { return nil }

// WriteReport renders report rows as "<year> <min> <max> <mean>" lines,
// ascending by year. The mean is fixed to one decimal so rows stay
// column-stable for the downstream consumer.
func WriteReport(w io.Writer, report aggregate.Report) error {
	bw := bufio.NewWriter(w)
	for _, row := range report.Rows {
		if _, err := fmt.Fprintf(bw, "%s %d %d %.1f\n", row.Year, row.Min, row.Max, row.Mean); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
