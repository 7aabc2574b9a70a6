package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/ebarkan/edgarseg"
)

// Ensure LoggingWriter implements edgarseg.RecordWriter.
var _ edgarseg.RecordWriter = (*LoggingWriter)(nil)

// LoggingWriter wraps a RecordWriter with write logging.
type LoggingWriter struct {
	next   edgarseg.RecordWriter
	logger *slog.Logger
}

// NewLoggingWriter creates a new LoggingWriter.
func NewLoggingWriter(next edgarseg.RecordWriter, logger *slog.Logger) *LoggingWriter {
	return &LoggingWriter{next: next, logger: logger}
}

// WriteRecord delegates to the wrapped writer and logs the operation.
func (w *LoggingWriter) WriteRecord(ctx context.Context, rec *edgarseg.FilingRecord) (err error) {
	defer func(begin time.Time) {
		if err != nil {
			w.logger.Error("record write failed",
				"accession", rec.Accession,
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		w.logger.Info("record written",
			"accession", rec.Accession,
			"sections", len(rec.Sections),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return w.next.WriteRecord(ctx, rec)
}
