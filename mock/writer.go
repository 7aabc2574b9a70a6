package mock

import (
	"context"

	"github.com/ebarkan/edgarseg"
)

var _ edgarseg.RecordWriter = (*RecordWriter)(nil)

// RecordWriter is a mock implementation of edgarseg.RecordWriter.
type RecordWriter struct {
	WriteRecordFn func(ctx context.Context, rec *edgarseg.FilingRecord) error
}

func (w *RecordWriter) WriteRecord(ctx context.Context, rec *edgarseg.FilingRecord) error {
	return w.WriteRecordFn(ctx, rec)
}
