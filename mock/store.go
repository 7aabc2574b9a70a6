package mock

import (
	"context"

	"github.com/ebarkan/edgarseg"
)

var _ edgarseg.FilingStore = (*FilingStore)(nil)

// FilingStore is a mock implementation of edgarseg.FilingStore.
type FilingStore struct {
	CreateFilingRecordFn          func(ctx context.Context, rec *edgarseg.FilingRecord) error
	FindFilingRecordByAccessionFn func(ctx context.Context, accession string) (*edgarseg.FilingRecord, error)
	FindFilingRecordsFn           func(ctx context.Context, filter edgarseg.RecordFilter) ([]*edgarseg.FilingRecord, int, error)
	DeleteFilingRecordFn          func(ctx context.Context, accession string) error
}

func (s *FilingStore) CreateFilingRecord(ctx context.Context, rec *edgarseg.FilingRecord) error {
	return s.CreateFilingRecordFn(ctx, rec)
}

func (s *FilingStore) FindFilingRecordByAccession(ctx context.Context, accession string) (*edgarseg.FilingRecord, error) {
	return s.FindFilingRecordByAccessionFn(ctx, accession)
}

func (s *FilingStore) FindFilingRecords(ctx context.Context, filter edgarseg.RecordFilter) ([]*edgarseg.FilingRecord, int, error) {
	return s.FindFilingRecordsFn(ctx, filter)
}

func (s *FilingStore) DeleteFilingRecord(ctx context.Context, accession string) error {
	return s.DeleteFilingRecordFn(ctx, accession)
}
