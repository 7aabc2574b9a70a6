package edgarseg

import "context"

// SectionExtractor runs the full pipeline against one filing container:
// manifest, decode, pre-seek, parse, locate, collect, segment.
type SectionExtractor interface {
	// ExtractSection extracts a single item section from the container.
	// An empty form means the form family is taken from the container
	// header. Returns ENOTFOUND when the section cannot be located and
	// EEMPTY when it is located but yields no content.
	ExtractSection(ctx context.Context, container ContainerRef, form FormType, itemID string) (*Section, error)

	// ExtractFiling extracts the given sections and wraps them in a
	// persistable record together with the container metadata. Sections
	// that cannot be located are skipped; the record reports only what
	// was found. Returns ENOTFOUND when no requested section was found.
	ExtractFiling(ctx context.Context, container ContainerRef, form FormType, itemIDs ...string) (*FilingRecord, error)
}

// RecordWriter persists a finished filing record, typically as JSON on
// disk. Writes are atomic: a partially written record is never visible.
type RecordWriter interface {
	WriteRecord(ctx context.Context, rec *FilingRecord) error
}

// RecordFilter narrows FindFilingRecords. Nil fields are ignored.
type RecordFilter struct {
	Accession *string   `json:"accession"`
	CIK       *string   `json:"cik"`
	FormType  *FormType `json:"form_type"`
	ItemID    *string   `json:"item_id"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// FilingStore is long-term storage for extraction results.
type FilingStore interface {
	// CreateFilingRecord stores a record, replacing any earlier record
	// for the same accession.
	CreateFilingRecord(ctx context.Context, rec *FilingRecord) error

	// FindFilingRecordByAccession returns one record or ENOTFOUND.
	FindFilingRecordByAccession(ctx context.Context, accession string) (*FilingRecord, error)

	// FindFilingRecords returns matching records sorted by filed date,
	// newest first, plus the total match count for pagination.
	FindFilingRecords(ctx context.Context, filter RecordFilter) ([]*FilingRecord, int, error)

	// DeleteFilingRecord removes a record. Deleting a missing record is
	// not an error.
	DeleteFilingRecord(ctx context.Context, accession string) error
}
