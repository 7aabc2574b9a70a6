package edgarseg

import (
	"io"
	"time"
)

// DocumentEntry describes one embedded sub-document of a filing container.
// Start and End delimit the body bytes between the entry's <TEXT> markers;
// the body itself is never retained by a Manifest.
type DocumentEntry struct {
	Seq         int    `json:"seq"`
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	Description string `json:"description,omitempty"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
}

// Size returns the body length of the entry in bytes.
func (e DocumentEntry) Size() int64 {
	return e.End - e.Start
}

// Header holds the filing-level fields parsed from the <SEC-HEADER> block.
type Header struct {
	AccessionNumber    string    `json:"accession_number"`
	FormType           string    `json:"form_type"`
	CompanyName        string    `json:"company_name"`
	CIK                string    `json:"cik"`
	SIC                string    `json:"sic,omitempty"`
	IRSNumber          string    `json:"irs_number,omitempty"`
	StateOfInc         string    `json:"state_of_incorporation,omitempty"`
	FiscalYearEnd      string    `json:"fiscal_year_end,omitempty"`
	FiledDate          time.Time `json:"filed_date"`
	PeriodOfReport     time.Time `json:"period_of_report,omitzero"`
	AcceptanceDatetime time.Time `json:"acceptance_datetime,omitzero"`
	DocumentCount      int       `json:"document_count"`
	FileNumber         string    `json:"file_number,omitempty"`
	FilmNumber         string    `json:"film_number,omitempty"`
}

// Manifest is the byte-offset index of one filing container. It is built in
// a single forward scan, holds no document bodies, and is immutable once
// returned by a ManifestBuilder.
type Manifest struct {
	Header    Header
	Documents []DocumentEntry

	// Primary points at the filing body: the first entry whose type equals
	// the header form type. Nil when the container has no such entry.
	Primary *DocumentEntry

	// FilingSummary points at the FilingSummary.xml entry when present.
	FilingSummary *DocumentEntry

	// GraphicCount is the number of GRAPHIC entries, which carry uuencoded
	// images and are never decoded.
	GraphicCount int
}

// DocumentByType returns the first entry with the given type tag, or nil.
func (m *Manifest) DocumentByType(typ string) *DocumentEntry {
	for i := range m.Documents {
		if m.Documents[i].Type == typ {
			return &m.Documents[i]
		}
	}
	return nil
}

// Validate returns an error unless entries are ordered by byte position and
// non-overlapping.
func (m *Manifest) Validate() error {
	var prevEnd int64
	for i, d := range m.Documents {
		if d.Start < 0 || d.End < d.Start {
			return Errorf(EINVALID, "Document entry %d has invalid range [%d, %d).", i, d.Start, d.End)
		}
		if d.Start < prevEnd {
			return Errorf(EINVALID, "Document entry %d overlaps the previous entry.", i)
		}
		prevEnd = d.End
	}
	return nil
}

// ContainerRef addresses a raw filing container. The reader must support
// independent concurrent byte-range reads; the engine never seeks it.
type ContainerRef struct {
	R    io.ReaderAt
	Size int64

	// Accession optionally carries the caller-known accession number so
	// failures before header parsing can still identify the filing.
	Accession string
}

// ManifestBuilder scans raw container bytes into a Manifest without
// materializing sub-document bodies.
type ManifestBuilder interface {
	Build(r io.ReaderAt, size int64) (*Manifest, error)
}

// Decoder resolves a manifest entry's byte range into text. Implementations
// try an ordered chain of character encodings and must not fail on any byte
// sequence; the error return exists for read failures only.
type Decoder interface {
	Decode(r io.ReaderAt, entry DocumentEntry) (string, error)
}
