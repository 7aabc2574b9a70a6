package edgarseg

import (
	"encoding/json"
	"time"
)

// SchemaVersion is stamped on every persisted extraction record. Bump it
// whenever the segment JSON shape changes incompatibly.
const SchemaVersion = "1"

// Segment is one length-bounded slice of extracted section content.
type Segment struct {
	// Index is the zero-based position of the segment within its section.
	// Indices are contiguous.
	Index int `json:"index"`

	// Text is the segment content. Empty for cross-reference stubs.
	Text string `json:"text"`

	// WordCount and CharCount describe Text after normalization.
	WordCount int `json:"word_count"`
	CharCount int `json:"char_count"`

	// ParentSubsection is the text of the nearest enclosing heading,
	// which may be the section heading itself for preamble content.
	ParentSubsection string `json:"parent_subsection,omitempty"`

	// Ancestors is the breadcrumb trail from the outermost heading down
	// to and including ParentSubsection. Never nil once validated.
	Ancestors []string `json:"ancestors"`

	// IsCrossRef marks a segment whose subsection body was nothing but a
	// pointer to another item ("See Item 7 ...").
	IsCrossRef bool `json:"is_cross_ref"`

	// CrossRefTarget is the normalized target of a cross-reference,
	// e.g. "item7". Empty when IsCrossRef is false.
	CrossRefTarget string `json:"cross_ref_target,omitempty"`
}

// UnmarshalJSON keeps Ancestors non-nil so round-tripped records satisfy
// the same invariants as freshly built ones.
func (s *Segment) UnmarshalJSON(data []byte) error {
	type alias Segment
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Ancestors == nil {
		a.Ancestors = []string{}
	}
	*s = Segment(a)
	return nil
}

// Validate returns EINVALID if the segment breaks a structural invariant.
func (s *Segment) Validate() error {
	if s.Index < 0 {
		return Errorf(EINVALID, "Segment index must not be negative.")
	}
	if s.Ancestors == nil {
		return Errorf(EINVALID, "Segment ancestors must not be nil.")
	}
	if s.ParentSubsection != "" {
		if len(s.Ancestors) == 0 || s.Ancestors[len(s.Ancestors)-1] != s.ParentSubsection {
			return Errorf(EINVALID, "Segment ancestors must end with the parent subsection.")
		}
	}
	if s.IsCrossRef {
		if s.CrossRefTarget == "" {
			return Errorf(EINVALID, "Cross-reference segment requires a target.")
		}
		if s.Text != "" {
			return Errorf(EINVALID, "Cross-reference segment must carry no text.")
		}
	} else if s.CrossRefTarget != "" {
		return Errorf(EINVALID, "Cross-reference target set on a regular segment.")
	}
	return nil
}

// Section is the extracted content of one item of one filing.
type Section struct {
	// ItemID is the section identifier that was requested, e.g.
	// "risk-factors".
	ItemID string `json:"item_id"`

	// Heading is the section heading text as it appears in the document.
	Heading string `json:"heading"`

	// Segments holds the section content in document order.
	Segments []Segment `json:"segments"`
}

// Validate checks the section and every segment in it.
func (sec *Section) Validate() error {
	if sec.ItemID == "" {
		return Errorf(EINVALID, "Section requires an item id.")
	}
	for i := range sec.Segments {
		if sec.Segments[i].Index != i {
			return Errorf(EINVALID, "Segment indices must be contiguous from zero.")
		}
		if err := sec.Segments[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WordCount sums the word counts of all segments.
func (sec *Section) WordCount() int {
	n := 0
	for i := range sec.Segments {
		n += sec.Segments[i].WordCount
	}
	return n
}

// FilingRecord is the persisted result of extracting one or more sections
// from one filing.
type FilingRecord struct {
	SchemaVersion string `json:"schema_version"`

	// Accession identifies the filing, dashed form
	// ("0000320193-23-000106").
	Accession string `json:"accession"`

	CIK         string   `json:"cik"`
	CompanyName string   `json:"company_name"`
	FormType    FormType `json:"form_type"`

	// FiledDate and PeriodOfReport are ISO dates (YYYY-MM-DD), empty when
	// the container header omitted them.
	FiledDate      string `json:"filed_date,omitempty"`
	PeriodOfReport string `json:"period_of_report,omitempty"`

	// PrimaryDocument is the filename of the document the sections were
	// extracted from.
	PrimaryDocument string `json:"primary_document"`

	Sections []Section `json:"sections"`

	// ExtractedAt is when the extraction ran, UTC.
	ExtractedAt time.Time `json:"extracted_at"`
}

// NewFilingRecord builds a record shell from a container manifest.
func NewFilingRecord(m *Manifest, now time.Time) *FilingRecord {
	rec := &FilingRecord{
		SchemaVersion: SchemaVersion,
		Accession:     m.Header.AccessionNumber,
		CIK:           m.Header.CIK,
		CompanyName:   m.Header.CompanyName,
		ExtractedAt:   now.UTC(),
	}
	if form, ok := NormalizeFormType(m.Header.FormType); ok {
		rec.FormType = form
	}
	if !m.Header.FiledDate.IsZero() {
		rec.FiledDate = m.Header.FiledDate.Format("2006-01-02")
	}
	if !m.Header.PeriodOfReport.IsZero() {
		rec.PeriodOfReport = m.Header.PeriodOfReport.Format("2006-01-02")
	}
	if m.Primary != nil {
		rec.PrimaryDocument = m.Primary.Filename
	}
	return rec
}

// Validate checks the record and everything below it.
func (rec *FilingRecord) Validate() error {
	if rec.SchemaVersion == "" {
		return Errorf(EINVALID, "Record requires a schema version.")
	}
	if rec.Accession == "" {
		return Errorf(EINVALID, "Record requires an accession number.")
	}
	for i := range rec.Sections {
		if err := rec.Sections[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
