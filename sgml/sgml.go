// Package sgml implements manifest building for EDGAR full-submission
// containers. A container is one large SGML-framed text file: an
// <SEC-HEADER> block of filing metadata followed by <DOCUMENT> blocks whose
// <TEXT> sections embed the actual documents. The builder walks the
// container once, front to back, recording byte offsets. Document bodies
// are never copied into memory; the manifest only points at them.
package sgml

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ebarkan/edgarseg"
)

// DefaultChunkSize is the slab size of the forward scan.
const DefaultChunkSize = 64 * 1024

// maxHeaderScan bounds how deep into the container the <SEC-DOCUMENT>
// marker may appear. Privacy-enhanced-message preambles on old filings sit
// within the first few hundred bytes; anything beyond this is not a
// container.
const maxHeaderScan = 1 << 20

var closeText = []byte("</TEXT>")

// Builder scans containers into manifests. It implements
// edgarseg.ManifestBuilder.
type Builder struct {
	// ChunkSize is the read slab size. Zero means DefaultChunkSize.
	ChunkSize int
}

var _ edgarseg.ManifestBuilder = (*Builder)(nil)

// NewBuilder returns a Builder with the default chunk size.
func NewBuilder() *Builder {
	return &Builder{ChunkSize: DefaultChunkSize}
}

// Build scans the container and returns its manifest. It returns ECONTAINER
// when the input has no recognizable SEC header or holds no documents.
func (b *Builder) Build(r io.ReaderAt, size int64) (*edgarseg.Manifest, error) {
	chunk := b.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	s := &scanner{r: r, size: size, chunk: chunk}

	if err := seekContainerStart(s); err != nil {
		return nil, err
	}
	m := &edgarseg.Manifest{}
	if err := parseHeader(s, &m.Header); err != nil {
		return nil, err
	}
	if err := parseDocuments(s, m); err != nil {
		return nil, err
	}
	if len(m.Documents) == 0 {
		return nil, edgarseg.StageErrorf(edgarseg.StageManifest, m.Header.AccessionNumber, edgarseg.ECONTAINER, "Container holds no documents.")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	classify(m)
	return m, nil
}

// seekContainerStart reads lines until the <SEC-DOCUMENT> marker, skipping
// privacy-enhanced-message preambles. The marker must appear within
// maxHeaderScan bytes.
func seekContainerStart(s *scanner) error {
	for {
		line, start, ok := s.readLine()
		if !ok || start >= maxHeaderScan {
			return edgarseg.StageErrorf(edgarseg.StageManifest, "", edgarseg.ECONTAINER, "Container has no recognizable SEC header.")
		}
		if strings.HasPrefix(line, "<SEC-DOCUMENT>") || strings.HasPrefix(line, "<SEC-HEADER>") {
			return nil
		}
	}
}

// parseHeader consumes lines through </SEC-HEADER>, filling h. Header lines
// are KEY:VALUE pairs indented with tabs; nested COMPANY DATA and FILING
// VALUES blocks use the same shape. The first occurrence of a key wins, so
// the filer block takes precedence over any later subject-company block.
func parseHeader(s *scanner, h *edgarseg.Header) error {
	for {
		line, _, ok := s.readLine()
		if !ok {
			return edgarseg.StageErrorf(edgarseg.StageManifest, h.AccessionNumber, edgarseg.ECONTAINER, "Container header is unterminated.")
		}
		if strings.HasPrefix(line, "</SEC-HEADER>") {
			return nil
		}
		if v, ok := tagValue(line, "ACCEPTANCE-DATETIME"); ok {
			if t, err := time.Parse("20060102150405", v); err == nil && h.AcceptanceDatetime.IsZero() {
				h.AcceptanceDatetime = t
			}
			continue
		}
		key, value, found := strings.Cut(strings.TrimLeft(line, " \t"), ":")
		if !found {
			continue
		}
		setHeaderField(h, strings.TrimSpace(key), strings.TrimSpace(value))
	}
}

func setHeaderField(h *edgarseg.Header, key, value string) {
	if value == "" {
		return
	}
	set := func(dst *string) {
		if *dst == "" {
			*dst = value
		}
	}
	setDate := func(dst *time.Time) {
		if t, err := time.Parse("20060102", value); err == nil && dst.IsZero() {
			*dst = t
		}
	}
	switch key {
	case "ACCESSION NUMBER":
		set(&h.AccessionNumber)
	case "CONFORMED SUBMISSION TYPE", "FORM TYPE":
		set(&h.FormType)
	case "COMPANY CONFORMED NAME":
		set(&h.CompanyName)
	case "CENTRAL INDEX KEY":
		set(&h.CIK)
	case "STANDARD INDUSTRIAL CLASSIFICATION":
		set(&h.SIC)
	case "IRS NUMBER":
		set(&h.IRSNumber)
	case "STATE OF INCORPORATION":
		set(&h.StateOfInc)
	case "FISCAL YEAR END":
		set(&h.FiscalYearEnd)
	case "SEC FILE NUMBER":
		set(&h.FileNumber)
	case "FILM NUMBER":
		set(&h.FilmNumber)
	case "FILED AS OF DATE":
		setDate(&h.FiledDate)
	case "CONFORMED PERIOD OF REPORT":
		setDate(&h.PeriodOfReport)
	case "PUBLIC DOCUMENT COUNT":
		if n, err := strconv.Atoi(value); err == nil && h.DocumentCount == 0 {
			h.DocumentCount = n
		}
	}
}

// parseDocuments consumes the rest of the container, appending one entry
// per <DOCUMENT> block.
func parseDocuments(s *scanner, m *edgarseg.Manifest) error {
	for {
		line, _, ok := s.readLine()
		if !ok {
			return nil
		}
		if !strings.HasPrefix(line, "<DOCUMENT>") {
			continue
		}
		entry, err := parseDocument(s, m.Header.AccessionNumber)
		if err != nil {
			return err
		}
		m.Documents = append(m.Documents, entry)
	}
}

// parseDocument reads one <DOCUMENT> block: metadata tags, then the <TEXT>
// body located by offset, then the closing tags.
func parseDocument(s *scanner, accession string) (edgarseg.DocumentEntry, error) {
	var entry edgarseg.DocumentEntry
	for {
		line, _, ok := s.readLine()
		if !ok {
			return entry, edgarseg.StageErrorf(edgarseg.StageManifest, accession, edgarseg.ECONTAINER, "Document block is unterminated.")
		}
		if v, ok := tagValue(line, "TYPE"); ok {
			entry.Type = v
			continue
		}
		if v, ok := tagValue(line, "SEQUENCE"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				entry.Seq = n
			}
			continue
		}
		if v, ok := tagValue(line, "FILENAME"); ok {
			entry.Filename = v
			continue
		}
		if v, ok := tagValue(line, "DESCRIPTION"); ok {
			entry.Description = v
			continue
		}
		if strings.HasPrefix(line, "</DOCUMENT>") {
			// Block without a body. Anchor the empty range here so the
			// manifest stays ordered.
			entry.Start = s.offset()
			entry.End = entry.Start
			return entry, nil
		}
		if strings.HasPrefix(line, "<TEXT>") {
			break
		}
	}

	entry.Start = s.offset()
	end, found := s.seekEndText(entry.Start)
	if !found {
		// Truncated container: the last body runs to the end. The
		// manifest stays usable for every earlier document.
		entry.End = s.size
		return entry, s.err
	}
	entry.End = end
	// Consume the </TEXT> line and fall through to the next block.
	s.readLine()
	return entry, nil
}

// classify fills the manifest's derived fields: the primary document, the
// FilingSummary.xml pointer, and the graphic count.
func classify(m *edgarseg.Manifest) {
	form := m.Header.FormType
	for i := range m.Documents {
		d := &m.Documents[i]
		if m.Primary == nil && d.Type == form && form != "" {
			m.Primary = d
		}
		if m.FilingSummary == nil && strings.EqualFold(d.Filename, "FilingSummary.xml") {
			m.FilingSummary = d
		}
		if d.Type == "GRAPHIC" {
			m.GraphicCount++
		}
	}
	if m.Primary != nil {
		return
	}
	// No exact type match: fall back to the first document of the same
	// form family, so a 10-K/A container with a plain 10-K body still
	// resolves.
	headerFam, ok := edgarseg.NormalizeFormType(form)
	if !ok {
		return
	}
	for i := range m.Documents {
		if fam, ok := edgarseg.NormalizeFormType(m.Documents[i].Type); ok && fam == headerFam {
			m.Primary = &m.Documents[i]
			return
		}
	}
}

// tagValue extracts the value of a <TAG>value line.
func tagValue(line, tag string) (string, bool) {
	prefix := "<" + tag + ">"
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

// scanner is a forward-only chunked reader over an io.ReaderAt. It keeps a
// single window of the container in memory and tracks absolute offsets, so
// multi-megabyte bodies are skipped without being retained.
type scanner struct {
	r     io.ReaderAt
	size  int64
	chunk int

	buf  []byte
	base int64 // container offset of buf[0]
	pos  int   // next unread byte within buf
	eof  bool
	err  error
}

// offset returns the container offset of the next unread byte.
func (s *scanner) offset() int64 {
	return s.base + int64(s.pos)
}

// grow discards consumed bytes and appends the next chunk to the window.
func (s *scanner) grow() {
	if s.pos > 0 {
		s.base += int64(s.pos)
		s.buf = append(s.buf[:0], s.buf[s.pos:]...)
		s.pos = 0
	}
	next := s.base + int64(len(s.buf))
	if next >= s.size {
		s.eof = true
		return
	}
	n := int64(s.chunk)
	if next+n > s.size {
		n = s.size - next
	}
	slab := make([]byte, n)
	read, err := s.r.ReadAt(slab, next)
	s.buf = append(s.buf, slab[:read]...)
	if err != nil && err != io.EOF {
		s.err = edgarseg.StageErrorf(edgarseg.StageManifest, "", edgarseg.EINTERNAL, "Container read failed at offset %d: %v.", next, err)
		s.eof = true
	}
	if int64(read) < n {
		s.eof = true
	}
}

// readLine consumes and returns the next line without its terminator.
// ok is false at the end of the container.
func (s *scanner) readLine() (line string, start int64, ok bool) {
	start = s.offset()
	for {
		if i := bytes.IndexByte(s.buf[s.pos:], '\n'); i >= 0 {
			raw := s.buf[s.pos : s.pos+i]
			s.pos += i + 1
			return string(trimCR(raw)), start, true
		}
		if s.eof {
			if s.pos == len(s.buf) {
				return "", start, false
			}
			raw := s.buf[s.pos:]
			s.pos = len(s.buf)
			return string(trimCR(raw)), start, true
		}
		s.grow()
	}
}

// seekEndText scans forward for the </TEXT> marker that closes a body
// starting at bodyStart. Only a marker at the start of a line counts;
// uuencoded graphic bodies can contain the marker bytes mid-line. Returns
// the marker's offset, leaving the scanner positioned at it.
func (s *scanner) seekEndText(bodyStart int64) (int64, bool) {
	for {
		if i := bytes.Index(s.buf[s.pos:], closeText); i >= 0 {
			abs := s.base + int64(s.pos+i)
			at := s.pos + i
			if abs == bodyStart || (at > 0 && s.buf[at-1] == '\n') {
				s.pos = at
				return abs, true
			}
			s.pos = at + 1
			continue
		}
		if s.eof {
			s.pos = len(s.buf)
			return 0, false
		}
		// Keep enough tail for a marker straddling the chunk boundary,
		// plus the byte before it for the line-start check.
		if keep := len(closeText); len(s.buf)-s.pos > keep {
			s.pos = len(s.buf) - keep
		}
		s.grow()
	}
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}
