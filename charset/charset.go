// Package charset implements document decoding with a fixed encoding
// fallback chain. EDGAR containers predate consistent UTF-8 and declare no
// reliable encoding, so decoding tries UTF-8, then Windows-1252, then
// ISO-8859-1, and never fails on any byte sequence.
package charset

import (
	"io"
	"unicode/utf8"

	"github.com/ebarkan/edgarseg"
	"golang.org/x/text/encoding/charmap"
)

// Encoding labels reported by DecodeBytes.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO8859_1   = "iso-8859-1"
)

// Decoder resolves manifest entries into text. It implements
// edgarseg.Decoder.
type Decoder struct{}

var _ edgarseg.Decoder = (*Decoder)(nil)

// NewDecoder returns a ready decoder. It is stateless and safe for
// concurrent use.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode reads the entry's byte range and decodes it. The only error paths
// are an invalid range and a short read; every byte sequence decodes.
func (d *Decoder) Decode(r io.ReaderAt, entry edgarseg.DocumentEntry) (string, error) {
	if entry.Start < 0 || entry.End < entry.Start {
		return "", edgarseg.Errorf(edgarseg.EINVALID, "Document entry has invalid range [%d, %d).", entry.Start, entry.End)
	}
	buf := make([]byte, entry.Size())
	if _, err := io.ReadFull(io.NewSectionReader(r, entry.Start, entry.Size()), buf); err != nil {
		return "", edgarseg.StageErrorf(edgarseg.StageDecode, "", edgarseg.EINTERNAL, "Short read of document body: %v.", err)
	}
	text, _ := DecodeBytes(buf)
	return text, nil
}

// DecodeBytes decodes b with the fallback chain and reports which encoding
// was used. Valid UTF-8 passes through untouched. Otherwise Windows-1252 is
// preferred because EDGAR filings commonly carry its curly quotes and
// dashes in the 0x80-0x9F range; bytes undefined in Windows-1252 push the
// document down to ISO-8859-1, where every byte has a mapping.
func DecodeBytes(b []byte) (string, string) {
	if utf8.Valid(b) {
		return string(b), EncodingUTF8
	}
	cm, name := charmap.Windows1252, EncodingWindows1252
	if hasUndefined1252(b) {
		cm, name = charmap.ISO8859_1, EncodingISO8859_1
	}
	out, err := cm.NewDecoder().Bytes(b)
	if err != nil {
		return latin1String(b), EncodingISO8859_1
	}
	return string(out), name
}

// hasUndefined1252 reports whether b contains any of the five byte values
// Windows-1252 leaves unmapped.
func hasUndefined1252(b []byte) bool {
	for _, c := range b {
		switch c {
		case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
			return true
		}
	}
	return false
}

// latin1String maps each byte directly to the code point of the same value.
func latin1String(b []byte) string {
	rs := make([]rune, len(b))
	for i, c := range b {
		rs[i] = rune(c)
	}
	return string(rs)
}
