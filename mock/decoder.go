package mock

import (
	"io"

	"github.com/ebarkan/edgarseg"
)

var _ edgarseg.Decoder = (*Decoder)(nil)

// Decoder is a mock implementation of edgarseg.Decoder.
type Decoder struct {
	DecodeFn func(r io.ReaderAt, entry edgarseg.DocumentEntry) (string, error)
}

func (d *Decoder) Decode(r io.ReaderAt, entry edgarseg.DocumentEntry) (string, error) {
	return d.DecodeFn(r, entry)
}
