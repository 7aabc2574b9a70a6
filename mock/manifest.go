// Package mock provides function-field test doubles for the edgarseg
// interfaces.
package mock

import (
	"io"

	"github.com/ebarkan/edgarseg"
)

var _ edgarseg.ManifestBuilder = (*ManifestBuilder)(nil)

// ManifestBuilder is a mock implementation of edgarseg.ManifestBuilder.
type ManifestBuilder struct {
	BuildFn func(r io.ReaderAt, size int64) (*edgarseg.Manifest, error)
}

func (b *ManifestBuilder) Build(r io.ReaderAt, size int64) (*edgarseg.Manifest, error) {
	return b.BuildFn(r, size)
}
