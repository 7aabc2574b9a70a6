// Package bloom provides probabilistic first-seen tracking. The extraction
// pipeline uses it to spot page furniture repeated across a filing's pages,
// and the bulk downloader uses it to skip accessions it already fetched.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter keyed by string. False positives are
// possible at the configured rate; false negatives are not.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected items with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records s in the filter.
func (f *Filter) Add(s string) {
	f.f.AddString(s)
}

// Test returns true if s might have been added before.
func (f *Filter) Test(s string) bool {
	return f.f.TestString(s)
}

// Seen records s and reports whether it was already present. The first
// call for a string returns false, later calls return true.
func (f *Filter) Seen(s string) bool {
	return f.f.TestAndAddString(s)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
