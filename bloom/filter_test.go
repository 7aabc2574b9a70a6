package bloom_test

import (
	"fmt"
	"testing"

	"github.com/ebarkan/edgarseg/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// Accession not yet added should return false
	assert.False(t, f.Test("0000320193-24-000123"))

	// Add accession
	f.Add("0000320193-24-000123")

	// Now it should return true
	assert.True(t, f.Test("0000320193-24-000123"))

	// Different accession should still return false
	assert.False(t, f.Test("0000320193-24-000124"))
}

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// First sighting of a running header returns false and records it
	assert.False(t, f.Seen("acme inc | form 10-k | 23"))

	// Every later sighting returns true
	assert.True(t, f.Seen("acme inc | form 10-k | 23"))
	assert.True(t, f.Seen("acme inc | form 10-k | 23"))

	// Other lines are unaffected
	assert.False(t, f.Seen("acme inc | form 10-k | 24"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// Empty filter should have count near 0
	assert.Equal(t, uint(0), f.EstimatedCount())

	// Add some accessions
	f.Add("0000320193-24-000001")
	f.Add("0000320193-24-000002")
	f.Add("0000320193-24-000003")

	// Estimated count should be approximately 3
	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	acc := "0001628280-25-003063"

	f.Add(acc)
	countAfterFirst := f.EstimatedCount()

	// Adding the same accession multiple times should not change the filter
	f.Add(acc)
	f.Add(acc)
	f.Add(acc)

	assert.Equal(t, countAfterFirst, f.EstimatedCount())
	assert.True(t, f.Test(acc))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)

	// Add 10k accessions
	for i := range numItems {
		f.Add(fmt.Sprintf("0000320193-24-%06d", i))
	}

	// Test with 10k accessions that were NOT added
	falsePositives := 0
	for i := range testProbes {
		acc := fmt.Sprintf("0000999999-24-%06d", i)
		if f.Test(acc) {
			falsePositives++
		}
	}

	// False positive rate should be approximately 1%
	// Allow up to 2% to account for statistical variance
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
