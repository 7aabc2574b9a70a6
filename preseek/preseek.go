// Package preseek narrows a decoded filing document to the byte range of
// one section before any structural parsing happens. Full HTML parsing of a
// multi-megabyte filing costs far more than the wanted section justifies,
// so the seeker runs selective tokenizer passes that keep O(1) state and
// never build a tree.
//
// Two independent strategies run in order. The table-of-contents strategy
// follows an internal hyperlink whose label names the section to the
// element anchored as its target, bounding the end at the next section's
// target. The heading strategy scans block-level text for a heading
// matching the section, bounding the end at the next top-level heading.
// Either way the result slices the input exactly; nothing is normalized or
// stripped, so the downstream parser receives organically structured
// markup.
package preseek

import (
	"github.com/ebarkan/edgarseg"
)

// Anchor resolution method names, carried on the returned anchor.
const (
	MethodTOC     = "toc"
	MethodHeading = "heading"
)

// DefaultMaxHeadingLen is the longest normalized block text still treated
// as a candidate heading. Real item headings run well under this; prose
// paragraphs that merely start with an item phrase run well over it.
const DefaultMaxHeadingLen = 200

// maxBlockText caps per-block text accumulation. Matching is anchored at
// the start of block text, so bytes past the cap can never change the
// outcome.
const maxBlockText = 256

// Seeker locates section byte ranges. It implements edgarseg.PreSeeker.
// The zero value is not ready; use NewSeeker.
type Seeker struct {
	// MaxHeadingLen is the heading-candidate length cutoff.
	MaxHeadingLen int
}

var _ edgarseg.PreSeeker = (*Seeker)(nil)

// NewSeeker returns a Seeker with default limits. It is stateless and safe
// for concurrent use.
func NewSeeker() *Seeker {
	return &Seeker{MaxHeadingLen: DefaultMaxHeadingLen}
}

// Seek returns the byte range of the item's section within text. The
// boolean is false when neither strategy finds the section.
func (s *Seeker) Seek(text string, form edgarseg.FormType, item edgarseg.Item) (edgarseg.Anchor, bool) {
	if a, ok := s.seekTOC(text, form, item); ok {
		return a, true
	}
	if a, ok := s.seekHeading(text, form, item); ok {
		return a, true
	}
	return edgarseg.Anchor{}, false
}
