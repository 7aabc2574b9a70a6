package extract

import (
	"regexp"
	"strings"

	"github.com/ebarkan/edgarseg/bloom"
)

// Page-furniture and table-of-contents patterns. The structural parser
// removes furniture it can see in the markup; these catch what survives as
// ordinary text: runs of page numbers, form-name running headers repeated
// at page boundaries, and TOC blocks flattened out of tables.
var (
	// pageNumberPattern matches standalone page designators: "14",
	// "Page 88", "F-2", "iv", "3 of 58".
	pageNumberPattern = regexp.MustCompile(`(?i)^(?:page\s+)?(?:\d{1,4}|[ivxlcdm]{1,7}|f-\d{1,3})(?:\s+of\s+\d{1,4})?\s*$`)

	// tocHeaderPattern matches table-of-contents captions, including the
	// "Table of Contents" page-top links EDGAR repeats on every page.
	tocHeaderPattern = regexp.MustCompile(`(?i)^(?:table\s+of\s+contents|index|index\s+to\s+[a-z ,]{1,60})\s*$`)

	// dottedLeaderPattern matches TOC lines ending in leader dots and a
	// page number.
	dottedLeaderPattern = regexp.MustCompile(`\.{3,}\s*\d{1,4}\s*$`)

	formNamePattern = regexp.MustCompile(`(?i)\bform\s+(?:10-k|10-q|8-k)(?:/a)?\b`)
	itemRefPattern  = regexp.MustCompile(`(?i)\bitem\s+\d{1,2}(?:\.\d{2})?[a-c]?\b`)
	trailingDigits  = regexp.MustCompile(`\d+\s*$`)
)

// Clean removes furniture and TOC blocks from collected content. Collect
// applies it automatically; it is exported for callers that assemble
// content through other means.
func Clean(nodes []ContentNode) []ContentNode {
	repeats := repeatedFurniture(nodes)
	out := make([]ContentNode, 0, len(nodes))
	for _, n := range nodes {
		if isFurniture(n.Text) || isTOCBlock(n) {
			continue
		}
		if key := furnitureKey(n.Text); key != "" {
			if _, ok := repeats[key]; ok {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func isFurniture(text string) bool {
	if pageNumberPattern.MatchString(text) || tocHeaderPattern.MatchString(text) {
		return true
	}
	// Running headers like "Acme Inc. | 2024 Form 10-K | 23".
	if len(text) <= 100 && formNamePattern.MatchString(text) {
		if strings.Contains(text, "|") || trailingDigits.MatchString(text) {
			return true
		}
	}
	return false
}

// isTOCBlock recognizes a flattened table of contents: several item
// references in one node, arranged as leader lines or item-led rows rather
// than prose.
func isTOCBlock(n ContentNode) bool {
	refs := itemRefPattern.FindAllStringIndex(n.Text, 3)
	if len(refs) < 3 {
		return false
	}
	if dottedLeaderPattern.MatchString(n.Text) {
		return true
	}
	lines := strings.Split(n.Text, "\n")
	if len(lines) < 3 {
		return false
	}
	led := 0
	for _, line := range lines {
		l := strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(l, "item ") || strings.HasPrefix(l, "part ") {
			led++
		}
	}
	return led*2 >= len(lines)
}

// repeatedFurniture finds short furniture-looking lines occurring more
// than once in the section. Membership of everything seen so far is
// tracked probabilistically; only the few flagged repeats are held exactly.
func repeatedFurniture(nodes []ContentNode) map[string]struct{} {
	seen := bloom.NewFilter(4096, 0.01)
	repeats := map[string]struct{}{}
	for _, n := range nodes {
		key := furnitureKey(n.Text)
		if key == "" {
			continue
		}
		if seen.Seen(key) {
			repeats[key] = struct{}{}
		}
	}
	return repeats
}

// furnitureKey returns the normalized dedup key for a node that could
// plausibly be a running header, or "" for ordinary content. Prose is
// never a candidate no matter how often its wording repeats.
func furnitureKey(text string) string {
	if len(text) > 100 {
		return ""
	}
	l := strings.ToLower(text)
	if !strings.ContainsAny(l, "0123456789|") &&
		!strings.Contains(l, "form") && !strings.Contains(l, "continued") {
		return ""
	}
	return l
}
