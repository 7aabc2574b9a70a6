package extract

import (
	"strings"

	"github.com/ebarkan/edgarseg"
)

// maxHeadingLen is the longest node text still considered as a section
// heading by the navigator and the boundary predicate.
const maxHeadingLen = 200

// FindSectionStart locates the node that opens the item's section. Three
// strategies run in order: exact anchor-id match, heading-pattern match,
// and key-fragment substring match. The first strategy producing any match
// wins, and within a strategy the first match in document order wins.
func FindSectionStart(tree *edgarseg.Tree, it edgarseg.Item, form edgarseg.FormType) (int, bool) {
	if i, ok := byAnchor(tree, it, form); ok {
		return i, true
	}
	if i, ok := byHeading(tree, it, form); ok {
		return i, true
	}
	return byFragment(tree, it)
}

// byAnchor matches node anchor ids against the item's canonical anchor
// spelling. Authors write "item1a", "item_1a", "ITEM1A", sometimes with a
// part prefix; ids are already normalized by the parser, so a suffix
// comparison covers all of them.
func byAnchor(tree *edgarseg.Tree, it edgarseg.Item, form edgarseg.FormType) (int, bool) {
	key := it.AnchorKey()
	for i, n := range tree.Nodes {
		if n.AnchorID == "" || n.Type == edgarseg.NodeSupplementary {
			continue
		}
		if !strings.HasSuffix(n.AnchorID, key) {
			continue
		}
		if part := anchorPart(n.AnchorID, key); part != "" {
			if part == it.Part {
				return i, true
			}
			continue
		}
		// Bare anchor. Safe unless the form reuses the number across
		// parts, in which case the id alone cannot say which part.
		if it.Part == "" || !edgarseg.AmbiguousNumber(form, it) {
			return i, true
		}
	}
	return 0, false
}

// anchorPart extracts a part prefix from an anchor id such as
// "part2item1", normalized to the registry's roman spelling.
func anchorPart(anchor, key string) string {
	head := strings.TrimSuffix(anchor, key)
	j := strings.Index(head, "part")
	if j < 0 {
		return ""
	}
	switch strings.TrimPrefix(head[j:], "part") {
	case "i", "1":
		return "I"
	case "ii", "2":
		return "II"
	case "iii", "3":
		return "III"
	case "iv", "4":
		return "IV"
	}
	return ""
}

// byHeading matches heading-node text against the item's known heading
// phrasings, tracking part dividers to resolve forms that reuse item
// numbers across parts.
func byHeading(tree *edgarseg.Tree, it edgarseg.Item, form edgarseg.FormType) (int, bool) {
	pattern := edgarseg.HeadingPattern(it, form)
	if pattern == nil {
		return 0, false
	}
	ambiguous := edgarseg.AmbiguousNumber(form, it)
	title := edgarseg.TitlePattern(it, form)
	part := ""
	for i, n := range tree.Nodes {
		if !n.IsHeading() || len(n.Text) > maxHeadingLen {
			continue
		}
		if p, ok := partDivider(n.Text); ok {
			part = p
			continue
		}
		if !pattern.MatchString(n.Text) {
			continue
		}
		// A combined "Part II, Item 5" heading names its own part, which
		// outranks whatever divider was seen last.
		effective := part
		if p := ownPart(n.Text); p != "" {
			effective = p
		}
		if ambiguous {
			if effective == it.Part {
				return i, true
			}
			if title != nil && title.MatchString(n.Text) {
				return i, true
			}
			continue
		}
		if it.Part != "" && effective != "" && effective != it.Part {
			continue
		}
		return i, true
	}
	return 0, false
}

// byFragment is the last resort: a case-insensitive substring match of the
// item's key fragment against heading text.
func byFragment(tree *edgarseg.Tree, it edgarseg.Item) (int, bool) {
	frag := it.KeyFragment()
	if frag == "" {
		return 0, false
	}
	for i, n := range tree.Nodes {
		if !n.IsHeading() || len(n.Text) > maxHeadingLen {
			continue
		}
		if strings.Contains(strings.ToLower(n.Text), frag) {
			return i, true
		}
	}
	return 0, false
}

// partDivider reports whether text is a part heading like "PART II" or
// "PART II — OTHER INFORMATION" and returns the normalized part numeral.
// Combined "PART II, ITEM 5" headings are item headings, not dividers.
func partDivider(text string) (string, bool) {
	loc := edgarseg.PartHeadingPattern().FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if len(rest) >= 4 && strings.EqualFold(rest[:4], "item") {
		return "", false
	}
	p := partNumeral(text)
	return p, p != ""
}

// ownPart extracts the part numeral from a heading that begins with a part
// prefix, combined item headings included.
func ownPart(text string) string {
	if edgarseg.PartHeadingPattern().FindStringIndex(text) == nil {
		return ""
	}
	return partNumeral(text)
}

// partNumeral normalizes the numeral after "Part" to the registry's roman
// spelling. The text must already be known to start with a part prefix.
func partNumeral(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	switch strings.ToLower(strings.Trim(fields[1], ".,:;-–—")) {
	case "i", "1":
		return "I"
	case "ii", "2":
		return "II"
	case "iii", "3":
		return "III"
	case "iv", "4":
		return "IV"
	}
	return ""
}
