package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ebarkan/edgarseg"
)

// Breadcrumb caps. Malformed documents can nest headings absurdly deep or
// run heading text for paragraphs; both are clamped so segment metadata
// stays bounded.
const (
	maxAncestorLen     = 200
	maxBreadcrumbDepth = 8
)

// ContentNode is one content-bearing block of a collected section with its
// breadcrumb resolved: the chain of the nearest preceding heading, that
// heading included, outermost first.
type ContentNode struct {
	Text      string
	Kind      edgarseg.NodeType
	Ancestors []string
}

// Content is a section's ordered, noise-filtered body.
type Content struct {
	// Heading is the section's own heading text as it appears in the
	// document, or the canonical item heading when the start node
	// carried no heading text.
	Heading string

	Nodes []ContentNode
}

// Collect walks the tree from the start node to the next top-level section
// boundary and returns the section's content nodes with breadcrumbs.
// Ancestor chains are precomputed from the hierarchical tree before the
// flat walk; the walk itself only follows document order.
func Collect(tree *edgarseg.Tree, start int, it edgarseg.Item, form edgarseg.FormType) *Content {
	chains := headingChains(tree)

	heading := canonicalHeading(it)
	if tree.Nodes[start].IsHeading() {
		heading = crumbText(tree.Nodes[start].Text)
	}

	// crumbs resolves the breadcrumb for a heading node, trimmed to the
	// section: chain entries above the start node belong to the document
	// shell (part dividers, report title) and are dropped.
	memo := map[int][]string{}
	crumbs := func(h int) []string {
		if c, ok := memo[h]; ok {
			return c
		}
		var c []string
		for _, p := range chains[h] {
			if p >= start {
				c = append(c, crumbText(tree.Nodes[p].Text))
			}
		}
		if h >= start && tree.Nodes[h].IsHeading() {
			c = append(c, crumbText(tree.Nodes[h].Text))
		}
		if len(c) == 0 || c[0] != heading {
			c = append([]string{heading}, c...)
		}
		c = capDepth(c)
		memo[h] = c
		return c
	}

	content := &Content{Heading: heading}
	lastHeading := start

	// The start node is normally the section heading. When anchor
	// resolution landed on a content block instead, the block itself
	// belongs to the section.
	if n := tree.Nodes[start]; !n.IsHeading() && contentKind(n.Type) && n.Text != "" {
		content.Nodes = append(content.Nodes, ContentNode{
			Text:      n.Text,
			Kind:      n.Type,
			Ancestors: crumbs(start),
		})
	}

	for i := start + 1; i < tree.Len(); i++ {
		n := tree.Nodes[i]
		if _, ok := partDivider(n.Text); ok && n.IsHeading() {
			break
		}
		if boundary, continuation := nextTopLevel(n, it, form); boundary {
			break
		} else if continuation {
			// Running "Item X (continued)" headers repeat the open
			// section's own heading; they are furniture, not a new
			// breadcrumb level.
			continue
		}
		if n.IsHeading() {
			lastHeading = i
			continue
		}
		if !contentKind(n.Type) || n.Text == "" {
			continue
		}
		content.Nodes = append(content.Nodes, ContentNode{
			Text:      n.Text,
			Kind:      n.Type,
			Ancestors: crumbs(lastHeading),
		})
	}

	content.Nodes = Clean(content.Nodes)
	return content
}

// headingChains computes, for every node, the indices of its heading
// ancestors outermost first. Parents precede children in the arena, so one
// ordered pass is a depth-first traversal of the hierarchy.
func headingChains(tree *edgarseg.Tree) [][]int {
	chains := make([][]int, tree.Len())
	for i, n := range tree.Nodes {
		p := n.Parent
		if p < 0 {
			continue
		}
		chain := chains[p]
		if tree.Nodes[p].IsHeading() {
			chain = append(chain[:len(chain):len(chain)], p)
		}
		chains[i] = chain
	}
	return chains
}

func contentKind(t edgarseg.NodeType) bool {
	return t == edgarseg.NodeTextBlock || t == edgarseg.NodeTable
}

func crumbText(s string) string {
	return edgarseg.TruncateRunes(edgarseg.NormalizeSpace(s), maxAncestorLen)
}

func canonicalHeading(it edgarseg.Item) string {
	return fmt.Sprintf("Item %s. %s", it.Number, it.Title)
}

// capDepth clamps a breadcrumb to maxBreadcrumbDepth entries, keeping the
// section heading and the innermost levels so the last entry stays the
// nearest heading.
func capDepth(crumbs []string) []string {
	if len(crumbs) <= maxBreadcrumbDepth {
		return crumbs
	}
	capped := make([]string, 0, maxBreadcrumbDepth)
	capped = append(capped, crumbs[0])
	capped = append(capped, crumbs[len(crumbs)-(maxBreadcrumbDepth-1):]...)
	return capped
}

// boundaryRejectPattern catches numbers continuing past a matched item
// number ("Item 7.50% Senior Notes").
var boundaryRejectPattern = regexp.MustCompile(`^[.,]\d`)

// continuationPattern recognizes prose that mentions an item rather than
// opening one: "Item 7 of this report", "Item 8 above".
var continuationPattern = regexp.MustCompile(`(?i)^(?:of|above|below|and|or|is|are|was|were|to|for|in|under|herein|hereof|within|contains|discusses|describes|includes|provides)\b`)

const maxBoundaryTitleWords = 16

// nextTopLevel classifies a node against the open section: boundary means
// a different item's heading starts here, continuation means the node
// repeats the open section's own item heading.
func nextTopLevel(n edgarseg.Node, it edgarseg.Item, form edgarseg.FormType) (boundary, continuation bool) {
	text := n.Text
	if len(text) > maxHeadingLen {
		return false, false
	}
	loc := edgarseg.TopLevelPattern(form).FindStringSubmatchIndex(text)
	if loc == nil {
		return false, false
	}
	rest := text[loc[1]:]
	if boundaryRejectPattern.MatchString(rest) {
		return false, false
	}
	number := text[loc[2]:loc[3]]
	if strings.EqualFold(number, it.Number) {
		return false, n.IsHeading()
	}
	if n.IsHeading() {
		return true, false
	}
	if n.Type != edgarseg.NodeTextBlock {
		return false, false
	}
	// A plain text block ends the section only when it reads like a
	// heading the parser failed to classify, never when prose merely
	// mentions another item.
	rest = strings.TrimLeft(rest, " .,:;)-–—")
	if continuationPattern.MatchString(rest) {
		return false, false
	}
	return edgarseg.CountWords(rest) <= maxBoundaryTitleWords, false
}
