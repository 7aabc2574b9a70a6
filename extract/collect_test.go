package extract_test

import (
	"strings"
	"testing"

	"github.com/ebarkan/edgarseg"
	"github.com/ebarkan/edgarseg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supplementary(text string, parent int) edgarseg.Node {
	return edgarseg.Node{Type: edgarseg.NodeSupplementary, Text: text, Parent: parent}
}

func TestCollect_stops_at_next_marker(t *testing.T) {
	t.Parallel()

	tr := tree(
		marker("Item 1A. Risk Factors", -1),
		textBlock("The following risks could materially affect our business.", 0),
		subtitle("Supply Chain Risk", 0),
		textBlock("We depend on a limited number of suppliers for key components.", 2),
		supplementary("14", 2),
		textBlock("24", 2),
		tableNode("Metric | 2024\nRevenue | $ 1,000", 2),
		marker("Item 1B. Unresolved Staff Comments", -1),
		textBlock("None.", 7),
	)
	it := mustItem(t, edgarseg.Form10K, "risk-factors")

	content := extract.Collect(tr, 0, it, edgarseg.Form10K)

	assert.Equal(t, "Item 1A. Risk Factors", content.Heading)
	require.Len(t, content.Nodes, 3)

	assert.Equal(t, "The following risks could materially affect our business.", content.Nodes[0].Text)
	assert.Equal(t, edgarseg.NodeTextBlock, content.Nodes[0].Kind)
	assert.Equal(t, []string{"Item 1A. Risk Factors"}, content.Nodes[0].Ancestors)

	assert.Equal(t, []string{"Item 1A. Risk Factors", "Supply Chain Risk"}, content.Nodes[1].Ancestors)

	assert.Equal(t, edgarseg.NodeTable, content.Nodes[2].Kind)
	assert.Equal(t, "Metric | 2024\nRevenue | $ 1,000", content.Nodes[2].Text)
	assert.Equal(t, []string{"Item 1A. Risk Factors", "Supply Chain Risk"}, content.Nodes[2].Ancestors)
}

func TestCollect_part_divider_ends_collection(t *testing.T) {
	t.Parallel()

	// The block after the Part II divider would pass the boundary
	// predicate, so only the divider rule can keep it out.
	tr := tree(
		divider("PART I — FINANCIAL INFORMATION", -1),
		marker("Item 4. Controls and Procedures", 0),
		textBlock("Our disclosure controls were evaluated as of quarter end.", 1),
		divider("PART II — OTHER INFORMATION", -1),
		textBlock("Overview of other information.", 3),
		marker("Item 1. Legal Proceedings", 3),
	)
	it := mustItem(t, edgarseg.Form10Q, "controls-procedures")

	content := extract.Collect(tr, 1, it, edgarseg.Form10Q)

	require.Len(t, content.Nodes, 1)
	assert.Equal(t, "Our disclosure controls were evaluated as of quarter end.", content.Nodes[0].Text)
}

func TestCollect_continuation_header_is_skipped(t *testing.T) {
	t.Parallel()

	// Running "(Continued)" headers repeat the open item's own number.
	// They must not end the section and must not become a breadcrumb.
	tr := tree(
		marker("Item 7. Management's Discussion and Analysis of Financial Condition and Results of Operations", -1),
		textBlock("Overview paragraph of the discussion.", 0),
		marker("Item 7. Management's Discussion and Analysis (Continued)", -1),
		textBlock("Liquidity remains strong across all segments.", 2),
		marker("Item 7A. Quantitative and Qualitative Disclosures About Market Risk", -1),
	)
	it := mustItem(t, edgarseg.Form10K, "mdna")

	content := extract.Collect(tr, 0, it, edgarseg.Form10K)

	require.Len(t, content.Nodes, 2)
	assert.Equal(t, []string{content.Heading}, content.Nodes[1].Ancestors)
}

func TestCollect_prose_mention_is_not_a_boundary(t *testing.T) {
	t.Parallel()

	tr := tree(
		marker("Item 1A. Risk Factors", -1),
		textBlock("Item 3 of this report describes pending litigation in detail.", 0),
		textBlock("Competition could reduce our margins across product lines.", 0),
		marker("Item 1B. Unresolved Staff Comments", -1),
	)
	it := mustItem(t, edgarseg.Form10K, "risk-factors")

	content := extract.Collect(tr, 0, it, edgarseg.Form10K)

	require.Len(t, content.Nodes, 2)
	assert.Equal(t, "Item 3 of this report describes pending litigation in detail.", content.Nodes[0].Text)
}

func TestCollect_missed_text_heading_is_a_boundary(t *testing.T) {
	t.Parallel()

	// The parser classified the next item heading as plain text. It still
	// reads like a heading, so collection must stop there.
	tr := tree(
		marker("Item 7A. Quantitative and Qualitative Disclosures About Market Risk", -1),
		textBlock("We are exposed to interest rate fluctuations on our investment portfolio.", 0),
		textBlock("ITEM 8. FINANCIAL STATEMENTS AND SUPPLEMENTARY DATA", -1),
		textBlock("Index to consolidated financial statements follows.", -1),
	)
	it := mustItem(t, edgarseg.Form10K, "market-risk")

	content := extract.Collect(tr, 0, it, edgarseg.Form10K)

	require.Len(t, content.Nodes, 1)
	assert.Equal(t, "We are exposed to interest rate fluctuations on our investment portfolio.", content.Nodes[0].Text)
}

func TestCollect_start_on_content_block(t *testing.T) {
	t.Parallel()

	// Anchor resolution can land on the first paragraph when the heading
	// itself carried no anchor. The paragraph belongs to the section and
	// the heading falls back to the canonical item title.
	tr := tree(
		subtitle("Annual Report", -1),
		textBlock("An investment in our securities involves a high degree of risk.", -1),
		textBlock("You should carefully consider the risks described below.", -1),
		marker("Item 1B. Unresolved Staff Comments", -1),
	)
	it := mustItem(t, edgarseg.Form10K, "risk-factors")

	content := extract.Collect(tr, 1, it, edgarseg.Form10K)

	assert.Equal(t, "Item 1A. Risk Factors", content.Heading)
	require.Len(t, content.Nodes, 2)
	assert.Equal(t, "An investment in our securities involves a high degree of risk.", content.Nodes[0].Text)
	for _, n := range content.Nodes {
		assert.Equal(t, []string{"Item 1A. Risk Factors"}, n.Ancestors)
	}
}

func TestCollect_breadcrumb_depth_is_capped(t *testing.T) {
	t.Parallel()

	tr := tree(
		marker("Item 1. Business", -1),
		subtitle("Products", 0),
		subtitle("Hardware", 1),
		subtitle("Computers", 2),
		subtitle("Laptops", 3),
		subtitle("Consumer", 4),
		subtitle("Domestic", 5),
		subtitle("Retail", 6),
		subtitle("Direct", 7),
		subtitle("Online", 8),
		textBlock("Online direct retail sales grew modestly.", 9),
	)
	it := mustItem(t, edgarseg.Form10K, "business")

	content := extract.Collect(tr, 0, it, edgarseg.Form10K)

	require.Len(t, content.Nodes, 1)
	anc := content.Nodes[0].Ancestors
	require.Len(t, anc, 8)
	assert.Equal(t, "Item 1. Business", anc[0])
	assert.Equal(t, "Online", anc[7])
	assert.NotContains(t, anc, "Products")
	assert.NotContains(t, anc, "Hardware")
}

func TestCollect_long_heading_text_is_truncated(t *testing.T) {
	t.Parallel()

	tr := tree(
		marker("Item 1. Business", -1),
		subtitle(strings.Repeat("x", 250), 0),
		textBlock("Content under the very long subsection heading.", 1),
	)
	it := mustItem(t, edgarseg.Form10K, "business")

	content := extract.Collect(tr, 0, it, edgarseg.Form10K)

	require.Len(t, content.Nodes, 1)
	anc := content.Nodes[0].Ancestors
	require.Len(t, anc, 2)
	assert.Len(t, anc[1], 200)
}

func TestCollect_empty_section(t *testing.T) {
	t.Parallel()

	tr := tree(
		marker("Item 1B. Unresolved Staff Comments", -1),
		marker("Item 2. Properties", -1),
		textBlock("Our headquarters are owned.", 1),
	)
	it := mustItem(t, edgarseg.Form10K, "unresolved-staff-comments")

	content := extract.Collect(tr, 0, it, edgarseg.Form10K)

	assert.Empty(t, content.Nodes)
	assert.Equal(t, "Item 1B. Unresolved Staff Comments", content.Heading)
}

func TestCollect_filters_noise(t *testing.T) {
	t.Parallel()

	tr := tree(
		marker("Item 2. Properties", -1),
		textBlock("Our corporate headquarters are located in Cupertino, California.", 0),
		textBlock("Apple Inc. | 2024 Form 10-K | 23", 0),
		textBlock("Table of Contents", 0),
		tableNode("Item 1. Business | 1\nItem 1A. Risk Factors | 5\nItem 2. Properties | 23", 0),
		textBlock("We also lease facilities in over forty countries.", 0),
		marker("Item 3. Legal Proceedings", -1),
	)
	it := mustItem(t, edgarseg.Form10K, "properties")

	content := extract.Collect(tr, 0, it, edgarseg.Form10K)

	require.Len(t, content.Nodes, 2)
	assert.Equal(t, "Our corporate headquarters are located in Cupertino, California.", content.Nodes[0].Text)
	assert.Equal(t, "We also lease facilities in over forty countries.", content.Nodes[1].Text)
}
