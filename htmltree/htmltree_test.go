package htmltree_test

import (
	"strings"
	"testing"

	"github.com/ebarkan/edgarseg"
	"github.com/ebarkan/edgarseg/htmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modernDoc = `<html><head><title>FY2024 Annual Report</title><style>p{margin:0}</style></head><body>
<div id="toc">
  <p><a href="#item1">Item 1. Business</a></p>
  <p><a href="#item1a">Item 1A. Risk Factors</a></p>
</div>
<hr>
<div style="text-align:center"><b>PART I</b></div>
<div id="item1"><span style="font-weight:700">Item 1. Business</span></div>
<p>The Company designs and sells smartphones, personal computers, and wearables.</p>
<div>Revenue <span>grew</span> modestly in fiscal 2024.</div>
<table id="revenue">
  <tr><th>Category</th><th>2024</th></tr>
  <tr><td>iPhone</td><td><div>$ 201,183</div></td></tr>
</table>
<div>23</div>
<hr>
<a name="ITEM_1A"></a>
<div><b>Item 1A. Risk Factors</b></div>
<div style="font-weight:bold">Supply Chain Risk</div>
<p>The Company depends on component supply from a small number of partners.</p>
<p><b>None.</b></p>
<p>Item 7.50% Senior Notes of a subsidiary remain outstanding.</p>
</body></html>`

func nodeIndex(t *testing.T, tree *edgarseg.Tree, text string) int {
	t.Helper()
	for i, n := range tree.Nodes {
		if n.Text == text {
			return i
		}
	}
	t.Fatalf("no node with text %q", text)
	return -1
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	tree, err := htmltree.NewParser().Parse(modernDoc)
	require.NoError(t, err)
	require.NotZero(t, tree.Len())

	t.Run("toc entries are text blocks", func(t *testing.T) {
		for _, text := range []string{"Item 1. Business", "Item 1A. Risk Factors"} {
			first := nodeIndex(t, tree, text)
			assert.Equal(t, edgarseg.NodeTextBlock, tree.Nodes[first].Type)
		}
	})

	t.Run("item headings become section markers", func(t *testing.T) {
		var markers []string
		for _, n := range tree.Nodes {
			if n.Type == edgarseg.NodeSectionMarker {
				markers = append(markers, n.Text)
			}
		}
		assert.Equal(t, []string{"Item 1. Business", "Item 1A. Risk Factors"}, markers)
	})

	t.Run("part divider outranks item markers", func(t *testing.T) {
		part := nodeIndex(t, tree, "PART I")
		item := markerIndex(t, tree, "Item 1. Business")
		assert.Equal(t, edgarseg.NodeSubTitle, tree.Nodes[part].Type)
		assert.Less(t, tree.Nodes[part].Level, tree.Nodes[item].Level)
		assert.Contains(t, tree.Ancestors(item), part)
	})

	t.Run("anchor ids", func(t *testing.T) {
		item1 := markerIndex(t, tree, "Item 1. Business")
		assert.Equal(t, "item1", tree.Nodes[item1].AnchorID)

		// The second item has no id of its own; it inherits the empty
		// anchor element right before it, case-folded.
		item1a := markerIndex(t, tree, "Item 1A. Risk Factors")
		assert.Equal(t, "item1a", tree.Nodes[item1a].AnchorID)
	})

	t.Run("inline span joins its paragraph", func(t *testing.T) {
		i := nodeIndex(t, tree, "Revenue grew modestly in fiscal 2024.")
		assert.Equal(t, edgarseg.NodeTextBlock, tree.Nodes[i].Type)
	})

	t.Run("data table is one linearized node", func(t *testing.T) {
		var tables []edgarseg.Node
		for _, n := range tree.Nodes {
			if n.Type == edgarseg.NodeTable {
				tables = append(tables, n)
			}
		}
		require.Len(t, tables, 1)
		assert.Equal(t, "revenue", tables[0].AnchorID)
		assert.Equal(t, "Category | 2024\niPhone | $ 201,183", tables[0].Text)
	})

	t.Run("page number is supplementary", func(t *testing.T) {
		i := nodeIndex(t, tree, "23")
		assert.Equal(t, edgarseg.NodeSupplementary, tree.Nodes[i].Type)
	})

	t.Run("styled block under a marker is a sub title", func(t *testing.T) {
		sub := nodeIndex(t, tree, "Supply Chain Risk")
		item1a := markerIndex(t, tree, "Item 1A. Risk Factors")
		require.Equal(t, edgarseg.NodeSubTitle, tree.Nodes[sub].Type)
		assert.Equal(t, item1a, tree.Nodes[sub].Parent)

		body := nodeIndex(t, tree, "The Company depends on component supply from a small number of partners.")
		assert.Equal(t, sub, tree.Nodes[body].Parent)
	})

	t.Run("bold sentence stays prose", func(t *testing.T) {
		i := nodeIndex(t, tree, "None.")
		assert.Equal(t, edgarseg.NodeTextBlock, tree.Nodes[i].Type)
	})

	t.Run("decimal note reference is not a marker", func(t *testing.T) {
		i := nodeIndex(t, tree, "Item 7.50% Senior Notes of a subsidiary remain outstanding.")
		assert.Equal(t, edgarseg.NodeTextBlock, tree.Nodes[i].Type)
	})

	t.Run("ancestor chain is outermost first", func(t *testing.T) {
		body := nodeIndex(t, tree, "The Company depends on component supply from a small number of partners.")
		part := nodeIndex(t, tree, "PART I")
		item1a := markerIndex(t, tree, "Item 1A. Risk Factors")
		sub := nodeIndex(t, tree, "Supply Chain Risk")
		assert.Equal(t, []int{part, item1a, sub}, tree.Ancestors(body))
	})
}

// markerIndex finds a heading node by text, skipping the identically
// worded table-of-contents entries.
func markerIndex(t *testing.T, tree *edgarseg.Tree, text string) int {
	t.Helper()
	for i, n := range tree.Nodes {
		if n.Type == edgarseg.NodeSectionMarker && n.Text == text {
			return i
		}
	}
	t.Fatalf("no section marker with text %q", text)
	return -1
}

func TestParser_Parse_TagHeadings(t *testing.T) {
	t.Parallel()

	doc := `<html><body>
<h1>ANNUAL REPORT</h1>
<h2>Item 7. Management’s Discussion and Analysis</h2>
<h3>Liquidity and Capital Resources</h3>
<p>Cash flows from operations were strong.</p>
<h2>Item 7A. Quantitative and Qualitative Disclosures About Market Risk</h2>
<p>Interest rate exposure is managed with duration targets.</p>
</body></html>`
	tree, err := htmltree.NewParser().Parse(doc)
	require.NoError(t, err)

	item7 := markerIndex(t, tree, "Item 7. Management’s Discussion and Analysis")
	item7a := markerIndex(t, tree, "Item 7A. Quantitative and Qualitative Disclosures About Market Risk")
	liquidity := nodeIndex(t, tree, "Liquidity and Capital Resources")

	// Item phrasing overrides the h2 tag level, so the second item
	// closes the first instead of nesting under its h3.
	assert.Equal(t, edgarseg.NodeSubTitle, tree.Nodes[liquidity].Type)
	assert.Equal(t, item7, tree.Nodes[liquidity].Parent)
	assert.Equal(t, -1, tree.Nodes[item7a].Parent)

	cash := nodeIndex(t, tree, "Cash flows from operations were strong.")
	assert.Equal(t, []int{item7, liquidity}, tree.Ancestors(cash))

	rate := nodeIndex(t, tree, "Interest rate exposure is managed with duration targets.")
	assert.Equal(t, []int{item7a}, tree.Ancestors(rate))
}

func TestParser_Parse_LayoutTable(t *testing.T) {
	t.Parallel()

	doc := `<html><body>
<table width="100%">
<tr><td>
<p>ITEM 1. BUSINESS</p>
<p>The Registrant operates regional pipelines.</p>
<p>ITEM 2. PROPERTIES</p>
<p>The Registrant leases office space in Houston.</p>
</td></tr>
</table>
</body></html>`
	tree, err := htmltree.NewParser().Parse(doc)
	require.NoError(t, err)

	item1 := markerIndex(t, tree, "ITEM 1. BUSINESS")
	item2 := markerIndex(t, tree, "ITEM 2. PROPERTIES")

	pipelines := nodeIndex(t, tree, "The Registrant operates regional pipelines.")
	assert.Equal(t, item1, tree.Nodes[pipelines].Parent)

	office := nodeIndex(t, tree, "The Registrant leases office space in Houston.")
	assert.Equal(t, item2, tree.Nodes[office].Parent)

	for _, n := range tree.Nodes {
		assert.NotEqual(t, edgarseg.NodeTable, n.Type)
	}
}

func TestParser_Parse_BlockClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want edgarseg.NodeType
	}{
		{"plain item marker", `<p>Item 1A. Risk Factors</p>`, edgarseg.NodeSectionMarker},
		{"dotted eight-k marker", `<p>Item 5.02 Departure of Directors or Certain Officers</p>`, edgarseg.NodeSectionMarker},
		{"part-prefixed marker", `<p>PART II, ITEM 5. MARKET FOR REGISTRANT'S COMMON EQUITY</p>`, edgarseg.NodeSectionMarker},
		{"linked toc entry", `<p><a href="#item1a">Item 1A. Risk Factors</a></p>`, edgarseg.NodeTextBlock},
		{"decimal security name", `<p>Item 7.50% Senior Notes remain outstanding.</p>`, edgarseg.NodeTextBlock},
		{"bold sub heading", `<div><b>Critical Accounting Estimates</b></div>`, edgarseg.NodeSubTitle},
		{"underlined sub heading", `<p><u>Competition</u></p>`, edgarseg.NodeSubTitle},
		{"weight styled sub heading", `<div style="FONT-WEIGHT:700;margin:6pt 0">Seasonality</div>`, edgarseg.NodeSubTitle},
		{"bold sentence", `<p><b>No matters were submitted to a vote.</b></p>`, edgarseg.NodeTextBlock},
		{"caps sub heading", `<p>LIQUIDITY AND CAPITAL RESOURCES</p>`, edgarseg.NodeSubTitle},
		{"short caps word", `<p>NONE</p>`, edgarseg.NodeTextBlock},
		{"part divider", `<div><b>PART II</b></div>`, edgarseg.NodeSubTitle},
		{"bare page number", `<div>14</div>`, edgarseg.NodeSupplementary},
		{"financial statement page", `<div>F-2</div>`, edgarseg.NodeSupplementary},
		{"page label", `<div>Page 88</div>`, edgarseg.NodeSupplementary},
		{"prose paragraph", `<p>We operate in highly competitive markets.</p>`, edgarseg.NodeTextBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, err := htmltree.NewParser().Parse("<html><body>" + tt.body + "</body></html>")
			require.NoError(t, err)
			require.Equal(t, 1, tree.Len())
			assert.Equal(t, tt.want, tree.Nodes[0].Type, "text %q", tree.Nodes[0].Text)
		})
	}
}

func TestParser_Parse_StrayText(t *testing.T) {
	t.Parallel()

	doc := `<html><body>Filed pursuant to Rule 424(b)(3)<p>First paragraph.</p>tail run</body></html>`
	tree, err := htmltree.NewParser().Parse(doc)
	require.NoError(t, err)

	require.Equal(t, 3, tree.Len())
	assert.Equal(t, "Filed pursuant to Rule 424(b)(3)", tree.Nodes[0].Text)
	assert.Equal(t, "First paragraph.", tree.Nodes[1].Text)
	assert.Equal(t, "tail run", tree.Nodes[2].Text)
	for _, n := range tree.Nodes {
		assert.Equal(t, edgarseg.NodeTextBlock, n.Type)
	}
}

func TestParser_Parse_NestedAnchorTargets(t *testing.T) {
	t.Parallel()

	doc := `<html><body>
<div id="s1"><p>Item 2. Properties</p><p>We own our headquarters campus.</p></div>
</body></html>`
	tree, err := htmltree.NewParser().Parse(doc)
	require.NoError(t, err)

	// A container id flows to the first node inside it.
	item := markerIndex(t, tree, "Item 2. Properties")
	assert.Equal(t, "s1", tree.Nodes[item].AnchorID)

	body := nodeIndex(t, tree, "We own our headquarters campus.")
	assert.Empty(t, tree.Nodes[body].AnchorID)
}

func TestParser_Parse_Empty(t *testing.T) {
	t.Parallel()

	tree, err := htmltree.NewParser().Parse("")
	require.NoError(t, err)
	assert.Zero(t, tree.Len())
}

func TestParser_Parse_OversizedTableIsWalked(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString("<html><body><table>")
	for i := 0; i < 400; i++ {
		sb.WriteString("<tr><td>")
		sb.WriteString(strings.Repeat("covenant disclosure text ", 2))
		sb.WriteString("</td></tr>")
	}
	sb.WriteString("</table></body></html>")

	tree, err := htmltree.NewParser().Parse(sb.String())
	require.NoError(t, err)

	// Too much text for a data table, so cells come through as blocks.
	require.NotZero(t, tree.Len())
	for _, n := range tree.Nodes {
		assert.Equal(t, edgarseg.NodeTextBlock, n.Type)
	}
}
