// Package htmltree parses filing markup into the typed node tree the
// extraction engine navigates. The parser is form-agnostic: it classifies
// headings structurally (tag level, bold or capitalized styling, item-like
// phrasing) and leaves form-specific section matching to its consumers.
//
// Filings span thirty years of authoring tools, so the walk recognizes
// three heading generations: real h1-h6 tags, styled paragraph blocks, and
// all-caps text runs. Layout tables are walked through transparently while
// data tables collapse into single linearized nodes.
package htmltree

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ebarkan/edgarseg"
	"golang.org/x/net/html"
)

// Heading levels assigned by the parser. Part dividers sit above item
// markers, tag headings below them, styled pseudo-headings below those.
// The values only order headings within one document.
const (
	levelPart    = 1
	levelItem    = 2
	levelTagBase = 2 // h1 becomes 3, h6 becomes 8
	levelStyled  = 9
)

// DefaultMaxHeadingLen is the longest normalized text still considered for
// heading classification on non-h tags.
const DefaultMaxHeadingLen = 200

var (
	// markerPattern recognizes item-heading phrasing of any supported
	// form, including dotted 8-K numbers.
	markerPattern = regexp.MustCompile(`(?i)^(?:part\s+(?:[ivx]+|\d+)\b[\s.,:;\-–—]*)?item\s+\d{1,2}(?:\.\d{2})?[A-Ca-c]?\b`)

	// markerRejectPattern catches numbers continuing past the matched
	// item number, as in "Item 7.50% Senior Notes".
	markerRejectPattern = regexp.MustCompile(`^(?:%|[.,]\d)`)

	// furniturePattern recognizes standalone page numbers, including the
	// F-pages of financial statements.
	furniturePattern = regexp.MustCompile(`(?i)^(?:page\s+)?(?:\d{1,4}|[a-f]-\d{1,3})$`)

	boldStylePattern = regexp.MustCompile(`font-weight\s*:\s*(?:bold|[7-9]00)`)
)

// isMarker reports whether text opens with item-heading phrasing.
func isMarker(text string) bool {
	loc := markerPattern.FindStringIndex(text)
	return loc != nil && !markerRejectPattern.MatchString(text[loc[1]:])
}

// Parser converts filing markup into an edgarseg.Tree. It implements
// edgarseg.StructuralParser.
type Parser struct {
	// MaxHeadingLen is the heading-classification length cutoff for
	// paragraph-shaped blocks. Zero means DefaultMaxHeadingLen.
	MaxHeadingLen int
}

var _ edgarseg.StructuralParser = (*Parser)(nil)

// NewParser returns a Parser with default limits. It is stateless and safe
// for concurrent use.
func NewParser() *Parser {
	return &Parser{MaxHeadingLen: DefaultMaxHeadingLen}
}

// Parse builds the node tree for a full document or a pre-seeked fragment.
// Node order in the arena is document order.
func (p *Parser) Parse(text string) (*edgarseg.Tree, error) {
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, edgarseg.Errorf(edgarseg.EINTERNAL, "Markup parse failed: %v.", err)
	}
	maxLen := p.MaxHeadingLen
	if maxLen <= 0 {
		maxLen = DefaultMaxHeadingLen
	}
	b := &builder{maxHeadingLen: maxLen}
	b.stack = []frame{{idx: -1, level: 0}}
	b.walk(root)
	b.flush()
	return &edgarseg.Tree{Nodes: b.nodes}, nil
}

// frame is one open heading scope during the build.
type frame struct {
	idx   int
	level int
}

type builder struct {
	maxHeadingLen int

	nodes []edgarseg.Node
	stack []frame

	// run accumulates inline text between block children of the current
	// container.
	run strings.Builder

	// pendingAnchor is the id of an empty anchor element waiting to be
	// attached to the next emitted node.
	pendingAnchor string
}

// Elements whose subtrees never contribute content.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
	"noscript": true, "iframe": true, "svg": true,
}

// Leaf block elements classified as a unit.
var leafTags = map[string]bool{
	"p": true, "li": true, "blockquote": true, "dd": true, "dt": true,
	"pre": true,
}

// Container elements walked through. A div or table cell with no block
// children is treated as a leaf instead. Inline wrappers like span and
// font are not listed; they join the surrounding text run.
var containerTags = map[string]bool{
	"html": true, "body": true, "div": true, "center": true, "ul": true,
	"ol": true, "dl": true, "form": true, "section": true,
	"article": true, "main": true, "tbody": true, "thead": true,
	"tfoot": true, "tr": true, "td": true, "th": true,
}

// walk processes a container element's children, batching inline runs into
// text blocks and dispatching block children.
func (b *builder) walk(n *html.Node) {
	if id := elementAnchor(n); id != "" {
		b.pendingAnchor = id
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.run.WriteString(c.Data)
		case html.ElementNode:
			b.element(c)
		}
	}
}

func (b *builder) element(c *html.Node) {
	tag := c.Data
	switch {
	case skipTags[tag]:
		return
	case tag == "br":
		b.run.WriteByte(' ')
		return
	case tag == "hr":
		b.flush()
		b.emit(edgarseg.Node{Type: edgarseg.NodeSupplementary})
		return
	case tag == "a":
		if id := elementAnchor(c); id != "" && strings.TrimSpace(textContent(c)) == "" {
			b.flush()
			b.pendingAnchor = id
			return
		}
		b.run.WriteString(textContent(c))
		return
	case tag == "table":
		b.flush()
		if isLayoutTable(c) {
			b.walk(c)
			return
		}
		b.emit(edgarseg.Node{
			Type:     edgarseg.NodeTable,
			Text:     linearizeTable(c),
			AnchorID: elementAnchor(c),
		})
		return
	case headingLevel(tag) > 0:
		b.flush()
		b.heading(c, levelTagBase+headingLevel(tag))
		return
	case leafTags[tag]:
		b.flush()
		b.leaf(c)
		return
	case containerTags[tag]:
		if hasBlockChild(c) {
			b.flush()
			b.walk(c)
			return
		}
		b.flush()
		b.leaf(c)
		return
	default:
		// Inline wrappers. Styled spans occasionally hide block
		// structure, so check before joining the run.
		if hasBlockChild(c) {
			b.flush()
			b.walk(c)
			return
		}
		b.run.WriteString(textContent(c))
	}
}

// leaf classifies a block with no block children: item marker, part
// divider, styled sub-heading, page furniture, or plain text.
func (b *builder) leaf(c *html.Node) {
	text := edgarseg.NormalizeSpace(textContent(c))
	anchor := elementAnchor(c)
	if text == "" {
		if anchor != "" {
			b.pendingAnchor = anchor
		}
		return
	}
	short := len(text) <= b.maxHeadingLen
	switch {
	case short && furniturePattern.MatchString(text):
		b.emit(edgarseg.Node{Type: edgarseg.NodeSupplementary, Text: text, AnchorID: anchor})
	case short && isMarker(text) && !mostlyLinked(c):
		b.pushHeading(edgarseg.Node{Type: edgarseg.NodeSectionMarker, Text: text, AnchorID: anchor}, levelItem)
	case short && edgarseg.PartHeadingPattern().MatchString(text) && !mostlyLinked(c):
		b.pushHeading(edgarseg.Node{Type: edgarseg.NodeSubTitle, Text: text, AnchorID: anchor}, levelPart)
	case short && styledHeading(c, text):
		b.pushHeading(edgarseg.Node{Type: edgarseg.NodeSubTitle, Text: text, AnchorID: anchor}, levelStyled)
	default:
		b.emit(edgarseg.Node{Type: edgarseg.NodeTextBlock, Text: text, AnchorID: anchor})
	}
}

// heading handles a real h1-h6 element. Item-like phrasing overrides the
// tag level so a form section stays above its sub-headings no matter what
// tag the author picked.
func (b *builder) heading(c *html.Node, tagLevel int) {
	text := edgarseg.NormalizeSpace(textContent(c))
	if text == "" {
		return
	}
	node := edgarseg.Node{Type: edgarseg.NodeSubTitle, Text: text, AnchorID: elementAnchor(c)}
	level := tagLevel
	switch {
	case len(text) <= b.maxHeadingLen && isMarker(text) && !mostlyLinked(c):
		node.Type = edgarseg.NodeSectionMarker
		level = levelItem
	case len(text) <= b.maxHeadingLen && edgarseg.PartHeadingPattern().MatchString(text):
		level = levelPart
	}
	b.pushHeading(node, level)
}

// pushHeading emits a heading node and opens its scope.
func (b *builder) pushHeading(node edgarseg.Node, level int) {
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	node.Level = level
	idx := b.emit(node)
	b.stack = append(b.stack, frame{idx: idx, level: level})
}

// emit appends a node under the current scope and resolves any pending
// anchor. Returns the node's arena index.
func (b *builder) emit(node edgarseg.Node) int {
	node.Parent = b.stack[len(b.stack)-1].idx
	if node.AnchorID == "" {
		node.AnchorID = b.pendingAnchor
	}
	b.pendingAnchor = ""
	b.nodes = append(b.nodes, node)
	return len(b.nodes) - 1
}

// flush turns the accumulated inline run into a text block.
func (b *builder) flush() {
	text := edgarseg.NormalizeSpace(b.run.String())
	b.run.Reset()
	if text == "" {
		return
	}
	if len(text) <= b.maxHeadingLen && furniturePattern.MatchString(text) {
		b.emit(edgarseg.Node{Type: edgarseg.NodeSupplementary, Text: text})
		return
	}
	b.emit(edgarseg.Node{Type: edgarseg.NodeTextBlock, Text: text})
}

// headingLevel returns 1-6 for h1-h6 and 0 otherwise.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// elementAnchor returns the element's normalized id or name attribute.
func elementAnchor(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == "id" || a.Key == "name" {
			if key := edgarseg.NormalizeAnchor(a.Val); key != "" {
				return key
			}
		}
	}
	return ""
}

// textContent flattens a subtree to text, skipping non-content elements
// and spacing line breaks. Whitespace is kept as written; callers
// normalize.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(m *html.Node) {
		switch m.Type {
		case html.TextNode:
			sb.WriteString(m.Data)
			return
		case html.ElementNode:
			if skipTags[m.Data] {
				return
			}
			if m.Data == "br" {
				sb.WriteByte(' ')
				return
			}
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}

// styledHeading reports whether a short block reads as a sub-heading: all
// of its text bold or underlined, or all-caps. Text ending in a period is
// prose no matter how it is styled.
func styledHeading(n *html.Node, text string) bool {
	if strings.HasSuffix(text, ".") {
		return false
	}
	if fullyEmphasized(n) {
		return true
	}
	return allCaps(text) && (len(text) >= 6 || strings.ContainsRune(text, ' '))
}

// fullyEmphasized reports whether every text run in the subtree sits under
// a bold, strong, underline, or bold-styled element.
func fullyEmphasized(n *html.Node) bool {
	any := false
	ok := true
	var rec func(m *html.Node, emph bool)
	rec = func(m *html.Node, emph bool) {
		switch m.Type {
		case html.TextNode:
			if strings.TrimSpace(m.Data) != "" {
				any = true
				if !emph {
					ok = false
				}
			}
			return
		case html.ElementNode:
			if skipTags[m.Data] {
				return
			}
			emph = emph || emphasizedElement(m)
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			rec(c, emph)
		}
	}
	rec(n, emphasizedElement(n))
	return any && ok
}

func emphasizedElement(n *html.Node) bool {
	switch n.Data {
	case "b", "strong", "u":
		return true
	}
	for _, a := range n.Attr {
		if a.Key == "style" && boldStylePattern.MatchString(strings.ToLower(a.Val)) {
			return true
		}
	}
	return false
}

// allCaps reports whether text contains letters and none of them lowercase.
func allCaps(text string) bool {
	hasLetter := false
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if (r >= 'A' && r <= 'Z') || (r >= 'À' && r <= 'Þ') {
			hasLetter = true
		}
	}
	return hasLetter
}

// mostlyLinked reports whether at least half of a block's text sits inside
// hyperlinks. Table-of-contents entries are fully linked; body headings
// never are.
func mostlyLinked(n *html.Node) bool {
	total := 0
	linked := 0
	var rec func(m *html.Node, inLink bool)
	rec = func(m *html.Node, inLink bool) {
		switch m.Type {
		case html.TextNode:
			l := len(strings.TrimSpace(m.Data))
			total += l
			if inLink {
				linked += l
			}
			return
		case html.ElementNode:
			if skipTags[m.Data] {
				return
			}
			if m.Data == "a" {
				for _, a := range m.Attr {
					if a.Key == "href" {
						inLink = true
						break
					}
				}
			}
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			rec(c, inLink)
		}
	}
	rec(n, false)
	return total > 0 && linked*2 >= total
}

// hasBlockChild reports whether any descendant is a block-level element.
func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if leafTags[c.Data] || headingLevel(c.Data) > 0 || c.Data == "table" || c.Data == "hr" ||
			c.Data == "div" || c.Data == "ul" || c.Data == "ol" || c.Data == "dl" {
			return true
		}
		if hasBlockChild(c) {
			return true
		}
	}
	return false
}

// maxDataTableText bounds how much text a table may hold before it is
// walked as layout instead of linearized whole.
const maxDataTableText = 8 << 10

// isLayoutTable reports whether a table frames document flow rather than
// holding data. Paragraphs, headings, and nested tables mark layout; cell
// divs do not, since modern data tables wrap every cell in one. A table
// carrying more text than any plausible data table is layout too.
func isLayoutTable(n *html.Node) bool {
	if hasFlowDescendant(n) {
		return true
	}
	return len(textContent(n)) > maxDataTableText
}

func hasFlowDescendant(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case c.Data == "p", c.Data == "table", c.Data == "hr",
			c.Data == "ul", c.Data == "ol", c.Data == "blockquote",
			headingLevel(c.Data) > 0:
			return true
		}
		if hasFlowDescendant(c) {
			return true
		}
	}
	return false
}

// linearizeTable flattens a data table into pipe-separated rows, one line
// per row.
func linearizeTable(n *html.Node) string {
	doc := goquery.NewDocumentFromNode(n)
	var rows []string
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td,th").Each(func(_ int, cell *goquery.Selection) {
			if t := edgarseg.NormalizeSpace(cell.Text()); t != "" {
				cells = append(cells, t)
			}
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	})
	if len(rows) == 0 {
		return edgarseg.NormalizeSpace(textContent(n))
	}
	return strings.Join(rows, "\n")
}
