package edgarseg

// NodeType classifies an element of a parsed document tree.
type NodeType int

// Node types produced by a StructuralParser.
const (
	// NodeTextBlock is a paragraph, list item, or other text-bearing block.
	NodeTextBlock NodeType = iota

	// NodeSectionMarker is a heading that opens a top-level form section
	// (an Item heading).
	NodeSectionMarker

	// NodeSubTitle is any other heading.
	NodeSubTitle

	// NodeTable is a table, with its cells linearized into the text payload.
	NodeTable

	// NodeSupplementary is page furniture emitted by the parser: page
	// breaks, page-number blocks, horizontal rules.
	NodeSupplementary
)

// String returns the lowercase name of the node type.
func (t NodeType) String() string {
	switch t {
	case NodeTextBlock:
		return "text"
	case NodeSectionMarker:
		return "section_marker"
	case NodeSubTitle:
		return "subtitle"
	case NodeTable:
		return "table"
	case NodeSupplementary:
		return "supplementary"
	}
	return "unknown"
}

// Node is one element of a parsed document tree. Nodes live in a Tree's
// arena and reference their parent by index, never by pointer, so the
// parent link can be followed without ownership cycles.
type Node struct {
	Type NodeType

	// Text is the node's visible text with whitespace runs collapsed.
	Text string

	// Level is the author-dependent nesting level: the tag level for real
	// h1-h6 headings, a pseudo-level for styled-paragraph headings. It is
	// ordered within one document but carries no cross-document meaning.
	Level int

	// Parent is the index of the parent node in the arena, or -1 for
	// top-level nodes.
	Parent int

	// AnchorID is the id or name attribute found on the element or on an
	// immediately preceding empty anchor, normalized to lowercase
	// alphanumerics. Empty when the markup had none.
	AnchorID string
}

// IsHeading reports whether the node opens a titled span of content.
func (n Node) IsHeading() bool {
	return n.Type == NodeSectionMarker || n.Type == NodeSubTitle
}

// Tree is an arena of nodes whose slice order is the depth-first document
// order of the source. A Tree is immutable after its parser returns it.
type Tree struct {
	Nodes []Node
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Ancestors returns the indices of node i's ancestors, outermost first.
// The walk is O(depth) over parent links.
func (t *Tree) Ancestors(i int) []int {
	var chain []int
	for p := t.Nodes[i].Parent; p >= 0; p = t.Nodes[p].Parent {
		chain = append(chain, p)
	}
	// Reverse into outermost-first order.
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain
}

// Children returns the indices of node i's direct children in document order.
func (t *Tree) Children(i int) []int {
	var kids []int
	for j := range t.Nodes {
		if t.Nodes[j].Parent == i {
			kids = append(kids, j)
		}
	}
	return kids
}

// StructuralParser converts decoded document text into a typed node tree.
// The engine consumes the tree only through the Node contract: type, text,
// level, parent index, and document order.
type StructuralParser interface {
	Parse(text string) (*Tree, error)
}
