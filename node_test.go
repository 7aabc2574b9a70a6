package edgarseg_test

import (
	"testing"

	"github.com/ebarkan/edgarseg"
	"github.com/stretchr/testify/assert"
)

func TestTreeAncestors(t *testing.T) {
	t.Parallel()

	// ITEM 1A
	//   Supply Chain Risk
	//     paragraph
	//   paragraph
	tree := &edgarseg.Tree{Nodes: []edgarseg.Node{
		{Type: edgarseg.NodeSectionMarker, Text: "ITEM 1A. RISK FACTORS", Level: 1, Parent: -1},
		{Type: edgarseg.NodeSubTitle, Text: "Supply Chain Risk", Level: 2, Parent: 0},
		{Type: edgarseg.NodeTextBlock, Text: "We depend on suppliers.", Parent: 1},
		{Type: edgarseg.NodeTextBlock, Text: "General risk text.", Parent: 0},
	}}

	t.Run("walks to the root, outermost first", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []int{0, 1}, tree.Ancestors(2))
		assert.Equal(t, []int{0}, tree.Ancestors(3))
		assert.Empty(t, tree.Ancestors(0))
	})

	t.Run("children come back in document order", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []int{1, 3}, tree.Children(0))
		assert.Equal(t, []int{2}, tree.Children(1))
		assert.Empty(t, tree.Children(2))
	})
}

func TestNodeIsHeading(t *testing.T) {
	t.Parallel()

	assert.True(t, edgarseg.Node{Type: edgarseg.NodeSectionMarker}.IsHeading())
	assert.True(t, edgarseg.Node{Type: edgarseg.NodeSubTitle}.IsHeading())
	assert.False(t, edgarseg.Node{Type: edgarseg.NodeTextBlock}.IsHeading())
	assert.False(t, edgarseg.Node{Type: edgarseg.NodeTable}.IsHeading())
	assert.False(t, edgarseg.Node{Type: edgarseg.NodeSupplementary}.IsHeading())
}

func TestNodeTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "section_marker", edgarseg.NodeSectionMarker.String())
	assert.Equal(t, "table", edgarseg.NodeTable.String())
	assert.Equal(t, "unknown", edgarseg.NodeType(99).String())
}
