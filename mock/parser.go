package mock

import "github.com/ebarkan/edgarseg"

var _ edgarseg.StructuralParser = (*StructuralParser)(nil)

// StructuralParser is a mock implementation of edgarseg.StructuralParser.
type StructuralParser struct {
	ParseFn func(text string) (*edgarseg.Tree, error)
}

func (p *StructuralParser) Parse(text string) (*edgarseg.Tree, error) {
	return p.ParseFn(text)
}
