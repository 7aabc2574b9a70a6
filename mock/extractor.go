package mock

import (
	"context"

	"github.com/ebarkan/edgarseg"
)

var _ edgarseg.SectionExtractor = (*SectionExtractor)(nil)

// SectionExtractor is a mock implementation of edgarseg.SectionExtractor.
type SectionExtractor struct {
	ExtractSectionFn func(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType, itemID string) (*edgarseg.Section, error)
	ExtractFilingFn  func(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType, itemIDs ...string) (*edgarseg.FilingRecord, error)
}

func (e *SectionExtractor) ExtractSection(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType, itemID string) (*edgarseg.Section, error) {
	return e.ExtractSectionFn(ctx, container, form, itemID)
}

func (e *SectionExtractor) ExtractFiling(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType, itemIDs ...string) (*edgarseg.FilingRecord, error) {
	return e.ExtractFilingFn(ctx, container, form, itemIDs...)
}
