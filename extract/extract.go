// Package extract implements the section-extraction pipeline. The Engine
// facade drives the stages in order: manifest the container, decode the
// primary document, optionally pre-seek to a fragment, parse, locate the
// section, collect and filter its content, and segment. Navigation,
// collection, noise filtering, and segmentation live here; the stages in
// front of them are injected collaborators.
//
// An Engine holds no mutable state and is safe for concurrent use across
// filings. The context is checked at stage boundaries only; a single stage
// is never interrupted.
package extract

import (
	"context"
	"errors"
	"time"

	"github.com/ebarkan/edgarseg"
)

// Engine implements edgarseg.SectionExtractor.
type Engine struct {
	Manifests edgarseg.ManifestBuilder
	Texts     edgarseg.Decoder
	Parser    edgarseg.StructuralParser

	// Seeker narrows single-section requests before parsing. Nil
	// disables pre-seeking and every request parses the full document.
	Seeker edgarseg.PreSeeker

	Segmenter Segmenter
}

var _ edgarseg.SectionExtractor = (*Engine)(nil)

// document carries the per-filing state shared by the pipeline stages.
type document struct {
	accession string
	form      edgarseg.FormType
	manifest  *edgarseg.Manifest
	text      string
}

// ExtractSection extracts one item section from the container.
func (e *Engine) ExtractSection(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType, itemID string) (*edgarseg.Section, error) {
	doc, err := e.load(ctx, container, form)
	if err != nil {
		return nil, err
	}
	it, ok := edgarseg.LookupItem(doc.form, itemID)
	if !ok {
		return nil, edgarseg.StageErrorf(edgarseg.StageLocate, doc.accession, edgarseg.EINVALID, "Unknown section %q for form %s.", itemID, doc.form)
	}
	return e.section(ctx, doc, it)
}

// ExtractFiling extracts the requested sections and wraps them in a
// persistable record. Sections that are absent or empty are skipped;
// pre-seeking applies only when exactly one section is requested, since
// multiple targets are not guaranteed contiguous in the source document.
func (e *Engine) ExtractFiling(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType, itemIDs ...string) (*edgarseg.FilingRecord, error) {
	if len(itemIDs) == 0 {
		return nil, edgarseg.Errorf(edgarseg.EINVALID, "At least one section id is required.")
	}
	doc, err := e.load(ctx, container, form)
	if err != nil {
		return nil, err
	}
	items := make([]edgarseg.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		it, ok := edgarseg.LookupItem(doc.form, id)
		if !ok {
			return nil, edgarseg.StageErrorf(edgarseg.StageLocate, doc.accession, edgarseg.EINVALID, "Unknown section %q for form %s.", id, doc.form)
		}
		items = append(items, it)
	}

	var sections []edgarseg.Section
	if len(items) == 1 {
		sec, err := e.section(ctx, doc, items[0])
		if err != nil && !skippable(err) {
			return nil, err
		}
		if sec != nil {
			sections = append(sections, *sec)
		}
	} else {
		tree, err := e.parse(ctx, doc, doc.text)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			sec, err := e.fromTree(ctx, tree, doc, it)
			if err != nil && !skippable(err) {
				return nil, err
			}
			if sec != nil {
				sections = append(sections, *sec)
			}
		}
	}
	if len(sections) == 0 {
		return nil, edgarseg.StageErrorf(edgarseg.StageLocate, doc.accession, edgarseg.ENOTFOUND, "None of the requested sections were found.")
	}

	rec := edgarseg.NewFilingRecord(doc.manifest, time.Now())
	rec.Sections = sections
	return rec, nil
}

// skippable reports outcomes that exclude one section from a filing record
// without failing the whole extraction.
func skippable(err error) bool {
	switch edgarseg.ErrorCode(err) {
	case edgarseg.ENOTFOUND, edgarseg.EEMPTY:
		return true
	}
	return false
}

// load runs the manifest and decode stages.
func (e *Engine) load(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType) (*document, error) {
	if container.R == nil || container.Size <= 0 {
		return nil, edgarseg.StageErrorf(edgarseg.StageManifest, container.Accession, edgarseg.EINVALID, "Container reader and size are required.")
	}
	m, err := e.Manifests.Build(container.R, container.Size)
	if err != nil {
		return nil, tagFiling(err, container.Accession)
	}
	accession := m.Header.AccessionNumber
	if accession == "" {
		accession = container.Accession
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if form == "" {
		f, ok := edgarseg.NormalizeFormType(m.Header.FormType)
		if !ok {
			return nil, edgarseg.StageErrorf(edgarseg.StageManifest, accession, edgarseg.EINVALID, "Unsupported form type %q.", m.Header.FormType)
		}
		form = f
	} else if len(edgarseg.Items(form)) == 0 {
		return nil, edgarseg.StageErrorf(edgarseg.StageManifest, accession, edgarseg.EINVALID, "Unsupported form type %q.", string(form))
	}
	if m.Primary == nil {
		return nil, edgarseg.StageErrorf(edgarseg.StageManifest, accession, edgarseg.ENOTFOUND, "Container has no %s document.", form)
	}

	text, err := e.Texts.Decode(container.R, *m.Primary)
	if err != nil {
		return nil, tagFiling(err, accession)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &document{accession: accession, form: form, manifest: m, text: text}, nil
}

// section locates, collects, and segments one item. Single-section
// requests reach here, so pre-seeking is always permitted; a pre-seek
// miss, or a narrowed fragment whose tree turns out not to contain the
// section, falls back to parsing the full document.
func (e *Engine) section(ctx context.Context, doc *document, it edgarseg.Item) (*edgarseg.Section, error) {
	if e.Seeker != nil {
		if a, ok := e.Seeker.Seek(doc.text, doc.form, it); ok && a.Valid(len(doc.text)) {
			tree, err := e.parse(ctx, doc, a.Slice(doc.text))
			if err != nil {
				return nil, err
			}
			sec, err := e.fromTree(ctx, tree, doc, it)
			if err == nil || edgarseg.ErrorCode(err) != edgarseg.ENOTFOUND {
				return sec, err
			}
		}
	}
	tree, err := e.parse(ctx, doc, doc.text)
	if err != nil {
		return nil, err
	}
	return e.fromTree(ctx, tree, doc, it)
}

func (e *Engine) parse(ctx context.Context, doc *document, text string) (*edgarseg.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, err := e.Parser.Parse(text)
	if err != nil {
		return nil, tagStage(err, edgarseg.StageParse, doc.accession)
	}
	return tree, nil
}

// fromTree runs locate, collect, and segment against a parsed tree.
func (e *Engine) fromTree(ctx context.Context, tree *edgarseg.Tree, doc *document, it edgarseg.Item) (*edgarseg.Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, ok := FindSectionStart(tree, it, doc.form)
	if !ok {
		return nil, edgarseg.StageErrorf(edgarseg.StageLocate, doc.accession, edgarseg.ENOTFOUND, "Section %q not found.", it.ID)
	}
	content := Collect(tree, start, it, doc.form)
	if len(content.Nodes) == 0 {
		return nil, edgarseg.StageErrorf(edgarseg.StageCollect, doc.accession, edgarseg.EEMPTY, "Section %q has no content.", it.ID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	segs := e.Segmenter.Segment(content)
	if len(segs) == 0 {
		return nil, edgarseg.StageErrorf(edgarseg.StageSegment, doc.accession, edgarseg.EEMPTY, "Section %q yielded no segments after filtering.", it.ID)
	}
	return &edgarseg.Section{ItemID: it.ID, Heading: content.Heading, Segments: segs}, nil
}

// tagFiling fills in the filing accession on application errors that were
// raised before it was known.
func tagFiling(err error, accession string) error {
	var e *edgarseg.Error
	if errors.As(err, &e) {
		if e.Filing == "" {
			e.Filing = accession
		}
		return e
	}
	return err
}

// tagStage wraps an error from a collaborator with the stage and filing.
func tagStage(err error, stage, accession string) error {
	var e *edgarseg.Error
	if errors.As(err, &e) {
		if e.Stage == "" {
			e.Stage = stage
		}
		if e.Filing == "" {
			e.Filing = accession
		}
		return e
	}
	return edgarseg.StageErrorf(stage, accession, edgarseg.EINTERNAL, "%v", err)
}
