// Package slog provides logging decorators for the extraction pipeline.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/ebarkan/edgarseg"
)

// Ensure LoggingExtractor implements edgarseg.SectionExtractor.
var _ edgarseg.SectionExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a SectionExtractor with per-operation logging.
// Sections that are absent or empty are expected outcomes on real filings
// and log at warn level; everything else that fails logs at error level.
type LoggingExtractor struct {
	next   edgarseg.SectionExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next edgarseg.SectionExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// ExtractSection delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) ExtractSection(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType, itemID string) (sec *edgarseg.Section, err error) {
	defer func(begin time.Time) {
		if err != nil {
			e.fail("section extraction failed", err,
				"accession", container.Accession,
				"item", itemID,
				"duration", time.Since(begin),
			)
			return
		}
		e.logger.Info("section extracted",
			"accession", container.Accession,
			"item", itemID,
			"segments", len(sec.Segments),
			"words", sec.WordCount(),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return e.next.ExtractSection(ctx, container, form, itemID)
}

// ExtractFiling delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) ExtractFiling(ctx context.Context, container edgarseg.ContainerRef, form edgarseg.FormType, itemIDs ...string) (rec *edgarseg.FilingRecord, err error) {
	defer func(begin time.Time) {
		if err != nil {
			e.fail("filing extraction failed", err,
				"accession", container.Accession,
				"requested", len(itemIDs),
				"duration", time.Since(begin),
			)
			return
		}
		e.logger.Info("filing extracted",
			"accession", rec.Accession,
			"form", string(rec.FormType),
			"requested", len(itemIDs),
			"sections", len(rec.Sections),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return e.next.ExtractFiling(ctx, container, form, itemIDs...)
}

func (e *LoggingExtractor) fail(msg string, err error, args ...any) {
	args = append(args,
		"code", edgarseg.ErrorCode(err),
		"stage", edgarseg.ErrorStage(err),
		"err", err,
	)
	switch edgarseg.ErrorCode(err) {
	case edgarseg.ENOTFOUND, edgarseg.EEMPTY:
		e.logger.Warn(msg, args...)
	default:
		e.logger.Error(msg, args...)
	}
}
