// Package edgarseg provides a section-extraction engine for SEC EDGAR
// full-submission filings. It indexes a raw multi-document container without
// loading sub-document bodies, decodes the primary filing document, narrows
// it to a named Item section, extracts the section's hierarchical content
// while discarding page furniture and tables of contents, and splits the
// result into length-bounded, breadcrumb-annotated segments.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or role (e.g., sgml/, charset/, preseek/,
// htmltree/, extract/, sqlite/).
package edgarseg
