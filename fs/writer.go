// Package fs provides file-based persistence for extraction records.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebarkan/edgarseg"
)

// RecordPath returns the relative file path for a record: records are
// grouped by CIK when the header carried one.
// Example: 0000320193/0000320193-24-000123.json
func RecordPath(rec *edgarseg.FilingRecord) (string, error) {
	if strings.ContainsAny(rec.Accession, `/\`) {
		return "", edgarseg.Errorf(edgarseg.EINVALID, "Accession %q is not a valid file name.", rec.Accession)
	}
	name := rec.Accession + ".json"
	if rec.CIK == "" {
		return name, nil
	}
	if strings.ContainsAny(rec.CIK, `/\`) {
		return "", edgarseg.Errorf(edgarseg.EINVALID, "CIK %q is not a valid directory name.", rec.CIK)
	}
	return filepath.Join(rec.CIK, name), nil
}

// Ensure Writer implements edgarseg.RecordWriter at compile time.
var _ edgarseg.RecordWriter = (*Writer)(nil)

// Writer writes filing records as JSON files under a base directory. Each
// write goes to a temporary file first and is renamed into place, so a
// reader never sees a partial record.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteRecord writes a record to disk, replacing any earlier record for
// the same accession.
func (w *Writer) WriteRecord(ctx context.Context, rec *edgarseg.FilingRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	relPath, err := RecordPath(rec)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(w.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return writeFileAtomic(fullPath, rec)
}

func writeFileAtomic(path string, rec *edgarseg.FilingRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
