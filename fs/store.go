package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ebarkan/edgarseg"
)

// Ensure BatchStore implements edgarseg.RecordWriter at compile time.
var _ edgarseg.RecordWriter = (*BatchStore)(nil)

// BatchStore stages records for an all-or-nothing batch run. Records are
// written to a temporary directory and moved into place atomically on
// Commit, so an interrupted batch leaves no half-finished output behind.
type BatchStore struct {
	baseDir string
	name    string
}

// NewBatchStore creates a new BatchStore. baseDir is the parent directory,
// name is the output directory name. Records are staged in baseDir/name.tmp
// and moved to baseDir/name on Commit.
func NewBatchStore(baseDir, name string) *BatchStore {
	return &BatchStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *BatchStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *BatchStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// WriteRecord stages a record in the temporary directory.
func (s *BatchStore) WriteRecord(ctx context.Context, rec *edgarseg.FilingRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	relPath, err := RecordPath(rec)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.tempDir(), relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return writeFileAtomic(fullPath, rec)
}

// Commit replaces the final directory with the staged one.
func (s *BatchStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards everything staged so far.
func (s *BatchStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
