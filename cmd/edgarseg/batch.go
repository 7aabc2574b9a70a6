package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ebarkan/edgarseg"
	"github.com/ebarkan/edgarseg/fs"
	segslog "github.com/ebarkan/edgarseg/slog"
	"golang.org/x/sync/errgroup"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(c.Dir, e.Name()))
	}
	if len(paths) == 0 {
		fmt.Fprintln(deps.Stdout, "No containers found.")
		return nil
	}

	var writer edgarseg.RecordWriter
	var batch *fs.BatchStore
	switch {
	case c.DB != "":
		store, closeStore, err := deps.OpenStore(c.DB)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return err
		}
		defer closeStore()
		writer = storeWriter{store}
	case c.Out != "":
		batch = fs.NewBatchStore(filepath.Dir(c.Out), filepath.Base(c.Out))
		writer = batch
	default:
		err := edgarseg.Errorf(edgarseg.EINVALID, "Batch requires --out or --db.")
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}
	writer = segslog.NewLoggingWriter(writer, deps.Logger)

	var mu sync.Mutex
	var extracted, missing, failed int

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(c.Concurrency)
	for _, path := range paths {
		g.Go(func() error {
			err := c.processOne(ctx, deps, writer, path)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				extracted++
				fmt.Fprintf(deps.Stdout, "ok    %s\n", filepath.Base(path))
			case sectionless(err):
				missing++
				fmt.Fprintf(deps.Stdout, "skip  %s: %s\n", filepath.Base(path), edgarseg.ErrorMessage(err))
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				failed++
				fmt.Fprintf(deps.Stdout, "fail  %s: %s\n", filepath.Base(path), edgarseg.ErrorMessage(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if batch != nil {
			_ = batch.Abort()
		}
		return err
	}
	if batch != nil {
		if extracted == 0 {
			_ = batch.Abort()
		} else if err := batch.Commit(); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "\nProcessed %d containers: %d extracted, %d without requested sections, %d failed\n",
		len(paths), extracted, missing, failed)
	if failed > 0 {
		return fmt.Errorf("%d containers failed", failed)
	}
	return nil
}

// processOne extracts one container and hands the record to the writer.
// Failures are isolated to the container; the caller decides how to count
// them.
func (c *BatchCmd) processOne(ctx context.Context, deps *Dependencies, writer edgarseg.RecordWriter, path string) error {
	f, ref, err := openContainer(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sections := c.Sections
	if len(sections) == 0 {
		sections, err = allSections(deps, ref, c.Form)
		if err != nil {
			return err
		}
	}

	rec, err := deps.Extractor.ExtractFiling(ctx, ref, edgarseg.FormType(c.Form), sections...)
	if err != nil {
		return err
	}
	return writer.WriteRecord(ctx, rec)
}

// sectionless reports extractions that completed without finding any of the
// requested sections. Those are counted separately from failures.
func sectionless(err error) bool {
	switch edgarseg.ErrorCode(err) {
	case edgarseg.ENOTFOUND, edgarseg.EEMPTY:
		return true
	}
	return false
}

// storeWriter adapts a FilingStore to the RecordWriter interface so batch
// runs can target a database.
type storeWriter struct {
	store edgarseg.FilingStore
}

func (w storeWriter) WriteRecord(ctx context.Context, rec *edgarseg.FilingRecord) error {
	return w.store.CreateFilingRecord(ctx, rec)
}
