package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ebarkan/edgarseg"
	"github.com/ebarkan/edgarseg/fs"
	segslog "github.com/ebarkan/edgarseg/slog"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	f, ref, err := openContainer(c.Container)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	defer f.Close()

	sections := c.Sections
	if len(sections) == 0 {
		sections, err = allSections(deps, ref, c.Form)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
			return err
		}
	}

	rec, err := deps.Extractor.ExtractFiling(deps.Ctx, ref, edgarseg.FormType(c.Form), sections...)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}

	return writeRecord(deps, rec, c.Out, c.DB)
}

// allSections lists every item id defined for the container's form family,
// peeking at the header when no form override was given.
func allSections(deps *Dependencies, ref edgarseg.ContainerRef, formFlag string) ([]string, error) {
	raw := formFlag
	if raw == "" {
		m, err := deps.Manifests.Build(ref.R, ref.Size)
		if err != nil {
			return nil, err
		}
		raw = m.Header.FormType
	}
	form, err := resolveForm(raw, "")
	if err != nil {
		return nil, err
	}
	items := edgarseg.Items(form)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids, nil
}

// resolveForm returns the form family from the override flag, falling back
// to the header value.
func resolveForm(headerValue, override string) (edgarseg.FormType, error) {
	raw := headerValue
	if override != "" {
		raw = override
	}
	form, ok := edgarseg.NormalizeFormType(raw)
	if !ok {
		return "", edgarseg.Errorf(edgarseg.EINVALID, "Unsupported form type %q.", raw)
	}
	return form, nil
}

// writeRecord routes a finished record to the database, a directory, or
// stdout as indented JSON.
func writeRecord(deps *Dependencies, rec *edgarseg.FilingRecord, outDir, dbPath string) error {
	switch {
	case dbPath != "":
		store, closeStore, err := deps.OpenStore(dbPath)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return err
		}
		defer closeStore()
		if err := store.CreateFilingRecord(deps.Ctx, rec); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Stored %s (%d sections) in %s\n", rec.Accession, len(rec.Sections), dbPath)
		return nil
	case outDir != "":
		writer := segslog.NewLoggingWriter(fs.NewWriter(outDir), deps.Logger)
		if err := writer.WriteRecord(deps.Ctx, rec); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
			return err
		}
		rel, err := fs.RecordPath(rec)
		if err != nil {
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote %s\n", filepath.Join(outDir, rel))
		return nil
	default:
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
}
