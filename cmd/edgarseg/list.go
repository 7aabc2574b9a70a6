package main

import (
	"fmt"

	"github.com/ebarkan/edgarseg"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := edgarseg.RecordFilter{Limit: c.Limit, Offset: c.Offset}
	if c.CIK != "" {
		filter.CIK = &c.CIK
	}
	if c.Form != "" {
		form, err := resolveForm(c.Form, "")
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
			return err
		}
		filter.FormType = &form
	}
	if c.Section != "" {
		filter.ItemID = &c.Section
	}

	store, closeStore, err := deps.OpenStore(c.DB)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	defer closeStore()

	records, total, err := store.FindFilingRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}

	if total == 0 {
		fmt.Fprintln(deps.Stdout, "No filing records found. Use 'edgarseg extract --db' to store one.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(deps.Stdout, "%s  %-7s  %-10s  %-30s  %d sections\n",
			rec.Accession, rec.FormType, rec.FiledDate, rec.CompanyName, len(rec.Sections))
	}
	if len(records) < total {
		fmt.Fprintf(deps.Stdout, "\nShowing %d of %d records\n", len(records), total)
	}
	return nil
}
