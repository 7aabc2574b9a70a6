package main

import (
	"encoding/json"
	"fmt"

	"github.com/ebarkan/edgarseg"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	store, closeStore, err := deps.OpenStore(c.DB)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	defer closeStore()

	accession := normalizeAccession(c.Accession)
	rec, err := store.FindFilingRecordByAccession(deps.Ctx, accession)
	if err != nil {
		if edgarseg.ErrorCode(err) == edgarseg.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: no record for %s. Run 'edgarseg list' to see stored filings.\n", accession)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		}
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", rec.Accession, rec.FormType, rec.CompanyName)
	if rec.FiledDate != "" {
		fmt.Fprintf(deps.Stdout, "Filed %s", rec.FiledDate)
		if rec.PeriodOfReport != "" {
			fmt.Fprintf(deps.Stdout, ", period %s", rec.PeriodOfReport)
		}
		fmt.Fprintln(deps.Stdout)
	}
	fmt.Fprintf(deps.Stdout, "Extracted %s from %s\n\n", rec.ExtractedAt.Format("2006-01-02 15:04"), rec.PrimaryDocument)
	for _, sec := range rec.Sections {
		fmt.Fprintf(deps.Stdout, "  %-24s  %-40s  %d segments, %d words\n",
			sec.ItemID, sec.Heading, len(sec.Segments), sec.WordCount())
	}
	return nil
}
