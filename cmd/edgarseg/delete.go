package main

import (
	"fmt"

	"github.com/ebarkan/edgarseg"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return edgarseg.Errorf(edgarseg.EINVALID, "Use --force to confirm deletion.")
	}

	store, closeStore, err := deps.OpenStore(c.DB)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	defer closeStore()

	accession := normalizeAccession(c.Accession)
	if _, err := store.FindFilingRecordByAccession(deps.Ctx, accession); err != nil {
		if edgarseg.ErrorCode(err) == edgarseg.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: no record for %s. Run 'edgarseg list' to see stored filings.\n", accession)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		}
		return err
	}

	if err := store.DeleteFilingRecord(deps.Ctx, accession); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %s\n", accession)
	return nil
}
