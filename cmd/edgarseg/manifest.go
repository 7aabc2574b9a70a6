package main

import (
	"encoding/json"
	"fmt"

	"github.com/ebarkan/edgarseg"
)

// Run executes the manifest command.
func (c *ManifestCmd) Run(deps *Dependencies) error {
	f, ref, err := openContainer(c.Container)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	defer f.Close()

	m, err := deps.Manifests.Build(ref.R, ref.Size)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}

	h := m.Header
	fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", h.AccessionNumber, h.FormType, h.CompanyName)
	if !h.FiledDate.IsZero() {
		fmt.Fprintf(deps.Stdout, "Filed %s", h.FiledDate.Format("2006-01-02"))
		if !h.PeriodOfReport.IsZero() {
			fmt.Fprintf(deps.Stdout, ", period %s", h.PeriodOfReport.Format("2006-01-02"))
		}
		fmt.Fprintln(deps.Stdout)
	}
	fmt.Fprintf(deps.Stdout, "%d documents", len(m.Documents))
	if m.GraphicCount > 0 {
		fmt.Fprintf(deps.Stdout, " (%d graphics, not decoded)", m.GraphicCount)
	}
	fmt.Fprint(deps.Stdout, "\n\n")

	for _, d := range m.Documents {
		marker := "  "
		if m.Primary != nil && d.Seq == m.Primary.Seq {
			marker = "* "
		}
		fmt.Fprintf(deps.Stdout, "%s%3d  %-12s  %9d  %s\n", marker, d.Seq, d.Type, d.Size(), d.Filename)
	}
	return nil
}
