package main

import (
	"fmt"

	"github.com/ebarkan/edgarseg"
)

// Run executes the fragment command.
func (c *FragmentCmd) Run(deps *Dependencies) error {
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

	form, err := resolveForm(m.Header.FormType, c.Form)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}
	item, ok := edgarseg.LookupItem(form, c.Section)
	if !ok {
		err := edgarseg.Errorf(edgarseg.EINVALID, "Unknown section %q for form %s.", c.Section, form)
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}
	if m.Primary == nil {
		err := edgarseg.Errorf(edgarseg.ENOTFOUND, "Container has no %s document.", form)
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}

	text, err := deps.Decoder.Decode(ref.R, *m.Primary)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}

	a, ok := deps.Seeker.Seek(text, form, item)
	if !ok {
		err := edgarseg.Errorf(edgarseg.ENOTFOUND, "No pre-seek window for section %q.", c.Section)
		fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
		return err
	}
	deps.Logger.Info("pre-seek window",
		"accession", m.Header.AccessionNumber,
		"item", item.ID,
		"method", a.Method,
		"bytes", a.End-a.Start,
	)

	fragment := a.Slice(text)
	if c.Markdown {
		md, err := deps.Converter.Convert(fragment)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", edgarseg.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, md)
		return nil
	}
	fmt.Fprintln(deps.Stdout, fragment)
	return nil
}
