package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ebarkan/edgarseg"
	"github.com/ebarkan/edgarseg/bloom"
	"github.com/ebarkan/edgarseg/edgar"
	"golang.org/x/sync/errgroup"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Client *edgar.Client
}

// FetchCmd is the fetch command.
type FetchCmd struct {
	Targets     []string
	List        string
	Out         string
	Concurrency int
}

// target is one filing to download, accession in dashed form.
type target struct {
	CIK       string
	Accession string
}

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	raw := c.Targets
	if c.List != "" {
		fromList, err := readTargetList(c.List)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return err
		}
		raw = append(raw, fromList...)
	}
	if len(raw) == 0 {
		return fmt.Errorf("no filings specified")
	}

	targets := make([]target, 0, len(raw))
	for _, s := range raw {
		t, err := parseTarget(s)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return err
		}
		targets = append(targets, t)
	}

	if err := os.MkdirAll(c.Out, 0755); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	// Dedupe and skip containers already on disk before spending any
	// requests on them.
	seen := bloom.NewFilter(uint(len(targets)), 0.001)
	var pending []target
	skipped := 0
	for _, t := range targets {
		if seen.Seen(t.Accession) {
			fmt.Fprintf(deps.Stdout, "skip  %s (duplicate)\n", t.Accession)
			skipped++
			continue
		}
		if _, err := os.Stat(c.containerPath(t)); err == nil {
			fmt.Fprintf(deps.Stdout, "skip  %s (exists)\n", t.Accession)
			skipped++
			continue
		}
		pending = append(pending, t)
	}

	var mu sync.Mutex
	fetched, failed := 0, 0

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(concurrency)
	for _, t := range pending {
		g.Go(func() error {
			data, err := deps.Client.FetchContainer(ctx, t.Accession, t.CIK)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed++
				fmt.Fprintf(deps.Stdout, "fail  %s: %s\n", t.Accession, err)
				return nil
			}
			if err := writeContainer(c.containerPath(t), data); err != nil {
				failed++
				fmt.Fprintf(deps.Stdout, "fail  %s: %s\n", t.Accession, err)
				return nil
			}
			fetched++
			fmt.Fprintf(deps.Stdout, "ok    %s (%d bytes)\n", t.Accession, len(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "\nFetched %d containers to %s (%d skipped, %d failed)\n",
		fetched, c.Out, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d downloads failed", failed)
	}
	return nil
}

func (c *FetchCmd) containerPath(t target) string {
	return filepath.Join(c.Out, t.Accession+".txt")
}

// parseTarget splits a CIK/ACCESSION pair and normalizes the accession to
// its dashed form.
func parseTarget(s string) (target, error) {
	cik, accession, ok := strings.Cut(s, "/")
	if !ok || cik == "" || accession == "" {
		return target{}, fmt.Errorf("invalid filing %q, want CIK/ACCESSION", s)
	}
	dashed, err := edgar.NormalizeAccession(accession)
	if err != nil {
		return target{}, fmt.Errorf("invalid filing %q: %s", s, edgarseg.ErrorMessage(err))
	}
	return target{CIK: cik, Accession: dashed}, nil
}

// readTargetList reads CIK/ACCESSION pairs from a file, one per line.
// Blank lines and lines starting with # are ignored; a whitespace-separated
// pair is accepted as well.
func readTargetList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if fields := strings.Fields(line); len(fields) == 2 {
			line = fields[0] + "/" + fields[1]
		}
		out = append(out, line)
	}
	return out, nil
}

// writeContainer writes data next to its final path and renames it into
// place, so a killed download never leaves a truncated container behind.
func writeContainer(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
