package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/ebarkan/edgarseg"
	"github.com/ebarkan/edgarseg/htmltomarkdown"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Extractor edgarseg.SectionExtractor
	Manifests edgarseg.ManifestBuilder
	Decoder   edgarseg.Decoder
	Seeker    edgarseg.PreSeeker
	Converter *htmltomarkdown.Converter

	// OpenStore opens the SQLite store behind a --db flag. The returned
	// func closes it.
	OpenStore func(path string) (edgarseg.FilingStore, func() error, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel string `default:"info" help:"Log level (debug, info, warn, error)"`
	LogJSON  bool   `help:"Write logs as JSON"`

	Extract  ExtractCmd  `cmd:"" help:"Extract item sections from a container into a filing record"`
	Manifest ManifestCmd `cmd:"" help:"List the sub-documents of a container"`
	Fragment FragmentCmd `cmd:"" help:"Print the pre-seek fragment for one section"`
	Batch    BatchCmd    `cmd:"" help:"Extract sections from every container in a directory"`
	List     ListCmd     `cmd:"" help:"List stored filing records"`
	Show     ShowCmd     `cmd:"" help:"Show one stored filing record"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a stored filing record"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Container string   `arg:"" help:"Path to a full-submission .txt container"`
	Sections  []string `short:"s" name:"section" help:"Item id to extract, e.g. item1a (repeatable; default all items for the form)"`
	Form      string   `short:"f" help:"Form family override, e.g. 10-K (default from container header)"`
	Out       string   `short:"o" help:"Directory to write the JSON record to instead of stdout"`
	DB        string   `help:"SQLite database to store the record in"`
}

// ManifestCmd is the "manifest" subcommand.
type ManifestCmd struct {
	Container string `arg:"" help:"Path to a full-submission .txt container"`
	JSON      bool   `help:"Emit the manifest as JSON"`
}

// FragmentCmd is the "fragment" subcommand.
type FragmentCmd struct {
	Container string `arg:"" help:"Path to a full-submission .txt container"`
	Section   string `arg:"" help:"Item id, e.g. item1a"`
	Form      string `short:"f" help:"Form family override (default from container header)"`
	Markdown  bool   `short:"m" help:"Convert the fragment to markdown"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Dir         string   `arg:"" help:"Directory of .txt containers"`
	Sections    []string `short:"s" name:"section" help:"Item id to extract (repeatable; default all items for each form)"`
	Form        string   `short:"f" help:"Form family override for every container"`
	Out         string   `short:"o" help:"Output directory for JSON records"`
	DB          string   `help:"SQLite database to store records in"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent container limit"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	DB      string `default:"edgarseg.db" help:"SQLite database to query"`
	CIK     string `help:"Only filings from this CIK"`
	Form    string `short:"f" help:"Only filings of this form family"`
	Section string `short:"s" help:"Only filings with this extracted section"`
	Limit   int    `default:"20" help:"Maximum records to print"`
	Offset  int    `help:"Records to skip"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Accession string `arg:"" help:"Accession number, dashed or raw"`
	DB        string `default:"edgarseg.db" help:"SQLite database to query"`
	JSON      bool   `help:"Print the full record as JSON"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Accession string `arg:"" help:"Accession number, dashed or raw"`
	DB        string `default:"edgarseg.db" help:"SQLite database to modify"`
	Force     bool   `help:"Confirm deletion"`
}
