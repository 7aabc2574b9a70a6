package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ebarkan/edgarseg"
	"github.com/ebarkan/edgarseg/charset"
	"github.com/ebarkan/edgarseg/edgar"
	"github.com/ebarkan/edgarseg/extract"
	"github.com/ebarkan/edgarseg/htmltomarkdown"
	"github.com/ebarkan/edgarseg/htmltree"
	"github.com/ebarkan/edgarseg/preseek"
	"github.com/ebarkan/edgarseg/sgml"
	segslog "github.com/ebarkan/edgarseg/slog"
	"github.com/ebarkan/edgarseg/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Services for end-to-end testing. Nil fields are wired by Run.
	Extractor edgarseg.SectionExtractor
	OpenStore func(path string) (edgarseg.FilingStore, func() error, error)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("edgarseg"),
		kong.Description("Extract item sections from SEC EDGAR full-submission containers"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'edgarseg --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cli.LogLevel, cli.LogJSON)
	if err != nil {
		return err
	}
	deps.Logger = logger

	// Wire the pipeline into dependencies
	extractor := m.Extractor
	if extractor == nil {
		extractor = &extract.Engine{
			Manifests: sgml.NewBuilder(),
			Texts:     charset.NewDecoder(),
			Parser:    htmltree.NewParser(),
			Seeker:    preseek.NewSeeker(),
		}
	}
	deps.Extractor = segslog.NewLoggingExtractor(extractor, logger)
	deps.Manifests = sgml.NewBuilder()
	deps.Decoder = charset.NewDecoder()
	deps.Seeker = preseek.NewSeeker()
	deps.Converter = htmltomarkdown.NewConverter()

	deps.OpenStore = m.OpenStore
	if deps.OpenStore == nil {
		deps.OpenStore = openSQLiteStore
	}

	return kongCtx.Run(deps)
}

// newLogger builds the stderr logger from the global flags.
func newLogger(w io.Writer, level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// openSQLiteStore opens the filing store backing the --db flag.
func openSQLiteStore(path string) (edgarseg.FilingStore, func() error, error) {
	db := sqlite.NewDB(path)
	if err := db.Open(); err != nil {
		return nil, nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return sqlite.NewFilingStore(db), db.Close, nil
}

// openContainer opens a container file for random access reads. The
// returned ref carries an accession hint derived from the file name so
// failures before header parsing still identify the filing.
func openContainer(path string) (*os.File, edgarseg.ContainerRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, edgarseg.ContainerRef{}, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, edgarseg.ContainerRef{}, err
	}
	ref := edgarseg.ContainerRef{R: f, Size: info.Size(), Accession: accessionHint(path)}
	return f, ref, nil
}

func accessionHint(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return normalizeAccession(base)
}

// normalizeAccession returns the dashed accession form when the argument
// parses as one, otherwise the argument unchanged.
func normalizeAccession(s string) string {
	if dashed, err := edgar.NormalizeAccession(s); err == nil {
		return dashed
	}
	return s
}
