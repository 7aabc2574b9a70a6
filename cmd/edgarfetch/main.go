package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ebarkan/edgarseg/edgar"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (for EDGAR_USER_AGENT)
	_ = godotenv.Load()

	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// ClientOptions are appended to the options derived from flags.
	// End-to-end tests use them to point the client at a local server.
	ClientOptions []edgar.Option
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("edgarfetch"),
		kong.Description("Download full-submission containers from the SEC EDGAR archive"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no filings specified. Run 'edgarfetch --help' for usage")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	_, err = parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.UserAgent == "" {
		fmt.Fprintln(stderr, "Hint: the SEC requires a User-Agent identifying you, e.g. \"Acme Research admin@acme.example\"")
		return fmt.Errorf("no user agent configured. Set EDGAR_USER_AGENT or pass --user-agent")
	}

	opts := []edgar.Option{
		edgar.WithRequestsPerSecond(cli.RPS),
		edgar.WithTimeout(cli.Timeout),
	}
	opts = append(opts, m.ClientOptions...)

	client, err := edgar.NewClient(cli.UserAgent, opts...)
	if err != nil {
		return err
	}

	// Wire dependencies
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Client: client,
	}

	// Create and run the fetch command
	cmd := &FetchCmd{
		Targets:     cli.Targets,
		List:        cli.List,
		Out:         cli.Out,
		Concurrency: cli.Concurrency,
	}

	return cmd.Run(deps)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Targets     []string      `arg:"" optional:"" help:"Filings as CIK/ACCESSION pairs, e.g. 320193/0000320193-24-000123"`
	List        string        `short:"l" type:"existingfile" help:"File with one CIK/ACCESSION pair per line"`
	Out         string        `short:"o" default:"." help:"Directory to write containers to"`
	UserAgent   string        `env:"EDGAR_USER_AGENT" help:"User-Agent identifying you to the SEC"`
	Concurrency int           `short:"c" default:"3" help:"Concurrent download limit"`
	RPS         float64       `default:"10" help:"Request rate ceiling shared by all downloads"`
	Timeout     time.Duration `short:"t" default:"60s" help:"Fetch timeout per container"`
}
