// Package cmd implements the CLI application to manage a ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finlog/ledger"
	"github.com/finlog/ledger/quotefeed"
	"github.com/finlog/ledger/refstore"
)

// Commands lists every subcommand. A main package registers them on its
// commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&incomeCmd{},
	&tradeCmd{},
	&transferCmd{},
	&dividendCmd{},
	&actionCmd{},
	&rebuildCmd{},
	&balanceCmd{},
	&dealsCmd{},
	&fetchCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var configFile = flag.String("config", "jld.toml", "Path to the configuration file")
var journalFlag = flag.String("journal-file", "", "Path to the journal file, overrides the configuration")
var databaseFlag = flag.String("database", "", "Path to the reference database, overrides the configuration")
var verbose = flag.Bool("v", false, "Verbose logging")

// Config is the application configuration, loaded from jld.toml with flag
// overrides.
type Config struct {
	JournalFile string                 `toml:"journal_file"`
	Database    string                 `toml:"database"`
	Currency    string                 `toml:"currency"`
	Quotes      []quotefeed.Source     `toml:"quotes"`
	Rates       []quotefeed.RateSource `toml:"rates"`
}

// LoadConfig reads the configuration file and applies flag overrides. A
// missing file is not an error: defaults apply.
func LoadConfig() (Config, error) {
	cfg := Config{
		JournalFile: "journal.jsonl",
		Database:    "refstore.db",
		Currency:    "EUR",
	}
	if _, err := toml.DecodeFile(*configFile, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("cannot read config %q: %w", *configFile, err)
	}
	if *journalFlag != "" {
		cfg.JournalFile = *journalFlag
	}
	if *databaseFlag != "" {
		cfg.Database = *databaseFlag
	}
	return cfg, nil
}

// Logger builds the application logger writing human-readable lines to
// stderr.
func Logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// OpenStore opens the reference database named by the configuration.
func OpenStore(cfg Config) (*refstore.DB, error) {
	return refstore.Open(cfg.Database, Logger())
}

// DecodeJournal loads the journal file. A missing file yields an empty
// journal.
func DecodeJournal(cfg Config) (*ledger.Journal, error) {
	f, err := os.Open(cfg.JournalFile)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.NewJournal(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open journal %q: %w", cfg.JournalFile, err)
	}
	defer f.Close()
	return ledger.DecodeJournal(f)
}

// appendOperation appends a single record to the journal file, creating the
// file when needed.
func appendOperation(cfg Config, op ledger.Operation) subcommands.ExitStatus {
	if err := op.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid record: %v\n", err)
		return subcommands.ExitUsageError
	}
	f, err := os.OpenFile(cfg.JournalFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal file %q: %v\n", cfg.JournalFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := ledger.EncodeOperation(f, op); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to journal file %q: %v\n", cfg.JournalFile, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Successfully appended record to %s\n", cfg.JournalFile)
	return subcommands.ExitSuccess
}

// newID returns a fresh external identity for a record.
func newID() string { return uuid.NewString() }

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// parseWhen parses the -d flag value, defaulting to now.
func parseWhen(s string) (ledger.Timestamp, error) {
	if s == "" {
		return ledger.Now(), nil
	}
	return ledger.ParseTimestamp(s)
}
