// Command seqfeature-annotations writes a CSV report of the qualifiers,
// cross-references and taxonomy of a list of BioSQL seqfeatures.
//
// Usage:
//
//	seqfeature-annotations -r postgres -d biosql -u bio ids.txt > annotations.csv
//
// Every flag defaults from the environment (see internal/config), which is
// optionally seeded from a .env file in the working directory.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/seqannot/internal/annotation"
	"github.com/JonMunkholm/seqannot/internal/biosql"
	"github.com/JonMunkholm/seqannot/internal/config"
	"github.com/JonMunkholm/seqannot/internal/input"
	"github.com/JonMunkholm/seqannot/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if err != nil {
		slog.Error("report failed", "error", err)
		if biosql.IsKnown(err) {
			fmt.Fprintln(os.Stderr, biosql.Explain(err))
		}
		os.Exit(1)
	}
}

// newApp declares the command line, binding every flag to cfg so values
// already loaded from the environment act as defaults.
func newApp(cfg *config.Config) (*kingpin.Application, *string) {
	app := kingpin.New("seqfeature-annotations", "Report BioSQL annotations for a list of seqfeature ids as CSV.")

	app.Flag("driver", "Database driver.").Short('r').
		Default(cfg.Database.Driver).EnumVar(&cfg.Database.Driver, config.Drivers...)
	app.Flag("database", "Name of the BioSQL database (file path for sqlite).").Short('d').
		Default(cfg.Database.Name).StringVar(&cfg.Database.Name)
	app.Flag("host", "Host to connect to.").Short('H').
		Default(cfg.Database.Host).StringVar(&cfg.Database.Host)
	app.Flag("port", "Port to connect to; 0 uses the driver default.").Short('p').
		Default(strconv.Itoa(cfg.Database.Port)).IntVar(&cfg.Database.Port)
	app.Flag("user", "Database user name.").Short('u').
		Default(cfg.Database.User).StringVar(&cfg.Database.User)
	// No Default: it would print DB_PASSWORD in --help.
	app.Flag("password", "Database password for user.").Short('P').
		StringVar(&cfg.Database.Password)

	app.Flag("batch-size", "Identifiers bound per query.").
		Default(strconv.Itoa(cfg.Query.BatchSize)).IntVar(&cfg.Query.BatchSize)
	app.Flag("timeout", "Per-query timeout; 0 disables it.").
		Default(cfg.Query.Timeout.String()).DurationVar(&cfg.Query.Timeout)

	app.Flag("output", "Write the CSV here instead of stdout.").Short('o').
		Default(cfg.Report.Output).StringVar(&cfg.Report.Output)
	app.Flag("include-missing", "Emit an empty row for ids without annotations.").
		Default(strconv.FormatBool(cfg.Report.IncludeMissing)).BoolVar(&cfg.Report.IncludeMissing)

	app.Flag("log-level", "Minimum log level.").
		Default(cfg.Logging.Level).EnumVar(&cfg.Logging.Level, "debug", "info", "warn", "error")
	app.Flag("log-format", "Log format.").
		Default(cfg.Logging.Format).EnumVar(&cfg.Logging.Format, "text", "json")

	idFile := app.Arg("input", "File containing seqfeature ids, one per line ('-' for stdin).").Required().String()

	return app, idFile
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	app, idFile := newApp(cfg)
	if _, err := app.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	ctx = logging.WithRunID(ctx)
	logger := logging.FromContext(ctx)
	logger.Debug("configuration loaded", "config", cfg.String())

	ids, err := input.ReadFile(*idFile)
	if err != nil {
		return err
	}
	logger.Info("identifiers loaded", "count", len(ids), "file", *idFile)

	store, err := biosql.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	store.Timeout = cfg.Query.Timeout

	agg := &annotation.Aggregator{
		Store:          store,
		BatchSize:      cfg.Query.BatchSize,
		IncludeMissing: cfg.Report.IncludeMissing,
	}

	report, err := agg.Collect(ctx, ids)
	if err != nil {
		return err
	}

	if err := writeReport(report, cfg.Report.Output, stdout); err != nil {
		return err
	}

	logger.Info("report written",
		"features", len(report.Features),
		"columns", len(report.Columns),
		"input_ids", len(ids),
	)
	return nil
}

// writeReport writes to path, or to stdout when path is empty or "-".
func writeReport(report *annotation.Report, path string, stdout io.Writer) error {
	if path == "" || path == "-" {
		return report.WriteCSV(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := report.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
