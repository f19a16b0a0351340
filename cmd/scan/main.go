// Command scan runs one scan of the AI incident news sources and prints the
// ranked report, for cron jobs and local research runs that don't need the
// long-running server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linnemanlabs/go-core/log"
	v "github.com/linnemanlabs/go-core/version"

	"github.com/purnamedha/sirascan/internal/classify"
	"github.com/purnamedha/sirascan/internal/dedup"
	"github.com/purnamedha/sirascan/internal/event"
	"github.com/purnamedha/sirascan/internal/feeds"
	"github.com/purnamedha/sirascan/internal/report"
	"github.com/purnamedha/sirascan/internal/scan"
	"github.com/purnamedha/sirascan/internal/sira"
)

const appName = "sirascan"
const component = "scan"

type options struct {
	days               int
	format             string
	output             string
	signalsFile        string
	feedsFile          string
	incidentDBEndpoint string
	threshold          float64
	windowHours        int
	timeoutSeconds     int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	v.AppName = appName
	v.Component = component

	var (
		opts   options
		logCfg log.Config
	)
	flag.IntVar(&opts.days, "days", scan.DefaultDays, "lookback window in days")
	flag.StringVar(&opts.format, "format", "markdown", "output format: markdown or json")
	flag.StringVar(&opts.output, "output", "", "write the report to this file instead of stdout")
	flag.StringVar(&opts.signalsFile, "signals-file", "", "YAML file overriding the built-in classification signal tables")
	flag.StringVar(&opts.feedsFile, "feeds-file", "", "YAML file replacing the built-in RSS feed list")
	flag.StringVar(&opts.incidentDBEndpoint, "incidentdb-endpoint", "https://incidentdatabase.ai", "AI Incident Database base URL (empty = source disabled)")
	flag.Float64Var(&opts.threshold, "similarity-threshold", 0, "token overlap ratio above which two events merge (0 = built-in default)")
	flag.IntVar(&opts.windowHours, "dedup-window-hours", 0, "widest publication gap in hours for fuzzy merging (0 = built-in default)")
	flag.IntVar(&opts.timeoutSeconds, "timeout-seconds", 300, "overall deadline for the scan")
	logCfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if opts.days <= 0 || opts.days > scan.DefaultMaxDays {
		return fmt.Errorf("days must be between 1 and %d", scan.DefaultMaxDays)
	}
	if opts.format != "markdown" && opts.format != "json" {
		return fmt.Errorf("unknown format %q (want markdown or json)", opts.format)
	}

	lg, err := log.New(logCfg.ToOptions(v.AppName))
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = lg.Sync() }()
	L := lg.With("component", component)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(opts.timeoutSeconds)*time.Second)
	defer cancel()
	ctx = log.WithContext(ctx, L)

	rep, err := runScan(ctx, L, opts)
	if err != nil {
		return err
	}

	var out []byte
	switch opts.format {
	case "json":
		out, err = json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		out = append(out, '\n')
	default:
		out = []byte(report.Markdown(rep))
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		L.Info(ctx, "report written", "file", opts.output, "events", rep.Summary.Total)
		return nil
	}
	_, err = os.Stdout.Write(out)
	return err
}

// runScan fetches every source and pushes the batch through the pipeline.
// Source failures degrade the scan instead of aborting it, same as the
// server does.
func runScan(ctx context.Context, L log.Logger, opts options) (*report.Report, error) {
	tables := sira.Default()
	if opts.signalsFile != "" {
		data, err := os.ReadFile(opts.signalsFile)
		if err != nil {
			return nil, fmt.Errorf("read signals file: %w", err)
		}
		tables, err = sira.FromYAML(data)
		if err != nil {
			return nil, fmt.Errorf("signals file: %w", err)
		}
	}
	compiled, err := tables.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile signal tables: %w", err)
	}

	feedList := feeds.DefaultFeeds()
	if opts.feedsFile != "" {
		data, err := os.ReadFile(opts.feedsFile)
		if err != nil {
			return nil, fmt.Errorf("read feeds file: %w", err)
		}
		feedList, err = feeds.FeedsFromYAML(data)
		if err != nil {
			return nil, err
		}
	}

	registry := feeds.NewRegistry()
	for _, f := range feedList {
		registry.Register(feeds.NewRSS(f))
	}
	registry.Register(feeds.NewGoogleNews("", nil))
	if opts.incidentDBEndpoint != "" {
		registry.Register(feeds.NewIncidentDB(opts.incidentDBEndpoint))
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -opts.days)
	items, failures := fetchAll(ctx, L, registry, cutoff)
	if failures == len(registry.Sources()) {
		return nil, fmt.Errorf("all %d sources failed", failures)
	}

	deduper := dedup.New(opts.threshold, time.Duration(opts.windowHours)*time.Hour)
	engine := scan.NewEngine(classify.New(compiled), deduper, L, scan.EngineHooks{})

	rr, err := engine.Run(ctx, items)
	if err != nil {
		return nil, err
	}
	L.Info(ctx, "scan finished",
		"raw_items", rr.RawCount,
		"skipped", rr.SkippedItems,
		"merged_away", rr.MergedAway,
		"events", rr.Report.Summary.Total,
		"source_errors", failures,
	)
	return rr.Report, nil
}

func fetchAll(ctx context.Context, L log.Logger, registry *feeds.Registry, cutoff time.Time) ([]event.RawItem, int) {
	var items []event.RawItem
	var failures int
	for _, src := range registry.Sources() {
		got, err := src.Fetch(ctx, cutoff)
		if err != nil {
			failures++
			L.Error(ctx, err, "source fetch failed", "source", src.Name())
		}
		L.Info(ctx, "source fetched", "source", src.Name(), "items", len(got))
		items = append(items, got...)
	}
	return items, failures
}
