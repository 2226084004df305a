package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"carecontent/batchgen/internal/batch"
	"carecontent/batchgen/internal/calendar"
	"carecontent/batchgen/internal/config"
	"carecontent/batchgen/internal/fsx"
	"carecontent/batchgen/internal/generator"
	"carecontent/batchgen/internal/logx"
	"carecontent/batchgen/internal/notify"
	"carecontent/batchgen/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var runErr error
	switch cmd {
	case "generate":
		runErr = runGenerate(ctx, cfg, args)
	case "calendar":
		runErr = runCalendar(ctx, cfg, args)
	case "migrate":
		runErr = runMigrate(ctx, cfg, args)
	case "runs":
		runErr = runRuns(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		var cfgErr *batch.ConfigError
		if errors.As(runErr, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	days := fs.Int("days", 0, "Daily mode: number of days to plan")
	contentType := fs.String("type", "", "Bulk mode: single content type")
	all := fs.Bool("all", false, "Bulk mode: every known content type")
	count := fs.Int("count", 0, "Items per type (default from config)")
	outputDir := fs.String("output-dir", "", "Root output directory (default from config)")
	workers := fs.Int("workers", 0, "Worker pool size (default from config)")
	startDate := fs.String("start-date", "", "Daily mode anchor YYYY-MM-DD (default tomorrow)")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logx.Configure(*verbose)

	mode, err := pickMode(*days, *contentType, *all)
	if err != nil {
		return err
	}
	start, err := parseStartDate(*startDate)
	if err != nil {
		return err
	}
	if *count == 0 {
		*count = cfg.DefaultCount
	}
	if *workers == 0 {
		*workers = cfg.DefaultWorkers
	}
	if *outputDir == "" {
		*outputDir = cfg.BaseOutputFolder
	}
	if *workers <= 0 {
		return batch.ConfigErrorf("worker count must be positive, got %d", *workers)
	}

	tasks, err := batch.Expand(batch.ExpandParams{
		Mode:        mode,
		Types:       cfg.TypeNames,
		ContentType: *contentType,
		Count:       *count,
		Days:        *days,
		StartDate:   start,
		OutputDir:   *outputDir,
		Stamp:       time.Now(),
	})
	if err != nil {
		return err
	}
	logx.Info("run planned", "mode", string(mode), "tasks", len(tasks), "workers", *workers)

	executor := batch.Executor{
		Gen:     generator.New(cfg),
		Timeout: time.Duration(cfg.TaskTimeoutSeconds) * time.Second,
	}
	pool := batch.Pool{
		Workers: *workers,
		Runner:  executor,
		OnProgress: func(p batch.Progress) {
			logx.Info("progress",
				"done", p.Done,
				"total", p.Total,
				"elapsed", p.Elapsed.Round(time.Second),
				"eta", p.ETA.Round(time.Second),
			)
		},
	}

	results, err := pool.Run(ctx, tasks)
	if err != nil {
		return err
	}

	manifest := batch.BuildManifest(uuid.NewString(), time.Now(), results)
	if err := fsx.EnsureDir(*outputDir); err != nil {
		return &batch.PersistError{Path: *outputDir, Err: err}
	}
	manifestPath := filepath.Join(*outputDir, batch.ManifestFilename)
	if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		return err
	}

	recordRun(ctx, cfg, manifest)
	announceRun(cfg, manifest)
	printSummary(manifest, manifestPath)
	return nil
}

func pickMode(days int, contentType string, all bool) (batch.RunMode, error) {
	selected := 0
	if days != 0 {
		selected++
	}
	if contentType != "" {
		selected++
	}
	if all {
		selected++
	}
	if selected != 1 {
		return "", batch.ConfigErrorf("exactly one of --days, --type, --all is required")
	}
	switch {
	case days != 0:
		return batch.ModeDaily, nil
	case all:
		return batch.ModeAll, nil
	default:
		return batch.ModeBulk, nil
	}
}

// recordRun writes run history to Postgres when configured. Best effort: a
// history failure never fails a run whose manifest is already on disk.
func recordRun(ctx context.Context, cfg config.Config, m batch.RunManifest) {
	if !cfg.DBEnabled {
		return
	}
	st, err := store.New(ctx, cfg.DBConnString())
	if err != nil {
		logx.Warn("run history unavailable", "err", err)
		return
	}
	defer st.Close()
	if err := st.RecordRun(ctx, m); err != nil {
		logx.Warn("run history write failed", "run_id", m.RunID, "err", err)
	}
}

// announceRun publishes item and run messages when RabbitMQ is configured.
// Best effort, same as recordRun.
func announceRun(cfg config.Config, m batch.RunManifest) {
	if !cfg.RabbitMQEnabled {
		return
	}
	client, err := notify.New(cfg.RabbitMQURL())
	if err != nil {
		logx.Warn("queue unavailable", "err", err)
		return
	}
	defer client.Close()
	for _, r := range m.Results {
		if !r.Success {
			continue
		}
		if err := client.AnnounceItem(m.RunID, r, cfg.Hostname); err != nil {
			logx.Warn("item announce failed", "task", r.TaskID, "err", err)
		}
	}
	if err := client.AnnounceRun(m, cfg.Hostname); err != nil {
		logx.Warn("run announce failed", "run_id", m.RunID, "err", err)
	}
}

func printSummary(m batch.RunManifest, manifestPath string) {
	fmt.Printf("run %s: %d total, %d successful, %d failed (%.1f MB)\n",
		m.RunID, m.Total, m.Successful, m.Failed, float64(m.TotalSizeBytes)/(1024*1024))
	for _, r := range m.Results {
		if !r.Success {
			fmt.Printf("  failed %s: %s\n", r.TaskID, r.Error)
		}
	}
	fmt.Printf("manifest: %s\n", manifestPath)
}

func runCalendar(ctx context.Context, cfg config.Config, args []string) error {
	_ = ctx
	fs := flag.NewFlagSet("calendar", flag.ContinueOnError)
	manifestPath := fs.String("manifest", filepath.Join(cfg.BaseOutputFolder, batch.ManifestFilename), "Manifest to schedule from")
	outPath := fs.String("out", filepath.Join(cfg.BaseOutputFolder, "posting_schedule.json"), "Schedule output path")
	startDate := fs.String("start-date", "", "First posting day YYYY-MM-DD (default tomorrow)")
	perDay := fs.Int("per-day", 3, "Posts per day")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logx.Configure(*verbose)

	start, err := parseStartDate(*startDate)
	if err != nil {
		return err
	}
	manifest, err := calendar.Load(*manifestPath)
	if err != nil {
		return err
	}
	schedule, err := calendar.Build(manifest, calendar.Options{StartDate: start, PerDay: *perDay})
	if err != nil {
		return err
	}
	if err := calendar.Write(*outPath, schedule); err != nil {
		return err
	}
	fmt.Printf("scheduled %d videos from run %s into %s\n", len(schedule.Entries), manifest.RunID, *outPath)
	return nil
}

func runMigrate(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logx.Configure(*verbose)

	st, err := store.New(ctx, cfg.DBConnString())
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Migrate(ctx)
}

func runRuns(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "Number of runs to list")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logx.Configure(*verbose)

	st, err := store.New(ctx, cfg.DBConnString())
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.RecentRuns(ctx, *limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  total=%d ok=%d failed=%d size=%.1fMB\n",
			r.GeneratedAt.Format(time.RFC3339), r.RunID, r.Total, r.Successful, r.Failed,
			float64(r.SizeBytes)/(1024*1024))
	}
	return nil
}

func parseStartDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location()), nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, batch.ConfigErrorf("invalid start date %q (want YYYY-MM-DD)", value)
	}
	return parsed, nil
}

func printUsage() {
	fmt.Println("Usage: batchgen <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  generate [--days=N | --type=TYPE | --all] [--count=N] [--output-dir=PATH] [--workers=N] [--start-date=YYYY-MM-DD] [--verbose]")
	fmt.Println("  calendar [--manifest=PATH] [--out=PATH] [--start-date=YYYY-MM-DD] [--per-day=N] [--verbose]")
	fmt.Println("  migrate  [--verbose]")
	fmt.Println("  runs     [--limit=N] [--verbose]")
}
