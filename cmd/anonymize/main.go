package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/anonymizer"
	"github.com/VivekRai-gif/matchly/internal/audit"
	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/config"
	"github.com/VivekRai-gif/matchly/internal/etl"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/privacy"
)

func main() {
	defaults := etl.DefaultConfig()
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Input dataset file (CSV, Parquet, or JSON lines)")
		outputFile = flag.String("output", "anonymized.parquet", "Output Parquet file")
		batchSize  = flag.Int("batch-size", defaults.BatchSize, "Batch size for processing")
		workers    = flag.Int("workers", defaults.WorkerCount, "Number of worker goroutines")
		withAudit  = flag.Bool("audit", false, "Record audit entries in PostgreSQL")
		dryRun     = flag.Bool("dry-run", false, "Dry run - anonymize but write nothing")
		showStats  = flag.Bool("stats", false, "Show audit statistics and exit")
	)
	flag.Parse()

	if *inputFile == "" && !*showStats {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input resumes.csv --output profiles.parquet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input resumes.parquet --workers 8 --audit\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting matchly batch anonymizer",
		zap.String("input", *inputFile),
		zap.String("output", *outputFile))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	var store *audit.Store
	if *withAudit || *showStats {
		store, err = audit.NewStore(&audit.Config{
			DatabaseURL:     cfg.Audit.DatabaseURL,
			MaxOpenConns:    cfg.Audit.MaxConnections,
			MaxIdleConns:    cfg.Audit.MaxIdleConns,
			ConnMaxLifetime: cfg.Audit.ConnMaxLifetime,
		}, log.WithComponent("audit").Logger)
		if err != nil {
			log.Fatal("Failed to initialize audit store", zap.Error(err))
		}
		defer store.Close()
	}

	if *showStats {
		if err := showAuditStats(ctx, store); err != nil {
			log.Fatal("Failed to show stats", zap.Error(err))
		}
		return
	}

	var catOpts []catalog.Option
	if cfg.Privacy.CatalogPath != "" {
		catOpts = append(catOpts, catalog.WithOverrideFile(cfg.Privacy.CatalogPath))
	}
	if cfg.Privacy.NamePattern != "" {
		catOpts = append(catOpts, catalog.WithNamePattern(cfg.Privacy.NamePattern))
	}
	if cfg.Privacy.MatchTimeout > 0 {
		catOpts = append(catOpts, catalog.WithMatchTimeout(cfg.Privacy.MatchTimeout))
	}
	cat, err := catalog.Load(catOpts...)
	if err != nil {
		log.Fatal("Failed to load redaction catalog", zap.Error(err))
	}

	etlConfig := etl.DefaultConfig()
	etlConfig.BatchSize = *batchSize
	etlConfig.WorkerCount = *workers
	etlConfig.MaxTextBytes = int(cfg.Server.MaxTextBytes)
	etlConfig.RecordAudit = *withAudit
	etlConfig.DryRun = *dryRun

	if err := processDataset(ctx, cat, store, etlConfig, *inputFile, *outputFile, log); err != nil {
		log.Fatal("Batch anonymization failed", zap.Error(err))
	}

	log.Info("Batch anonymization completed successfully")
}

// processDataset anonymizes the input dataset file
func processDataset(ctx context.Context, cat *catalog.Catalog, store *audit.Store, etlConfig *etl.Config, inputFile, outputFile string, log *logger.Logger) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	redactor := privacy.NewRedactor(cat, log)

	var recorder etl.AuditRecorder
	if store != nil {
		recorder = store
	}

	pipeline := etl.NewPipeline(
		anonymizer.New(redactor, log),
		privacy.NewAssessor(redactor),
		recorder,
		etlConfig,
		log.WithComponent("etl").Logger,
	)

	result, err := pipeline.ProcessFile(ctx, inputFile, outputFile)
	if err != nil {
		return fmt.Errorf("pipeline processing failed: %w", err)
	}

	fields := []zap.Field{
		zap.String("file", inputFile),
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("invalid", result.Invalid),
		zap.Any("risk_counts", result.RiskCounts),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("anonymize_time", result.AnonymizeTime),
		zap.Duration("audit_time", result.AuditTime),
	}
	if secs := result.Duration.Seconds(); secs > 0 {
		fields = append(fields, zap.Float64("records_per_second", float64(result.TotalRecords)/secs))
	}
	log.Info("Dataset processing completed", fields...)

	if len(result.Errors) > 0 {
		log.Warn("Processing completed with errors", zap.Strings("errors", result.Errors))
	}

	return nil
}

// showAuditStats prints audit counts by risk level
func showAuditStats(ctx context.Context, store *audit.Store) error {
	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get audit stats: %w", err)
	}

	pct := func(n int64) float64 {
		if stats.Total == 0 {
			return 0
		}
		return float64(n) / float64(stats.Total) * 100
	}

	fmt.Printf("\n=== matchly Privacy Audit Statistics ===\n")
	fmt.Printf("Total Entries:  %d\n", stats.Total)
	fmt.Printf("Low Risk:       %d (%.1f%%)\n", stats.Low, pct(stats.Low))
	fmt.Printf("Medium Risk:    %d (%.1f%%)\n", stats.Medium, pct(stats.Medium))
	fmt.Printf("High Risk:      %d (%.1f%%)\n", stats.High, pct(stats.High))

	recent, err := store.Recent(ctx, 5)
	if err != nil {
		return fmt.Errorf("failed to get recent audit entries: %w", err)
	}
	if len(recent) > 0 {
		fmt.Printf("\n=== Most Recent Entries ===\n")
		for _, e := range recent {
			fmt.Printf("%s  %-10s %-6s %v\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Source, e.RiskLevel, []string(e.PIITypes))
		}
	}

	return nil
}
