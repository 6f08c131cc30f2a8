// Package etl anonymizes resume datasets in bulk.
package etl

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VivekRai-gif/matchly/internal/anonymizer"
	"github.com/VivekRai-gif/matchly/internal/audit"
	"github.com/VivekRai-gif/matchly/internal/privacy"
)

// AuditRecorder persists audit entries for processed records
type AuditRecorder interface {
	RecordBatch(ctx context.Context, entries []*audit.Entry) (*audit.BatchInsertResult, error)
}

// Pipeline reads resumes, anonymizes them and writes Parquet rows
type Pipeline struct {
	anonymizer *anonymizer.Anonymizer
	assessor   *privacy.Assessor
	auditStore AuditRecorder
	config     *Config
	logger     *zap.Logger
	stats      *ProcessingStats
	mu         sync.RWMutex
}

// NewPipeline creates a new pipeline. auditStore may be nil.
func NewPipeline(
	anon *anonymizer.Anonymizer,
	assessor *privacy.Assessor,
	auditStore AuditRecorder,
	config *Config,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		anonymizer: anon,
		assessor:   assessor,
		auditStore: auditStore,
		config:     config,
		logger:     logger,
		stats: &ProcessingStats{
			StartTime: time.Now(),
		},
	}
}

// rowSink receives the anonymized rows of each batch
type rowSink func(rows []OutputRecord) error

// ProcessFile anonymizes every record of inputPath (CSV, Parquet or JSON
// lines) and writes the results to outputPath as Parquet. In dry-run mode
// nothing is written.
func (p *Pipeline) ProcessFile(ctx context.Context, inputPath, outputPath string) (*ProcessingResult, error) {
	p.logger.Info("Starting anonymization pipeline",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.WorkerCount),
		zap.Bool("dry_run", p.config.DryRun))

	start := time.Now()
	result := &ProcessingResult{RiskCounts: make(map[string]int64)}
	p.resetStats()

	sink := func([]OutputRecord) error { return nil }
	var (
		out    *os.File
		writer *parquet.GenericWriter[OutputRecord]
	)
	if !p.config.DryRun {
		var err error
		out, err = os.Create(outputPath)
		if err != nil {
			return result, fmt.Errorf("failed to create output file: %w", err)
		}

		writer = parquet.NewGenericWriter[OutputRecord](out)
		sink = func(rows []OutputRecord) error {
			_, err := writer.Write(rows)
			return err
		}
	}
	// discard removes the partial output of a failed run
	discard := func() {
		if out == nil {
			return
		}
		_ = writer.Close()
		_ = out.Close()
		if err := os.Remove(outputPath); err != nil {
			p.logger.Warn("Failed to remove partial output file", zap.String("output", outputPath), zap.Error(err))
		}
	}

	format := DetectFileFormat(inputPath)
	p.logger.Info("Detected file format", zap.String("format", string(format)))

	var err error
	switch format {
	case FormatCSV:
		err = p.processCSV(ctx, inputPath, sink, result)
	case FormatParquet:
		err = p.processParquet(ctx, inputPath, sink, result)
	case FormatJSON:
		err = p.processJSON(ctx, inputPath, sink, result)
	default:
		err = fmt.Errorf("unsupported file format: %s", format)
	}
	if err != nil {
		discard()
		return result, fmt.Errorf("%s processing failed: %w", format, err)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			_ = out.Close()
			_ = os.Remove(outputPath)
			return result, fmt.Errorf("failed to finalize output file: %w", err)
		}
		if err := out.Close(); err != nil {
			return result, fmt.Errorf("failed to close output file: %w", err)
		}
	}

	result.Duration = time.Since(start)

	p.logger.Info("Anonymization pipeline completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("invalid", result.Invalid),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("anonymize_time", result.AnonymizeTime),
		zap.Duration("audit_time", result.AuditTime))

	return result, nil
}

// processCSV processes CSV files with a header row containing a text column
// and, optionally, an id column
func (p *Pipeline) processCSV(ctx context.Context, filePath string, sink rowSink, result *ProcessingResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	idCol, textCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "id":
			idCol = i
		case "text", "resume_text":
			textCol = i
		}
	}
	if textCol < 0 {
		return fmt.Errorf("CSV header has no text column: %v", header)
	}

	p.logger.Info("CSV header detected", zap.Strings("columns", header))

	var row int64
	return p.processBatches(ctx, func() ([]*InputRecord, error) {
		var batch []*InputRecord

		for len(batch) < p.config.BatchSize {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			row++
			if err != nil {
				p.logger.Warn("Failed to read CSV record", zap.Int64("row", row), zap.Error(err))
				p.countInvalid(result)
				continue
			}

			in := &InputRecord{ID: strconv.FormatInt(row, 10), Text: record[textCol]}
			if idCol >= 0 && strings.TrimSpace(record[idCol]) != "" {
				in.ID = strings.TrimSpace(record[idCol])
			}

			if p.validateRecord(in) {
				batch = append(batch, in)
			} else {
				p.countInvalid(result)
			}
		}

		return batch, nil
	}, sink, result)
}

// processParquet processes Parquet files
func (p *Pipeline) processParquet(ctx context.Context, filePath string, sink rowSink, result *ProcessingResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open Parquet file: %w", err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	return p.processBatches(ctx, func() ([]*InputRecord, error) {
		var batch []*InputRecord

		for len(batch) < p.config.BatchSize {
			var record InputRecord
			err := reader.Read(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read Parquet record: %w", err)
			}

			if p.validateRecord(&record) {
				batch = append(batch, &record)
			} else {
				p.countInvalid(result)
			}
		}

		return batch, nil
	}, sink, result)
}

// processJSON processes JSON files (one JSON object per line)
func (p *Pipeline) processJSON(ctx context.Context, filePath string, sink rowSink, result *ProcessingResult) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	return p.processBatches(ctx, func() ([]*InputRecord, error) {
		var batch []*InputRecord

		for len(batch) < p.config.BatchSize {
			var record InputRecord
			err := decoder.Decode(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				// The decoder cannot resynchronize after a syntax error.
				return nil, fmt.Errorf("failed to decode JSON record: %w", err)
			}

			if p.validateRecord(&record) {
				batch = append(batch, &record)
			} else {
				p.countInvalid(result)
			}
		}

		return batch, nil
	}, sink, result)
}

// processBatches processes data in batches using the provided reader function
func (p *Pipeline) processBatches(ctx context.Context, readBatch func() ([]*InputRecord, error), sink rowSink, result *ProcessingResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := readBatch()
		if err != nil {
			return fmt.Errorf("failed to read batch: %w", err)
		}
		if len(batch) == 0 {
			break // End of file
		}

		p.mu.Lock()
		p.stats.CurrentBatch++
		p.stats.RecordsRead += int64(len(batch))
		p.stats.RecordsValid += int64(len(batch))
		p.mu.Unlock()

		result.TotalRecords += int64(len(batch))
		if err := p.processBatch(ctx, batch, sink, result); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.logger.Error("Batch processing failed", zap.Error(err))
			result.ProcessedFailed += int64(len(batch))
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.ProcessedOK += int64(len(batch))

		if p.config.ProgressReport > 0 && result.TotalRecords%int64(p.config.ProgressReport) == 0 {
			p.reportProgress(result)
		}
	}

	return nil
}

// processBatch anonymizes a batch on the worker pool, then writes the rows
// and audit entries in input order
func (p *Pipeline) processBatch(ctx context.Context, batch []*InputRecord, sink rowSink, result *ProcessingResult) error {
	rows := make([]OutputRecord, len(batch))

	anonStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.config.WorkerCount, 1))
	for i, record := range batch {
		i, record := i, record
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = p.anonymizeRecord(record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	result.AnonymizeTime += time.Since(anonStart)

	for _, row := range rows {
		result.RiskCounts[row.RiskLevel]++
	}

	if err := sink(rows); err != nil {
		return fmt.Errorf("failed to write output rows: %w", err)
	}
	p.mu.Lock()
	p.stats.RowsWritten += int64(len(rows))
	p.mu.Unlock()

	if p.config.RecordAudit && p.auditStore != nil && !p.config.DryRun {
		auditStart := time.Now()
		entries := make([]*audit.Entry, len(rows))
		for i, row := range rows {
			entries[i] = &audit.Entry{
				CandidateID:    row.CandidateID,
				Source:         audit.SourceBatch,
				RiskLevel:      row.RiskLevel,
				PIITypes:       splitTypes(row.PIITypes),
				TotalInstances: int(row.TotalPIIInstances),
			}
		}
		res, err := p.auditStore.RecordBatch(ctx, entries)
		if err != nil {
			// Rows are already written; an audit failure is reported, not fatal.
			p.logger.Warn("Failed to record audit entries", zap.Error(err))
			result.Errors = append(result.Errors, err.Error())
		} else {
			p.mu.Lock()
			p.stats.AuditWrites += res.Inserted
			p.mu.Unlock()
		}
		result.AuditTime += time.Since(auditStart)
	}

	p.logger.Debug("Batch processed successfully", zap.Int("batch_size", len(batch)))
	return nil
}

func (p *Pipeline) anonymizeRecord(record *InputRecord) OutputRecord {
	res := p.anonymizer.AnonymizeDetailed(record.Text)
	report := p.assessor.Summarize(res.PII)
	return OutputRecord{
		SourceID:          record.ID,
		CandidateID:       res.Profile.CandidateID,
		ProfileData:       res.Profile.ProfileData,
		RiskLevel:         string(report.RiskLevel),
		PIITypes:          strings.Join(report.PIITypesFound, ","),
		TotalPIIInstances: int64(report.TotalPIIInstances),
	}
}

func splitTypes(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// validateRecord validates an input record
func (p *Pipeline) validateRecord(record *InputRecord) bool {
	if strings.TrimSpace(record.Text) == "" {
		p.logger.Debug("Invalid record: empty text", zap.String("id", record.ID))
		return false
	}

	if p.config.MaxTextBytes > 0 && len(record.Text) > p.config.MaxTextBytes {
		p.logger.Debug("Invalid record: text too long",
			zap.String("id", record.ID),
			zap.Int("length", len(record.Text)))
		return false
	}

	return true
}

func (p *Pipeline) countInvalid(result *ProcessingResult) {
	result.Invalid++
	p.mu.Lock()
	p.stats.RecordsInvalid++
	p.mu.Unlock()
}

// reportProgress reports current processing progress
func (p *Pipeline) reportProgress(result *ProcessingResult) {
	p.mu.Lock()
	elapsed := time.Since(p.stats.StartTime)
	rate := float64(result.TotalRecords) / elapsed.Seconds()
	p.stats.ProcessingRate = rate
	p.mu.Unlock()

	p.logger.Info("Processing progress",
		zap.Int64("records_processed", result.TotalRecords),
		zap.Int64("records_ok", result.ProcessedOK),
		zap.Int64("records_failed", result.ProcessedFailed),
		zap.Float64("rate_per_sec", rate),
		zap.Duration("elapsed", elapsed))
}

// resetStats resets processing statistics
func (p *Pipeline) resetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats = &ProcessingStats{
		StartTime: time.Now(),
	}
}

// GetStats returns current processing statistics
func (p *Pipeline) GetStats() *ProcessingStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := *p.stats
	return &stats
}
