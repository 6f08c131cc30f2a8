package etl

import (
	"path/filepath"
	"strings"
	"time"
)

// InputRecord is one resume read from the input dataset
type InputRecord struct {
	ID   string `csv:"id" parquet:"id" json:"id"`
	Text string `csv:"text" parquet:"text" json:"text"`
}

// OutputRecord is one anonymized row written to the output file. It never
// carries the original text.
type OutputRecord struct {
	SourceID          string `parquet:"source_id" json:"source_id"`
	CandidateID       string `parquet:"candidate_id" json:"candidate_id"`
	ProfileData       string `parquet:"profile_data" json:"profile_data"`
	RiskLevel         string `parquet:"risk_level" json:"risk_level"`
	PIITypes          string `parquet:"pii_types" json:"pii_types"` // comma separated
	TotalPIIInstances int64  `parquet:"total_pii_instances" json:"total_pii_instances"`
}

// ProcessingResult represents the result of processing a dataset
type ProcessingResult struct {
	TotalRecords    int64            `json:"total_records"`
	ProcessedOK     int64            `json:"processed_ok"`
	ProcessedFailed int64            `json:"processed_failed"`
	Invalid         int64            `json:"invalid"`
	RiskCounts      map[string]int64 `json:"risk_counts"`
	Duration        time.Duration    `json:"duration"`
	AnonymizeTime   time.Duration    `json:"anonymize_time"`
	AuditTime       time.Duration    `json:"audit_time"`
	Errors          []string         `json:"errors,omitempty"`
}

// Config contains pipeline configuration
type Config struct {
	BatchSize      int  `yaml:"batch_size" mapstructure:"batch_size"`           // 500
	WorkerCount    int  `yaml:"worker_count" mapstructure:"worker_count"`       // 4
	MaxTextBytes   int  `yaml:"max_text_bytes" mapstructure:"max_text_bytes"`   // 1 MiB
	ProgressReport int  `yaml:"progress_report" mapstructure:"progress_report"` // 1000
	RecordAudit    bool `yaml:"record_audit" mapstructure:"record_audit"`
	DryRun         bool `yaml:"dry_run" mapstructure:"dry_run"`
}

// DefaultConfig returns the pipeline defaults
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      500,
		WorkerCount:    4,
		MaxTextBytes:   1 << 20,
		ProgressReport: 1000,
	}
}

// ProcessingStats tracks real-time processing statistics
type ProcessingStats struct {
	StartTime      time.Time `json:"start_time"`
	RecordsRead    int64     `json:"records_read"`
	RecordsValid   int64     `json:"records_valid"`
	RecordsInvalid int64     `json:"records_invalid"`
	RowsWritten    int64     `json:"rows_written"`
	AuditWrites    int64     `json:"audit_writes"`
	CurrentBatch   int64     `json:"current_batch"`
	ProcessingRate float64   `json:"processing_rate"` // records per second
}

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".parquet":
		return FormatParquet
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	default:
		return FormatCSV // Default to CSV
	}
}
