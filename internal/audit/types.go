package audit

import (
	"time"

	"github.com/lib/pq"
)

// Entry is one privacy audit record. It only carries derived data: the
// anonymous candidate id, the categories found and their count.
type Entry struct {
	ID             int64          `db:"id" json:"id"`
	CandidateID    string         `db:"candidate_id" json:"candidate_id"`
	Source         string         `db:"source" json:"source"`
	RiskLevel      string         `db:"risk_level" json:"risk_level"`
	PIITypes       pq.StringArray `db:"pii_types" json:"pii_types"`
	TotalInstances int            `db:"total_instances" json:"total_instances"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// Sources of audit entries
const (
	SourceAnonymize = "anonymize"
	SourceReport    = "report"
	SourceBatch     = "batch"
)

// Stats aggregates audit entries by risk level
type Stats struct {
	Total  int64 `json:"total"`
	Low    int64 `json:"low"`
	Medium int64 `json:"medium"`
	High   int64 `json:"high"`
}

// BatchInsertResult contains the outcome of a batch insert
type BatchInsertResult struct {
	Inserted int64         `json:"inserted"`
	Failed   int64         `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Config contains database configuration
type Config struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}
