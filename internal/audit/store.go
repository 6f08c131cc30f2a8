// Package audit persists privacy audit records in PostgreSQL.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const schema = `
	CREATE TABLE IF NOT EXISTS privacy_audit (
		id              BIGSERIAL PRIMARY KEY,
		candidate_id    TEXT        NOT NULL,
		source          TEXT        NOT NULL,
		risk_level      TEXT        NOT NULL,
		pii_types       TEXT[]      NOT NULL DEFAULT '{}',
		total_instances INTEGER     NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Store handles audit storage operations
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore connects to PostgreSQL and prepares the audit table
func NewStore(config *Config, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	store := NewStoreWithDB(db, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("Audit store initialized successfully",
		zap.String("database_url", maskDatabaseURL(config.DatabaseURL)),
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns))

	return store, nil
}

// NewStoreWithDB wraps an existing connection
func NewStoreWithDB(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate checks the connection and creates the audit table if needed
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}

// Record inserts one audit entry, filling in its id and creation time
func (s *Store) Record(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO privacy_audit (candidate_id, source, risk_level, pii_types, total_instances)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		entry.CandidateID,
		entry.Source,
		entry.RiskLevel,
		pq.Array(typesOrEmpty(entry.PIITypes)),
		entry.TotalInstances,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		s.logger.Error("Failed to record audit entry",
			zap.Error(err),
			zap.String("candidate_id", entry.CandidateID))
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	s.logger.Debug("Audit entry recorded",
		zap.Int64("id", entry.ID),
		zap.String("candidate_id", entry.CandidateID),
		zap.String("risk_level", entry.RiskLevel))

	return nil
}

// RecordBatch inserts many entries in one statement
func (s *Store) RecordBatch(ctx context.Context, entries []*Entry) (*BatchInsertResult, error) {
	if len(entries) == 0 {
		return &BatchInsertResult{}, nil
	}

	start := time.Now()
	result := &BatchInsertResult{}

	valueStrings := make([]string, 0, len(entries))
	valueArgs := make([]interface{}, 0, len(entries)*5)

	for i, e := range entries {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", i*5+1, i*5+2, i*5+3, i*5+4, i*5+5))
		valueArgs = append(valueArgs,
			e.CandidateID,
			e.Source,
			e.RiskLevel,
			pq.Array(typesOrEmpty(e.PIITypes)),
			e.TotalInstances,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO privacy_audit (candidate_id, source, risk_level, pii_types, total_instances)
		VALUES %s`,
		strings.Join(valueStrings, ","))

	res, err := s.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		result.Failed = int64(len(entries))
		s.logger.Error("Batch insert failed", zap.Error(err))
		return result, fmt.Errorf("batch insert failed: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		s.logger.Warn("Could not get rows affected", zap.Error(err))
		inserted = int64(len(entries))
	}

	result.Inserted = inserted
	result.Failed = int64(len(entries)) - inserted
	result.Duration = time.Since(start)

	s.logger.Info("Batch insert completed",
		zap.Int64("inserted", result.Inserted),
		zap.Int64("failed", result.Failed),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// Recent returns the newest entries first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []Entry
	query := `
		SELECT id, candidate_id, source, risk_level, pii_types, total_instances, created_at
		FROM privacy_audit
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	if err := s.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

// GetStats counts entries per risk level
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	query := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN risk_level = 'low' THEN 1 END) as low,
			COUNT(CASE WHEN risk_level = 'medium' THEN 1 END) as medium,
			COUNT(CASE WHEN risk_level = 'high' THEN 1 END) as high
		FROM privacy_audit`

	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.Low,
		&stats.Medium,
		&stats.High,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit stats: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func typesOrEmpty(types []string) []string {
	if types == nil {
		return []string{}
	}
	return types
}

// maskDatabaseURL masks the password in a database URL for logging
func maskDatabaseURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	userPart := url[:at]
	if colon := strings.LastIndex(userPart, ":"); colon > strings.Index(userPart, "://")+2 {
		return userPart[:colon+1] + "***" + url[at:]
	}
	return url
}
