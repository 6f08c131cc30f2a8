package cache

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a credential id is not registered.
var ErrNotFound = errors.New("cache: credential not found")

// CredentialRecord is what the registry keeps per issued credential. It
// never holds the candidate reference or skills, only derived values.
type CredentialRecord struct {
	CredentialID     string    `json:"credential_id"`
	VerificationHash string    `json:"verification_hash"`
	Issuer           string    `json:"issuer"`
	IssuedAt         time.Time `json:"issued_at"`
	SkillCount       int       `json:"skill_count"`
	CachedAt         time.Time `json:"cached_at"`
	TTL              int64     `json:"ttl"`
}

// CacheStats represents registry lookup statistics
type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Stored  int64   `json:"stored"`
	HitRate float64 `json:"hit_rate"`
}

// Config contains cache configuration
type Config struct {
	RedisURL       string        `yaml:"redis_url" mapstructure:"redis_url"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DefaultTTL     time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	KeyPrefix      string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}
