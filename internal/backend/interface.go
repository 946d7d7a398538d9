package backend

import (
	"context"
	"time"

	"ledger/internal/lock"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Components is everything the ledger service needs from infrastructure.
type Components struct {
	Store  storage.Store
	Locks  lock.Manager
	Events services.EventPublisher

	// Cleanup releases the resources above in reverse order of creation.
	Cleanup CleanupFunc
}

// Factory creates components based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Components, error)
}

// Config holds configuration for component creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// Distributed locks; in-process locks when empty
	RedisURL  string
	LockTTL   time.Duration
	LockTries int

	// Ledger events; discarded when URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of storage backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
