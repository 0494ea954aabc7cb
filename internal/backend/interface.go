// Package backend builds the ledger store, and the optional change-event
// publisher, selected by configuration.
package backend

import (
	"context"

	"ledgerbook/internal/amqp"
	"ledgerbook/internal/services"
	"ledgerbook/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store, the optional publisher and their cleanup.
type Result struct {
	Store store.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher *amqp.Client
	Ready     func(ctx context.Context) error
	Cleanup   CleanupFunc
}

// ServiceOptions returns the LedgerService options implied by the result.
func (r *Result) ServiceOptions() []services.Option {
	if r.Publisher == nil {
		return nil
	}
	return []services.Option{services.WithPublisher(r.Publisher)}
}

// Close runs Cleanup when set.
func (r *Result) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; empty means start empty.
	SeedDir string

	// AMQP is optional for every backend.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
