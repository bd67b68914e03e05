// Package db provides persistence for candidate records.
package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// Supported drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 200

// Fields maps a candidate field name (see types.Field*) to a value.
// As an update condition a nil value means the field must be unset: absent, null or "".
type Fields map[string]any

// ListOptions holds optional filters for listing candidates
type ListOptions struct {
	ApplicationStatus types.ApplicationStatus
	HiringStatus      types.HiringStatus
	Limit             int
}

// Store is the candidate collection. Lookups return (nil, nil) when nothing matches.
type Store interface {
	// Insert assigns an id, stores c and returns the id.
	Insert(ctx context.Context, c *types.Candidate) (string, error)
	// FindByID matches the canonical encoding of id only.
	FindByID(ctx context.Context, id string) (*types.Candidate, error)
	// FindByRawID falls back to matching id verbatim when the canonical lookup misses.
	FindByRawID(ctx context.Context, id string) (*types.Candidate, error)
	FindOne(ctx context.Context, field string, value any) (*types.Candidate, error)
	List(ctx context.Context, opts ListOptions) ([]types.Candidate, error)
	// Update applies set to the record with the stored id when every cond holds.
	// It reports whether a record matched.
	Update(ctx context.Context, id string, set, cond Fields) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Config selects and configures a backend
type Config struct {
	Driver   string
	URL      string
	Database string
}

// Open connects to the backend named by cfg.Driver
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMongo:
		return ConnectMongo(ctx, cfg.URL, cfg.Database)
	case DriverPostgres:
		return ConnectPostgres(ctx, cfg.URL)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func listLimit(opts ListOptions) int {
	if opts.Limit <= 0 {
		return DefaultListLimit
	}
	return opts.Limit
}

func sortedKeys(f Fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
