// Package kv abstracts the transactional key-value substrate behind the
// identity store.
//
// Two drivers are provided:
//   - Memory (in-process, for development and tests)
//   - Redis (distributed, for production)
//
// Besides plain get/set/delete, a driver must support Atomic: a multi-key
// write batch where every operation commits together or none do. The identity
// store relies on that primitive for session/user consistency.
package kv

import (
	"context"
	"time"
)

// Store defines the substrate operations.
type Store interface {
	// Get returns the value for key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) (string, error)

	// Set writes a value with an optional TTL. A ttl of 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Atomic applies all ops as one batch: either every op commits or none
	// do. Returns ErrTxFailed (possibly wrapped) when the batch did not
	// commit.
	Atomic(ctx context.Context, ops ...Op) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// Op is a single operation inside an atomic batch.
type Op struct {
	Key    string
	Value  string
	Delete bool
	TTL    time.Duration
}

// SetOp builds a write op for an atomic batch.
func SetOp(key, value string, ttl time.Duration) Op {
	return Op{Key: key, Value: value, TTL: ttl}
}

// DelOp builds a delete op for an atomic batch.
func DelOp(key string) Op {
	return Op{Key: key, Delete: true}
}

// Key builds a composite key from a logical table name and an identifier.
func Key(table, id string) string {
	return table + "/" + id
}

// Substrate errors.
var (
	ErrNotFound = errNotFound{}
	ErrTxFailed = errTxFailed{}
)

type errNotFound struct{}

func (errNotFound) Error() string { return "kv: key not found" }

type errTxFailed struct{}

func (errTxFailed) Error() string { return "kv: atomic batch did not commit" }

// IsNotFound reports whether err means the key was absent.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}

// Config selects and configures a driver.
type Config struct {
	Driver   string // "memory" | "redis"
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key
}

// New creates a Store for the configured driver.
func New(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	default:
		return NewMemory(cfg.Prefix), nil
	}
}
