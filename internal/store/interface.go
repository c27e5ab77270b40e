package store

import (
	"context"
	"time"
)

// Store is a sink that keeps the latest value of every metric.
type Store interface {
	Deliver(name, value string)
	Latest(ctx context.Context) ([]Value, error)
	Flush() error
	Close() error
}

// Repository persists latest values.
type Repository interface {
	Upsert(v Value) error
	Flush() error
	Latest(ctx context.Context) ([]Value, error)
	Close() error
}

// Value is the stored form of one delivery.
type Value struct {
	Name      string
	Value     string
	SessionID string
	UpdatedAt time.Time
}
