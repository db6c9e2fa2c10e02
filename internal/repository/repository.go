// Package repository defines the data access interface for the LCI
// store.
//
// The store plays the role of the external LCA framework's database:
// it holds previously imported reference databases (a technosphere
// source database and a biosphere flow list) that the converter reads,
// and receives the converted inventory database in one
// delete-and-rewrite transaction.
//
// The sqlite subpackage provides the implementation.
package repository

import (
	"context"

	"hsclci/internal/domain"
)

// Store defines the interface for LCI database access
type Store interface {
	// Read operations
	ListDatabases(ctx context.Context) ([]string, error)
	HasDatabase(ctx context.Context, name string) (bool, error)
	LoadDatasets(ctx context.Context, name string) ([]*domain.Dataset, error)
	LoadDatabase(ctx context.Context, name string) ([]*domain.Dataset, error)
	LoadBiosphereFlows(ctx context.Context, name string) ([]domain.BiosphereFlow, error)

	// Write operations
	WriteDatabase(ctx context.Context, name string, datasets []*domain.Dataset) error
	ImportBiosphere(ctx context.Context, name string, flows []domain.BiosphereFlow) error

	// Reporting
	CountDatasets(ctx context.Context, name string) (int, error)
	CountExchanges(ctx context.Context, name string) (int, error)

	// Close releases resources
	Close() error
}
