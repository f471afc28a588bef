// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"lotocontrol/internal/models"
)

// ErrNotFound is returned when a client with the requested ID does not
// exist.
var ErrNotFound = errors.New("client not found")

// Store defines the interface for ledger storage operations. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// ListClients returns all clients ordered by name.
	ListClients(ctx context.Context) ([]models.Client, error)

	// ListClientsByPrefix returns the clients whose name starts with
	// prefix, ordered by name. An empty prefix lists everyone.
	ListClientsByPrefix(ctx context.Context, prefix string) ([]models.Client, error)

	// GetClient retrieves a client by ID. Returns ErrNotFound when the
	// ID does not exist.
	GetClient(ctx context.Context, id string) (*models.Client, error)

	// InsertClient persists a new client and populates client.ID.
	// The client is validated first; invalid records are rejected.
	InsertClient(ctx context.Context, client *models.Client) error

	// UpdateClient updates an existing client. The record is validated
	// first; returns ErrNotFound when the ID does not exist.
	UpdateClient(ctx context.Context, client *models.Client) error

	// DeleteClient removes a client. Returns ErrNotFound when the ID
	// does not exist.
	DeleteClient(ctx context.Context, id string) error

	// GetSettings retrieves the singleton draw settings, or nil when no
	// draw has been configured yet.
	GetSettings(ctx context.Context) (*models.LotterySettings, error)

	// UpsertSettings replaces the singleton draw settings wholesale.
	UpsertSettings(ctx context.Context, settings models.LotterySettings) error

	// ImportBatch inserts every client and replaces the settings in a
	// single transaction. Either all rows apply or none do.
	ImportBatch(ctx context.Context, clients []models.Client, settings models.LotterySettings) error

	// WatchClients returns a live query over the client list: the
	// current snapshot is delivered first, then a fresh one after every
	// mutation. Slow consumers always see the newest state; intermediate
	// snapshots may be dropped. The channel closes when ctx ends.
	WatchClients(ctx context.Context) <-chan []models.Client

	// WatchSettings is the live-query counterpart for the settings
	// singleton. Emits nil while no draw is configured.
	WatchSettings(ctx context.Context) <-chan *models.LotterySettings

	// Close releases any resources held by the store.
	Close() error
}
