// Package service orchestrates ledger operations over the storage
// layer: client CRUD, settlement entries, draw settings, and the
// spreadsheet import.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"lotocontrol/internal/calculator"
	"lotocontrol/internal/importer"
	"lotocontrol/internal/metrics"
	"lotocontrol/internal/models"
	"lotocontrol/internal/storage"
)

// LedgerService implements the ledger use cases on top of a Store.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// AddClient creates a client with the given name and everything else
// zeroed.
func (s *LedgerService) AddClient(ctx context.Context, name string) (*models.Client, error) {
	client := &models.Client{Name: name}
	if err := s.store.InsertClient(ctx, client); err != nil {
		slog.Error("AddClient failed", "name", name, "error", err)
		return nil, err
	}
	slog.Info("Client added", "client_id", client.ID, "name", name)
	return client, nil
}

// GetClient retrieves a client by ID.
func (s *LedgerService) GetClient(ctx context.Context, id string) (*models.Client, error) {
	return s.store.GetClient(ctx, id)
}

// ListClients returns clients ordered by name, optionally filtered by
// a name prefix.
func (s *LedgerService) ListClients(ctx context.Context, prefix string) ([]models.Client, error) {
	if prefix == "" {
		return s.store.ListClients(ctx)
	}
	return s.store.ListClientsByPrefix(ctx, prefix)
}

// UpdateClient replaces a client's stored fields. The store validates
// the record, so the ticketsReturned ≤ ticketsDelivered rule holds.
func (s *LedgerService) UpdateClient(ctx context.Context, client *models.Client) error {
	if err := s.store.UpdateClient(ctx, client); err != nil {
		slog.Error("UpdateClient failed", "client_id", client.ID, "error", err)
		return err
	}
	return nil
}

// DeleteClient removes a client from the ledger.
func (s *LedgerService) DeleteClient(ctx context.Context, id string) error {
	if err := s.store.DeleteClient(ctx, id); err != nil {
		slog.Error("DeleteClient failed", "client_id", id, "error", err)
		return err
	}
	slog.Info("Client deleted", "client_id", id)
	return nil
}

// RecordEntry saves a settlement entry for a client: the returned
// ticket count replaces the stored one, the payment adds to the
// cumulative amountPaid.
func (s *LedgerService) RecordEntry(ctx context.Context, id string, returned int, paid float64) (*models.Client, error) {
	if returned < 0 {
		return nil, fmt.Errorf("%w: returned count must not be negative, got %d", models.ErrInvalidRecord, returned)
	}
	if paid < 0 {
		return nil, fmt.Errorf("%w: payment must not be negative, got %g", models.ErrInvalidRecord, paid)
	}

	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	client.TicketsReturned = returned
	client.AmountPaid += paid
	if err := s.store.UpdateClient(ctx, client); err != nil {
		slog.Error("RecordEntry failed", "client_id", id, "error", err)
		return nil, err
	}

	metrics.EntriesRecorded.Inc()
	slog.Info("Entry recorded", "client_id", id, "returned", returned, "paid", paid)
	return client, nil
}

// CarryOverDebt closes a client's draw: a positive balance becomes the
// new previousDebt (credit is not carried), and the per-draw counters
// reset to zero.
func (s *LedgerService) CarryOverDebt(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	var price float64
	if settings != nil {
		price = settings.TicketPrice
	}
	balance := calculator.Balance(*client, price)

	client.PreviousDebt = 0
	if balance > 0 {
		client.PreviousDebt = balance
	}
	client.TicketsDelivered = 0
	client.TicketsReturned = 0
	client.AmountPaid = 0

	if err := s.store.UpdateClient(ctx, client); err != nil {
		slog.Error("CarryOverDebt failed", "client_id", id, "error", err)
		return nil, err
	}
	slog.Info("Debt carried over", "client_id", id, "previous_debt", client.PreviousDebt)
	return client, nil
}

// GetSettings returns the active draw settings, or nil when unset.
func (s *LedgerService) GetSettings(ctx context.Context) (*models.LotterySettings, error) {
	return s.store.GetSettings(ctx)
}

// UpdateSettings replaces the active draw settings.
func (s *LedgerService) UpdateSettings(ctx context.Context, settings models.LotterySettings) error {
	if settings.TicketPrice < 0 {
		return fmt.Errorf("%w: ticketPrice must not be negative, got %g", models.ErrInvalidRecord, settings.TicketPrice)
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		slog.Error("UpdateSettings failed", "error", err)
		return err
	}
	slog.Info("Settings updated", "draw_date", settings.DrawDate.Format(models.DateFormat), "ticket_price", settings.TicketPrice)
	return nil
}

// Summary computes the aggregate ledger view from the current store
// state.
func (s *LedgerService) Summary(ctx context.Context) (calculator.Summary, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return calculator.Summary{}, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return calculator.Summary{}, err
	}
	return calculator.Summarize(clients, settings), nil
}

// ImportSpreadsheet validates, parses, and persists an uploaded xlsx
// workbook. The parse is all-or-nothing, and so is the persistence:
// the whole batch goes through one transaction. A re-import of the
// same file inserts duplicate clients; that is the documented
// behavior, imports never update existing rows.
func (s *LedgerService) ImportSpreadsheet(ctx context.Context, r io.Reader) (*importer.Result, error) {
	// Validation and parsing both need to read the workbook from the
	// start, so buffer the upload once. Import files are small local
	// spreadsheets.
	data, err := io.ReadAll(r)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("io_error").Inc()
		return nil, fmt.Errorf("%w: %v", importer.ErrIO, err)
	}

	if !importer.ValidateFormat(bytes.NewReader(data)) {
		metrics.ImportsTotal.WithLabelValues("format_error").Inc()
		slog.Warn("Import rejected: bad header")
		return nil, fmt.Errorf("%w: expected columns %v", importer.ErrFormat, importer.ExpectedHeader)
	}

	result, err := importer.Import(bytes.NewReader(data))
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("parse_error").Inc()
		slog.Warn("Import rejected: parse failure", "error", err)
		return nil, err
	}

	if err := s.store.ImportBatch(ctx, result.Clients, result.Settings); err != nil {
		metrics.ImportsTotal.WithLabelValues("storage_error").Inc()
		slog.Error("Import batch write failed", "clients", len(result.Clients), "error", err)
		return nil, err
	}

	metrics.ImportsTotal.WithLabelValues("ok").Inc()
	metrics.ClientsImported.Add(float64(len(result.Clients)))
	slog.Info("Import applied",
		"clients", len(result.Clients),
		"draw_date", result.Settings.DrawDate.Format(models.DateFormat),
		"ticket_price", result.Settings.TicketPrice,
	)
	return result, nil
}
