package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lotocontrol/internal/models"
	"lotocontrol/internal/storage"
)

const clientColumns = "id, name, tickets_delivered, tickets_returned, amount_paid, previous_debt"

// scanClients reads every row of a clients query.
func scanClients(rows *sql.Rows) ([]models.Client, error) {
	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.TicketsDelivered, &c.TicketsReturned, &c.AmountPaid, &c.PreviousDebt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

// ListClients returns all clients ordered by name.
func (s *SQLiteStore) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM clients ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()
	return scanClients(rows)
}

// ListClientsByPrefix returns the clients whose name starts with prefix,
// ordered by name.
func (s *SQLiteStore) ListClientsByPrefix(ctx context.Context, prefix string) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE name LIKE ? || '%' ORDER BY name",
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	defer rows.Close()
	return scanClients(rows)
}

// GetClient retrieves a client by ID.
func (s *SQLiteStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	c := &models.Client{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.TicketsDelivered, &c.TicketsReturned, &c.AmountPaid, &c.PreviousDebt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// InsertClient persists a new client, assigning its ID.
func (s *SQLiteStore) InsertClient(ctx context.Context, client *models.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}
	if client.ID == "" {
		client.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO clients ("+clientColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		client.ID, client.Name, client.TicketsDelivered, client.TicketsReturned, client.AmountPaid, client.PreviousDebt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}

	s.clientsHub.notify()
	return nil
}

// UpdateClient updates an existing client.
func (s *SQLiteStore) UpdateClient(ctx context.Context, client *models.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE clients
		 SET name = ?, tickets_delivered = ?, tickets_returned = ?, amount_paid = ?, previous_debt = ?
		 WHERE id = ?`,
		client.Name, client.TicketsDelivered, client.TicketsReturned, client.AmountPaid, client.PreviousDebt, client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, client.ID)
	}

	s.clientsHub.notify()
	return nil
}

// DeleteClient removes a client by ID.
func (s *SQLiteStore) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	s.clientsHub.notify()
	return nil
}

// ImportBatch inserts every client and replaces the settings in a single
// transaction, so a failure partway through leaves nothing applied.
func (s *SQLiteStore) ImportBatch(ctx context.Context, clients []models.Client, settings models.LotterySettings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO lottery_settings (id, draw_date, ticket_price) VALUES (1, ?, ?)",
		settings.DrawDate.Format(models.DateFormat), settings.TicketPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	for i := range clients {
		client := &clients[i]
		if err := client.Validate(); err != nil {
			return err
		}
		if client.ID == "" {
			client.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO clients ("+clientColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			client.ID, client.Name, client.TicketsDelivered, client.TicketsReturned, client.AmountPaid, client.PreviousDebt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert client %q: %w", client.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.clientsHub.notify()
	s.settingsHub.notify()
	return nil
}
