package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lotocontrol/internal/models"
)

// GetSettings retrieves the singleton draw settings. Returns nil when
// no draw has been configured yet.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*models.LotterySettings, error) {
	var dateStr string
	settings := &models.LotterySettings{}
	err := s.db.QueryRowContext(ctx,
		"SELECT draw_date, ticket_price FROM lottery_settings WHERE id = 1",
	).Scan(&dateStr, &settings.TicketPrice)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	settings.DrawDate, err = time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored draw date %q: %w", dateStr, err)
	}
	return settings, nil
}

// UpsertSettings replaces the singleton draw settings wholesale.
func (s *SQLiteStore) UpsertSettings(ctx context.Context, settings models.LotterySettings) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO lottery_settings (id, draw_date, ticket_price) VALUES (1, ?, ?)",
		settings.DrawDate.Format(models.DateFormat), settings.TicketPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	s.settingsHub.notify()
	return nil
}
