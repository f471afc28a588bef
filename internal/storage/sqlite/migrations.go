package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// lottery_settings is a singleton table: the CHECK pins its only row to id 1.
const schema = `
CREATE TABLE IF NOT EXISTS clients (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    tickets_delivered INTEGER NOT NULL DEFAULT 0,
    tickets_returned INTEGER NOT NULL DEFAULT 0,
    amount_paid REAL NOT NULL DEFAULT 0,
    previous_debt REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS lottery_settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    draw_date TEXT NOT NULL,
    ticket_price REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
