package store

import (
	"context"
	"database/sql"
)

// CreateSchema creates all entity tables if they do not exist. Run during
// startup before any store is used. The activity table is owned by the
// activity package and bootstrapped separately.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS customers (
			id               TEXT PRIMARY KEY,
			first_name       TEXT NOT NULL,
			last_name        TEXT NOT NULL,
			email            TEXT NOT NULL DEFAULT '',
			phone            TEXT NOT NULL DEFAULT '',
			license_number   TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'New Lead',
			source           TEXT NOT NULL DEFAULT '',
			engagement_score INTEGER NOT NULL DEFAULT 0,
			dl_data          TEXT,
			qualification    TEXT,
			notes            TEXT NOT NULL DEFAULT '',
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_customers_license ON customers (license_number);
		CREATE INDEX IF NOT EXISTS idx_customers_email ON customers (email);

		CREATE TABLE IF NOT EXISTS inventory (
			id                  TEXT PRIMARY KEY,
			vin                 TEXT NOT NULL UNIQUE,
			stock_number        TEXT NOT NULL,
			year                INTEGER NOT NULL,
			make                TEXT NOT NULL,
			model               TEXT NOT NULL,
			trim                TEXT NOT NULL DEFAULT '',
			mileage             INTEGER NOT NULL DEFAULT 0,
			price               REAL NOT NULL,
			cost                REAL NOT NULL DEFAULT 0,
			status              TEXT NOT NULL DEFAULT 'available',
			market_average      REAL,
			market_rank         INTEGER,
			market_last_updated TEXT,
			created_at          TEXT NOT NULL,
			updated_at          TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS deals (
			id           TEXT PRIMARY KEY,
			customer_id  TEXT NOT NULL REFERENCES customers(id),
			vehicle_id   TEXT NOT NULL REFERENCES inventory(id),
			lender_id    TEXT,
			salesperson  TEXT NOT NULL DEFAULT '',
			structure    TEXT NOT NULL,
			stipulations TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'pending',
			notes        TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_deals_status ON deals (status);
		CREATE INDEX IF NOT EXISTS idx_deals_customer ON deals (customer_id);

		CREATE TABLE IF NOT EXISTS quotes (
			id           TEXT PRIMARY KEY,
			customer_id  TEXT,
			vehicle_id   TEXT,
			quote_type   TEXT NOT NULL DEFAULT 'lease',
			calculations TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'draft',
			expires_at   TEXT NOT NULL,
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS banks (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			contact    TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			programs   TEXT NOT NULL DEFAULT '[]',
			preferred  INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT 'general',
			priority    TEXT NOT NULL DEFAULT 'medium',
			status      TEXT NOT NULL DEFAULT 'open',
			assignee    TEXT NOT NULL DEFAULT '',
			due_at      TEXT,
			subtasks    TEXT NOT NULL DEFAULT '[]',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);
	`)
	return err
}
