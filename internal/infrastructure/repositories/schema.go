package repositories

import (
	"database/sql"
	"fmt"
)

// InitializeSchema створює таблиці, якщо вони не існують.
// Викликається один раз під час старту сервісу.
func InitializeSchema(db *sql.DB) error {
	// Створення таблиці пристроїв
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			battery_level INT NOT NULL DEFAULT 100,
			latitude FLOAT NOT NULL DEFAULT 0,
			longitude FLOAT NOT NULL DEFAULT 0,
			last_seen_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create devices table: %w", err)
	}

	// Створення таблиці тривог
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id UUID PRIMARY KEY,
			device_id TEXT NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			status TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			latitude FLOAT,
			longitude FLOAT,
			triggered_at TIMESTAMPTZ NOT NULL,
			acknowledged_at TIMESTAMPTZ,
			acknowledged_by TEXT,
			resolved_at TIMESTAMPTZ,
			survivor_count INT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create alerts table: %w", err)
	}

	// Індекс для вибірки активних тривог
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts (status)`)
	if err != nil {
		return fmt.Errorf("failed to create alerts status index: %w", err)
	}

	// Створення таблиці кампаній; вкладені структури зберігаються як JSONB
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS campaigns (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			alert_ids JSONB NOT NULL DEFAULT '[]',
			assigned_rescuer_ids JSONB NOT NULL DEFAULT '[]',
			node_assignments JSONB NOT NULL DEFAULT '[]',
			total_survivors_found INT NOT NULL DEFAULT 0,
			latitude FLOAT NOT NULL DEFAULT 0,
			longitude FLOAT NOT NULL DEFAULT 0,
			status_history JSONB NOT NULL DEFAULT '[]',
			notes JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			resolved_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create campaigns table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns (status)`)
	if err != nil {
		return fmt.Errorf("failed to create campaigns status index: %w", err)
	}

	// Створення таблиці користувачів
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			display_name TEXT NOT NULL,
			role TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}
