package repository

// Migrations creates the parking schema. Every statement is idempotent.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cars (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT REFERENCES customers(id) ON DELETE SET NULL,
		plate_number TEXT NOT NULL UNIQUE,
		brand TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS parking_zones (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS parking_slots (
		id BIGSERIAL PRIMARY KEY,
		zone_id BIGINT NOT NULL REFERENCES parking_zones(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		is_occupied BOOLEAN NOT NULL DEFAULT FALSE,
		session_id BIGINT,
		UNIQUE (zone_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS rate_tables (
		version BIGSERIAL PRIMARY KEY,
		hourly_rate NUMERIC(12, 2) NOT NULL,
		daily_rate NUMERIC(12, 2) NOT NULL,
		additional_services JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS parking_sessions (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT REFERENCES customers(id) ON DELETE SET NULL,
		car_id BIGINT REFERENCES cars(id) ON DELETE SET NULL,
		slot_id BIGINT REFERENCES parking_slots(id) ON DELETE SET NULL,
		entry_time TIMESTAMPTZ NOT NULL,
		exit_time TIMESTAMPTZ,
		parking_requested BOOLEAN NOT NULL DEFAULT TRUE,
		selected_service_ids JSONB NOT NULL DEFAULT '[]',
		rate_version BIGINT NOT NULL DEFAULT 0,
		parking_price NUMERIC(12, 2) NOT NULL DEFAULT 0,
		additional_price NUMERIC(12, 2) NOT NULL DEFAULT 0,
		total_price NUMERIC(12, 2) NOT NULL DEFAULT 0,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		paid_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_parking_sessions_entry_time ON parking_sessions (entry_time)`,
	`CREATE INDEX IF NOT EXISTS idx_parking_sessions_unpaid ON parking_sessions (is_paid) WHERE is_paid = FALSE`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		session_id BIGINT REFERENCES parking_sessions(id) ON DELETE SET NULL,
		customer_id BIGINT REFERENCES customers(id) ON DELETE SET NULL,
		car_id BIGINT REFERENCES cars(id) ON DELETE SET NULL,
		total_price NUMERIC(12, 2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions (created_at)`,
}
