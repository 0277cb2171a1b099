package store

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	open_id VARCHAR(64) NOT NULL UNIQUE,
	name TEXT,
	email VARCHAR(320),
	login_method VARCHAR(64),
	role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_signed_in TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS vehicles (
	id BIGSERIAL PRIMARY KEY,
	provider_id BIGINT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('boat', 'bus', 'car', 'electric_car')),
	license_plate VARCHAR(50) NOT NULL,
	capacity INT NOT NULL,
	current_latitude TEXT,
	current_longitude TEXT,
	status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'busy', 'maintenance')),
	fuel_type TEXT NOT NULL CHECK (fuel_type IN ('diesel', 'electric', 'hybrid')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS trips (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	vehicle_id BIGINT NOT NULL,
	start_latitude TEXT NOT NULL,
	start_longitude TEXT NOT NULL,
	start_address TEXT,
	end_latitude TEXT,
	end_longitude TEXT,
	end_address TEXT,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ,
	distance BIGINT,
	duration BIGINT,
	price BIGINT,
	carbon_emissions BIGINT,
	rating INT,
	review TEXT,
	status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'active', 'completed', 'cancelled')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sensor_readings (
	id BIGSERIAL PRIMARY KEY,
	vehicle_id BIGINT NOT NULL,
	device_id VARCHAR(100) NOT NULL,
	latitude TEXT,
	longitude TEXT,
	temperature INT,
	humidity INT,
	co2 INT,
	reading_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sensor_readings_vehicle_time ON sensor_readings (vehicle_id, reading_at DESC);

CREATE TABLE IF NOT EXISTS rewards (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	trip_id BIGINT,
	type TEXT NOT NULL CHECK (type IN ('sustainable_choice', 'off_peak', 'loyalty', 'social')),
	amount BIGINT NOT NULL,
	multiplier INT NOT NULL DEFAULT 100,
	earned_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ,
	redeemed BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_rewards_user ON rewards (user_id);
`

// Migrate applies the schema. A degraded store is a no-op so the service
// still boots without a database.
func (s *Store) Migrate(ctx context.Context) error {
	pool := s.db(ctx)
	if pool == nil {
		return nil
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
