package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
)

const vehicleColumns = `id, provider_id, type, license_plate, capacity, current_latitude, current_longitude, status, fuel_type, created_at, updated_at`

func scanVehicle(row pgx.Row) (model.Vehicle, error) {
	var vehicle model.Vehicle
	err := row.Scan(
		&vehicle.ID,
		&vehicle.ProviderID,
		&vehicle.Type,
		&vehicle.LicensePlate,
		&vehicle.Capacity,
		&vehicle.CurrentLatitude,
		&vehicle.CurrentLongitude,
		&vehicle.Status,
		&vehicle.FuelType,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	return vehicle, err
}

// ListVehicles returns every vehicle in store-native order, or an empty
// slice when the store is unavailable. Callers filter client-side.
func (s *Store) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	vehicles := []model.Vehicle{}
	pool := s.db(ctx)
	if pool == nil {
		return vehicles, nil
	}
	rows, err := pool.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

// GetVehicle returns nil both for a missing row and for an unavailable
// store; the two cases are deliberately indistinguishable to callers.
func (s *Store) GetVehicle(ctx context.Context, id int64) (*model.Vehicle, error) {
	pool := s.db(ctx)
	if pool == nil {
		return nil, nil
	}
	vehicle, err := scanVehicle(pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &vehicle, nil
}

func (s *Store) CreateVehicle(ctx context.Context, insert model.VehicleInsert) (*model.Vehicle, error) {
	pool := s.db(ctx)
	if pool == nil {
		return nil, ErrStoreUnavailable
	}
	status := insert.Status
	if status == "" {
		status = model.VehicleAvailable
	}
	vehicle, err := scanVehicle(pool.QueryRow(ctx, `
		INSERT INTO vehicles (provider_id, type, license_plate, capacity, current_latitude, current_longitude, status, fuel_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+vehicleColumns,
		insert.ProviderID,
		insert.Type,
		insert.LicensePlate,
		insert.Capacity,
		insert.CurrentLatitude,
		insert.CurrentLongitude,
		status,
		insert.FuelType,
	))
	if err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return &vehicle, nil
}

// UpdateVehiclePosition is a targeted single-field update; it silently
// no-ops when the store is unavailable.
func (s *Store) UpdateVehiclePosition(ctx context.Context, id int64, latitude, longitude string) error {
	pool := s.db(ctx)
	if pool == nil {
		return nil
	}
	_, err := pool.Exec(ctx, `
		UPDATE vehicles
		SET current_latitude = $1, current_longitude = $2, updated_at = now()
		WHERE id = $3
	`, latitude, longitude, id)
	if err != nil {
		return fmt.Errorf("update vehicle position: %w", err)
	}
	return nil
}
