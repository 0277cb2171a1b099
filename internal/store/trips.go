package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
)

const tripColumns = `id, user_id, vehicle_id, start_latitude, start_longitude, start_address, end_latitude, end_longitude, end_address, start_time, end_time, distance, duration, price, carbon_emissions, rating, review, status, created_at`

func scanTrip(row pgx.Row) (model.Trip, error) {
	var trip model.Trip
	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.VehicleID,
		&trip.StartLatitude,
		&trip.StartLongitude,
		&trip.StartAddress,
		&trip.EndLatitude,
		&trip.EndLongitude,
		&trip.EndAddress,
		&trip.StartTime,
		&trip.EndTime,
		&trip.Distance,
		&trip.Duration,
		&trip.Price,
		&trip.CarbonEmissions,
		&trip.Rating,
		&trip.Review,
		&trip.Status,
		&trip.CreatedAt,
	)
	return trip, err
}

func (s *Store) ListTrips(ctx context.Context) ([]model.Trip, error) {
	trips := []model.Trip{}
	pool := s.db(ctx)
	if pool == nil {
		return trips, nil
	}
	rows, err := pool.Query(ctx, `SELECT `+tripColumns+` FROM trips`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

func (s *Store) GetTrip(ctx context.Context, id int64) (*model.Trip, error) {
	pool := s.db(ctx)
	if pool == nil {
		return nil, nil
	}
	trip, err := scanTrip(pool.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return &trip, nil
}

func (s *Store) CreateTrip(ctx context.Context, insert model.TripInsert) (*model.Trip, error) {
	pool := s.db(ctx)
	if pool == nil {
		return nil, ErrStoreUnavailable
	}
	status := insert.Status
	if status == "" {
		status = model.TripPending
	}
	trip, err := scanTrip(pool.QueryRow(ctx, `
		INSERT INTO trips (user_id, vehicle_id, start_latitude, start_longitude, start_address, end_latitude, end_longitude, end_address, start_time, end_time, distance, duration, price, carbon_emissions, rating, review, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+tripColumns,
		insert.UserID,
		insert.VehicleID,
		insert.StartLatitude,
		insert.StartLongitude,
		insert.StartAddress,
		insert.EndLatitude,
		insert.EndLongitude,
		insert.EndAddress,
		insert.StartTime,
		insert.EndTime,
		insert.Distance,
		insert.Duration,
		insert.Price,
		insert.CarbonEmissions,
		insert.Rating,
		insert.Review,
		status,
	))
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	return &trip, nil
}

// UpdateTripStatus silently no-ops when the store is unavailable.
func (s *Store) UpdateTripStatus(ctx context.Context, id int64, status model.TripStatus) error {
	pool := s.db(ctx)
	if pool == nil {
		return nil
	}
	_, err := pool.Exec(ctx, `UPDATE trips SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update trip status: %w", err)
	}
	return nil
}
