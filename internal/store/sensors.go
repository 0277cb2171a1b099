package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Imanalii/yitiflow-dashboard/internal/model"
)

const sensorColumns = `id, vehicle_id, device_id, latitude, longitude, temperature, humidity, co2, reading_at, created_at`

func scanSensorReading(row pgx.Row) (model.SensorReading, error) {
	var reading model.SensorReading
	err := row.Scan(
		&reading.ID,
		&reading.VehicleID,
		&reading.DeviceID,
		&reading.Latitude,
		&reading.Longitude,
		&reading.Temperature,
		&reading.Humidity,
		&reading.CO2,
		&reading.Timestamp,
		&reading.CreatedAt,
	)
	return reading, err
}

// SaveSensorReading requires the store: telemetry must never be dropped
// silently.
func (s *Store) SaveSensorReading(ctx context.Context, insert model.SensorReadingInsert) (*model.SensorReading, error) {
	pool := s.db(ctx)
	if pool == nil {
		return nil, ErrStoreUnavailable
	}
	reading, err := scanSensorReading(pool.QueryRow(ctx, `
		INSERT INTO sensor_readings (vehicle_id, device_id, latitude, longitude, temperature, humidity, co2, reading_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+sensorColumns,
		insert.VehicleID,
		insert.DeviceID,
		insert.Latitude,
		insert.Longitude,
		insert.Temperature,
		insert.Humidity,
		insert.CO2,
		insert.Timestamp,
	))
	if err != nil {
		return nil, fmt.Errorf("save sensor reading: %w", err)
	}
	return &reading, nil
}

// LatestSensorReading returns the most recent reading for a vehicle by
// reading timestamp, not insertion order.
func (s *Store) LatestSensorReading(ctx context.Context, vehicleID int64) (*model.SensorReading, error) {
	pool := s.db(ctx)
	if pool == nil {
		return nil, nil
	}
	reading, err := scanSensorReading(pool.QueryRow(ctx, `
		SELECT `+sensorColumns+`
		FROM sensor_readings
		WHERE vehicle_id = $1
		ORDER BY reading_at DESC
		LIMIT 1
	`, vehicleID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest sensor reading: %w", err)
	}
	return &reading, nil
}
