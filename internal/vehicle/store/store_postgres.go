package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"driverhub/internal/vehicle"
	"driverhub/pkg/domain"
	"driverhub/pkg/platform/sentinel"
)

// PostgresStore persists vehicles in PostgreSQL with an upsert keyed on
// driver_id, which enforces the one-vehicle-per-driver invariant at the
// schema level.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Upsert(ctx context.Context, v vehicle.Vehicle) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO driver_vehicles
			(id, driver_id, make, model, license_plate, max_weight_kg, max_volume_m3, max_packages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (driver_id) DO UPDATE SET
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			license_plate = EXCLUDED.license_plate,
			max_weight_kg = EXCLUDED.max_weight_kg,
			max_volume_m3 = EXCLUDED.max_volume_m3,
			max_packages = EXCLUDED.max_packages,
			updated_at = now()`,
		v.ID.String(), v.DriverID.String(), v.Make, v.Model, v.LicensePlate,
		v.MaxWeightKg, v.MaxVolumeM3, v.MaxPackages,
	)
	if err != nil {
		return infraErr("upsert vehicle", err)
	}
	return nil
}

func (s *PostgresStore) FindByDriver(ctx context.Context, driverID domain.DriverID) (vehicle.Vehicle, error) {
	var v vehicle.Vehicle
	var vehicleID, drvID string
	err := s.pool.QueryRow(ctx, `
		SELECT id, driver_id, make, model, license_plate, max_weight_kg, max_volume_m3, max_packages, created_at, updated_at
		FROM driver_vehicles WHERE driver_id = $1`,
		driverID.String(),
	).Scan(&vehicleID, &drvID, &v.Make, &v.Model, &v.LicensePlate,
		&v.MaxWeightKg, &v.MaxVolumeM3, &v.MaxPackages, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vehicle.Vehicle{}, sentinel.ErrNotFound
		}
		return vehicle.Vehicle{}, infraErr("find vehicle", err)
	}
	if v.ID, err = domain.ParseVehicleID(vehicleID); err != nil {
		return vehicle.Vehicle{}, fmt.Errorf("corrupt vehicle id: %w", err)
	}
	if v.DriverID, err = domain.ParseDriverID(drvID); err != nil {
		return vehicle.Vehicle{}, fmt.Errorf("corrupt driver id: %w", err)
	}
	return v, nil
}

func infraErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
