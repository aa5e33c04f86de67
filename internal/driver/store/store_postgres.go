package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"driverhub/internal/driver"
	"driverhub/pkg/domain"
	"driverhub/pkg/platform/sentinel"
)

// PostgresStore persists driver profiles in PostgreSQL. Status transitions
// are conditional UPDATEs so the monotonic rule holds under concurrent
// writers without advisory locks.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const profileColumns = `id, user_id, status, is_available, license_number, timezone, phone,
	rating, rating_count, rejection_reason, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, profile driver.Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO driver_profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		profile.ID.String(), profile.UserID.String(), profile.Status.String(),
		profile.IsAvailable, profile.LicenseNumber, profile.Timezone, profile.Phone,
		profile.Rating, profile.RatingCount, profile.RejectionReason,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return infraErr("create driver profile", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, driverID domain.DriverID) (driver.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM driver_profiles WHERE id = $1`,
		driverID.String())
	return scanProfile(row, "find driver profile")
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID domain.UserID) (driver.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM driver_profiles WHERE user_id = $1`,
		userID.String())
	return scanProfile(row, "find driver profile by user")
}

func (s *PostgresStore) AdvanceStatus(ctx context.Context, driverID domain.DriverID, target domain.DriverStatus) (domain.DriverStatus, error) {
	// Only statuses strictly below the target may advance; terminal rows
	// never match, so "highest wins" holds even when writers race.
	var lower []string
	for _, st := range []domain.DriverStatus{
		domain.StatusProfileCreated,
		domain.StatusDocumentsSubmitted,
		domain.StatusVehicleAdded,
		domain.StatusPendingVerification,
	} {
		if st.Rank() < target.Rank() {
			lower = append(lower, st.String())
		}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE driver_profiles SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)`,
		driverID.String(), target.String(), lower)
	if err != nil {
		return "", infraErr("advance driver status", err)
	}
	if tag.RowsAffected() == 1 {
		return target, nil
	}

	// No row moved: distinguish missing, terminal, and already-past.
	profile, err := s.FindByID(ctx, driverID)
	if err != nil {
		return "", err
	}
	if profile.Status.IsTerminal() {
		return profile.Status, sentinel.ErrInvalidState
	}
	return profile.Status, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, driverID domain.DriverID, from, to domain.DriverStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE driver_profiles SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		driverID.String(), from.String(), to.String())
	if err != nil {
		return infraErr("set driver status", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.FindByID(ctx, driverID); err != nil {
			return err
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) RecordRejection(ctx context.Context, driverID domain.DriverID, reason string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE driver_profiles SET rejection_reason = $2, updated_at = now()
		WHERE id = $1`,
		driverID.String(), reason)
	if err != nil {
		return infraErr("record rejection", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetAvailability(ctx context.Context, driverID domain.DriverID, available bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE driver_profiles SET is_available = $2, updated_at = now()
		WHERE id = $1`,
		driverID.String(), available)
	if err != nil {
		return infraErr("set availability", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row, op string) (driver.Profile, error) {
	var p driver.Profile
	var driverID, userID, status string
	err := row.Scan(&driverID, &userID, &status, &p.IsAvailable,
		&p.LicenseNumber, &p.Timezone, &p.Phone,
		&p.Rating, &p.RatingCount, &p.RejectionReason,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return driver.Profile{}, sentinel.ErrNotFound
		}
		return driver.Profile{}, infraErr(op, err)
	}
	if p.ID, err = domain.ParseDriverID(driverID); err != nil {
		return driver.Profile{}, fmt.Errorf("%s: corrupt driver id: %w", op, err)
	}
	if p.UserID, err = domain.ParseUserID(userID); err != nil {
		return driver.Profile{}, fmt.Errorf("%s: corrupt user id: %w", op, err)
	}
	if p.Status, err = domain.ParseDriverStatus(status); err != nil {
		return driver.Profile{}, fmt.Errorf("%s: corrupt status: %w", op, err)
	}
	return p, nil
}

// infraErr classifies storage failures: timeouts and cancellations are
// retryable unavailability, everything else is wrapped as-is.
func infraErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
