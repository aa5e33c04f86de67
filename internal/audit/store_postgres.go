package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"driverhub/pkg/domain"
	"driverhub/pkg/platform/sentinel"
)

// PostgresStore appends audit events to PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	var userID *string
	if event.UserID != nil {
		v := event.UserID.String()
		userID = &v
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO driver_audit_events (id, event_type, driver_id, user_id, reason, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, string(event.Type), event.DriverID.String(), userID,
		event.Reason, metadata, event.Timestamp,
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("append audit event: %w: %w", sentinel.ErrUnavailable, err)
		}
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDriver(ctx context.Context, driverID domain.DriverID) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_type, driver_id, user_id, reason, metadata, occurred_at
		FROM driver_audit_events
		WHERE driver_id = $1
		ORDER BY occurred_at`,
		driverID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var eventType, drvID string
		var userID *string
		var metadata []byte
		if err := rows.Scan(&event.ID, &eventType, &drvID, &userID,
			&event.Reason, &metadata, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Type = EventType(eventType)
		if event.DriverID, err = domain.ParseDriverID(drvID); err != nil {
			return nil, fmt.Errorf("corrupt driver id: %w", err)
		}
		// UserID is optional on gate events.
		if userID != nil {
			if parsed, err := domain.ParseUserID(*userID); err == nil {
				event.UserID = &parsed
			}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
