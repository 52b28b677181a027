package registrations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nova-events/backend/internal/models"
)

// PostgreSQL error codes for constraint violations.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Repository handles registration persistence. The (user_id, event_id)
// unique constraint makes the insert the atomic duplicate check; there is no
// read-then-write window.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a registration. A duplicate pair is reported as
// models.ErrDuplicateRegistration, a vanished event as models.ErrNotFound.
func (r *Repository) Create(ctx context.Context, userID, eventID uuid.UUID) (*models.Registration, error) {
	const q = `INSERT INTO registrations (id, user_id, event_id)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, user_id, event_id, created_at`
	var reg models.Registration
	err := r.pool.QueryRow(ctx, q, userID, eventID).Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return nil, models.ErrDuplicateRegistration
			case foreignKeyViolation:
				return nil, models.ErrNotFound
			}
		}
		return nil, err
	}
	return &reg, nil
}

// Delete removes the caller's registration for an event.
func (r *Repository) Delete(ctx context.Context, userID, eventID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's registrations joined with their event.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RegistrationWithEvent, error) {
	const q = `SELECT r.id, r.user_id, r.event_id, r.created_at,
			e.id, e.title, e.description, e.date, e.location, e.image, e.owner_id, e.created_at, e.updated_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.RegistrationWithEvent{}
	for rows.Next() {
		var rw models.RegistrationWithEvent
		if err := rows.Scan(&rw.ID, &rw.UserID, &rw.EventID, &rw.CreatedAt,
			&rw.Event.ID, &rw.Event.Title, &rw.Event.Description, &rw.Event.Date,
			&rw.Event.Location, &rw.Event.Image, &rw.Event.OwnerID, &rw.Event.CreatedAt, &rw.Event.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rw)
	}
	return list, rows.Err()
}
