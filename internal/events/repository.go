package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nova-events/backend/internal/models"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, title, description, date, location, image, owner_id, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Image, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event owned by the acting admin.
func (r *Repository) Create(ctx context.Context, title, description string, date time.Time, location, image string, ownerID uuid.UUID) (*models.Event, error) {
	const q = `INSERT INTO events (id, title, description, date, location, image, owner_id)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, title, description, date, location, image, ownerID))
}

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// List returns all events ordered ascending by date.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Image, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update overwrites all mutable fields of an event.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description string, date time.Time, location, image string) (*models.Event, error) {
	const q = `UPDATE events SET title = $1, description = $2, date = $3, location = $4, image = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, title, description, date, location, image, id))
}

// Delete removes an event by ID. Its registrations go with it via the
// cascading foreign key.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
