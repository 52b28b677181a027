package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nova-events/backend/internal/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// Repository handles user persistence. It is the sole owner of user rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, COALESCE(image,''), created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a new user. Email uniqueness is enforced by the database;
// a constraint violation is reported as models.ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO users (id, name, email, password_hash, role)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, q, name, email, passwordHash, string(role)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, models.ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile updates name and/or image for a user. Empty arguments leave
// the current value in place; role and email are immutable here.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, name, image string) (*models.User, error) {
	const q = `UPDATE users SET
			name = COALESCE(NULLIF($1,''), name),
			image = COALESCE(NULLIF($2,''), image),
			updated_at = NOW()
		WHERE id = $3
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, name, image, id))
}

// DeleteByEmail removes a user account by email, returning the deleted row.
// Registrations owned by the user are removed by the cascading constraint.
func (r *Repository) DeleteByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `DELETE FROM users WHERE email = $1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, email))
}
