package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mikuchat/internal/app/user"
)

// UserRepository implements user.Store on top of the pgx pool.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository wires the repository to a connection pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ user.Store = (*UserRepository)(nil)

const userColumns = `id, username, email, COALESCE(password_hash, ''), COALESCE(google_id, ''),
	COALESCE(avatar_url, ''), COALESCE(bio, ''), role, created_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	var role string

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.GoogleID,
		&u.AvatarURL, &u.Bio, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.Role = user.ParseRole(role)
	return u, nil
}

// nullable maps an empty string onto SQL NULL, so the credential check
// constraint sees absent values rather than empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts the record and fills in ID and CreatedAt.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (username, email, password_hash, google_id, avatar_url, bio, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	if u.Role == "" {
		u.Role = user.RoleUser
	}

	err := r.pool.QueryRow(ctx, query,
		u.Username, u.Email, nullable(u.PasswordHash), nullable(u.GoogleID),
		nullable(u.AvatarURL), nullable(u.Bio), u.Role.String(),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return mapUserConstraintError(err)
	}

	return nil
}

// GetByID returns the user or user.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername returns the user or user.ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

// GetByIdentifier looks the user up by username or email. The email side of
// the comparison is case-normalized the same way records are stored.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, identifier))
}

// GetByGoogleID returns the user linked to the Google identity.
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, googleID))
}

// Update persists the mutable profile fields and the password hash.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `UPDATE users
		SET username = $2, password_hash = $3, avatar_url = $4, bio = $5, role = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		u.ID, u.Username, nullable(u.PasswordHash), nullable(u.AvatarURL),
		nullable(u.Bio), u.Role.String(),
	)
	if err != nil {
		return mapUserConstraintError(err)
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}
