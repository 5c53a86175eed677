package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/user-service/internal/core/domain"
)

const uniqueViolation = "23505"

const userColumns = `id::text, username, email, full_name, avatar, COALESCE(cover_image, ''),
	password_hash, COALESCE(refresh_token, ''), created_at, updated_at`

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	if username == "" && email == "" {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		LIMIT 1`
	return r.queryOne(ctx, query, username, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (id, username, email, full_name, avatar, cover_image, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		RETURNING ` + userColumns

	return r.queryOne(ctx, query,
		uuid.NewString(), user.Username, user.Email, user.FullName, user.AvatarURL,
		user.CoverImageURL, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	query := `UPDATE users SET
			full_name   = COALESCE($2, full_name),
			email       = COALESCE($3, email),
			avatar      = COALESCE($4, avatar),
			cover_image = COALESCE($5, cover_image),
			updated_at  = now()
		WHERE id = $1
		RETURNING ` + userColumns

	return r.queryOne(ctx, query, id, patch.FullName, patch.Email, patch.AvatarURL, patch.CoverImageURL)
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.exec(ctx, `UPDATE users SET refresh_token = NULLIF($2, '') WHERE id = $1`, id, token)
}

func (r *UserRepository) SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil || current == "" {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $3 WHERE id = $1 AND refresh_token = $2`, id, current, next)
	if err != nil {
		return false, fmt.Errorf("swap refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UserRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL, &u.CoverImageURL,
		&u.PasswordHash, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *UserRepository) exec(ctx context.Context, query string, id string, args ...any) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrConflict
	}
	return fmt.Errorf("db error: %w", err)
}
