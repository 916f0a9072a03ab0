package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for users and their sessions.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter Filter) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error

	CreateSession(ctx context.Context, s *Session) error
	GetSessionByJTI(ctx context.Context, jti string) (*Session, error)
	ListSessions(ctx context.Context, userID string) ([]*Session, error)
	TouchSession(ctx context.Context, jti string, t time.Time) error
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const userColumns = `id, email, username, first_name, last_name, phone, password_hash,
	role, is_active, created_at, updated_at, last_login_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Phone,
		&u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user failed: %w", err)
	}
	return &u, nil
}

func (r *pgxRepository) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO users (email, username, first_name, last_name, phone, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		u.Email, u.Username, u.FirstName, u.LastName, u.Phone, u.PasswordHash, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == "users_username_key" {
				return ErrUsernameTaken
			}
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("create user failed: %w", err)
	}

	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *pgxRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "email", "username", "first_name", "last_name", "phone", "password_hash",
		"role", "is_active", "created_at", "updated_at", "last_login_at",
		"count(*) OVER() AS total_count",
	).From("users")

	if filter.Email != "" {
		query = query.Where(squirrel.ILike{"email": "%" + filter.Email + "%"})
	}
	if filter.Username != "" {
		query = query.Where(squirrel.ILike{"username": "%" + filter.Username + "%"})
	}
	if filter.Role != "" {
		query = query.Where(squirrel.Eq{"role": filter.Role})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	query = query.OrderBy("created_at DESC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	var total int

	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Phone,
			&u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user failed: %w", err)
		}
		users = append(users, &u)
	}

	return users, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, u *User) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("users").
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("phone", u.Phone).
		Set("role", u.Role).
		Set("is_active", u.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`

	ct, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	const query = `UPDATE users SET last_login_at = $1 WHERE id = $2`

	if _, err := r.pool.Exec(ctx, query, t, id); err != nil {
		return fmt.Errorf("update last login failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) CreateSession(ctx context.Context, s *Session) error {
	const query = `
		INSERT INTO user_sessions (user_id, refresh_token_jti, ip_address, user_agent, device_name, is_current)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, last_activity, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		s.UserID, s.RefreshTokenJTI, s.IPAddress, s.UserAgent, s.DeviceName, s.IsCurrent,
	).Scan(&s.ID, &s.LastActivity, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetSessionByJTI(ctx context.Context, jti string) (*Session, error) {
	const query = `
		SELECT id, user_id, refresh_token_jti, ip_address, user_agent, device_name,
		       is_current, last_activity, created_at
		FROM user_sessions
		WHERE refresh_token_jti = $1
	`

	var s Session
	err := r.pool.QueryRow(ctx, query, jti).Scan(
		&s.ID, &s.UserID, &s.RefreshTokenJTI, &s.IPAddress, &s.UserAgent, &s.DeviceName,
		&s.IsCurrent, &s.LastActivity, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) ListSessions(ctx context.Context, userID string) ([]*Session, error) {
	const query = `
		SELECT id, user_id, refresh_token_jti, ip_address, user_agent, device_name,
		       is_current, last_activity, created_at
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY last_activity DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.RefreshTokenJTI, &s.IPAddress, &s.UserAgent, &s.DeviceName,
			&s.IsCurrent, &s.LastActivity, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session failed: %w", err)
		}
		sessions = append(sessions, &s)
	}

	return sessions, nil
}

func (r *pgxRepository) TouchSession(ctx context.Context, jti string, t time.Time) error {
	const query = `UPDATE user_sessions SET last_activity = $1 WHERE refresh_token_jti = $2`

	if _, err := r.pool.Exec(ctx, query, t, jti); err != nil {
		return fmt.Errorf("touch session failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	const query = `DELETE FROM user_sessions WHERE id = $1 AND user_id = $2`

	ct, err := r.pool.Exec(ctx, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
