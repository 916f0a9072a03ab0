package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for locations.
type Repository interface {
	Create(ctx context.Context, loc *Location) error
	GetByID(ctx context.Context, id string) (*Location, error)
	List(ctx context.Context, filter Filter) ([]*Location, int, error)
	Update(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, loc *Location) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("locations").
		Columns("name", "address", "city", "state", "cep", "description").
		Values(loc.Name, loc.Address, loc.City, loc.State, loc.CEP, loc.Description).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create location query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&loc.ID, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("create location failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Location, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "address", "city", "state", "cep", "description",
		"is_active", "created_at", "updated_at",
	).
		From("locations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get location query failed: %w", err)
	}

	var l Location
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.CEP, &l.Description,
		&l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get location failed: %w", err)
	}
	return &l, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Location, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "address", "city", "state", "cep", "description",
		"is_active", "created_at", "updated_at",
		"count(*) OVER() AS total_count",
	).
		From("locations").
		Where(squirrel.Eq{"is_active": true})

	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": kw},
			squirrel.ILike{"address": kw},
		})
	}

	query = query.OrderBy("name ASC")

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
		return nil, 0, fmt.Errorf("build list locations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list locations failed: %w", err)
	}
	defer rows.Close()

	var locations []*Location
	var total int

	for rows.Next() {
		var l Location
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.CEP, &l.Description,
			&l.IsActive, &l.CreatedAt, &l.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan location failed: %w", err)
		}
		locations = append(locations, &l)
	}

	return locations, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, loc *Location) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("locations").
		Set("name", loc.Name).
		Set("address", loc.Address).
		Set("city", loc.City).
		Set("state", loc.State).
		Set("cep", loc.CEP).
		Set("description", loc.Description).
		Set("is_active", loc.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": loc.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update location query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("update location failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	// Soft delete; rooms under the location keep their history.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("locations").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete location query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete location failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
