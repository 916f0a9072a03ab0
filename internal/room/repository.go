package room

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

// Repository defines data access methods for rooms.
type Repository interface {
	Create(ctx context.Context, rm *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, rm *Room) error
	Delete(ctx context.Context, id string) error

	// SetResources replaces the set of resources attached to the room.
	SetResources(ctx context.Context, roomID string, resourceIDs []string) error
	// Stats reports how many rooms are occupied at the given instant,
	// overall and per location.
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, rm *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("rooms").
		Columns("name", "location_id", "capacity").
		Values(rm.Name, rm.LocationID, rm.Capacity).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&rm.ID, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return ErrNameTaken
			case pgerrcode.ForeignKeyViolation:
				return ErrLocationMissing
			}
		}
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

const roomSelect = `
	SELECT r.id, r.name, r.location_id, l.name, r.capacity,
	       r.is_active, r.created_at, r.updated_at,
	       COALESCE(
	           json_agg(json_build_object('id', res.id, 'name', res.name))
	               FILTER (WHERE res.id IS NOT NULL),
	           '[]'
	       ) AS resources
	FROM rooms r
	JOIN locations l ON r.location_id = l.id
	LEFT JOIN room_resources rr ON rr.room_id = r.id
	LEFT JOIN resources res ON res.id = rr.resource_id
`

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	query := roomSelect + `
		WHERE r.id = $1
		GROUP BY r.id, l.name
	`

	var rm Room
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rm.ID, &rm.Name, &rm.LocationID, &rm.LocationName, &rm.Capacity,
		&rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt, &rm.Resources,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return &rm, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	// The resource aggregation makes this awkward to express with squirrel,
	// so the filter clauses are assembled by hand.
	query := roomSelect + ` WHERE r.is_active = true`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.LocationID != "" {
		query += ` AND r.location_id = ` + arg(filter.LocationID)
	}
	if filter.Keyword != "" {
		p := arg("%" + filter.Keyword + "%")
		query += ` AND (r.name ILIKE ` + p + ` OR l.name ILIKE ` + p + `)`
	}
	if filter.MinCapacity > 0 {
		query += ` AND r.capacity >= ` + arg(filter.MinCapacity)
	}

	query += `
		GROUP BY r.id, l.name
		ORDER BY r.name ASC
	`

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query += ` LIMIT ` + arg(filter.PageSize) + ` OFFSET ` + arg(offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(
			&rm.ID, &rm.Name, &rm.LocationID, &rm.LocationName, &rm.Capacity,
			&rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt, &rm.Resources,
		); err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, &rm)
	}

	// Separate count query; the window-function trick does not mix with GROUP BY.
	total, err := r.count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

func (r *pgxRepository) count(ctx context.Context, filter Filter) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("count(*)").
		From("rooms r").
		Join("locations l ON r.location_id = l.id").
		Where(squirrel.Eq{"r.is_active": true})

	if filter.LocationID != "" {
		query = query.Where(squirrel.Eq{"r.location_id": filter.LocationID})
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"r.name": kw},
			squirrel.ILike{"l.name": kw},
		})
	}
	if filter.MinCapacity > 0 {
		query = query.Where(squirrel.GtOrEq{"r.capacity": filter.MinCapacity})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count rooms query failed: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count rooms failed: %w", err)
	}
	return total, nil
}

func (r *pgxRepository) Update(ctx context.Context, rm *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("rooms").
		Set("name", rm.Name).
		Set("location_id", rm.LocationID).
		Set("capacity", rm.Capacity).
		Set("is_active", rm.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": rm.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return ErrNameTaken
			case pgerrcode.ForeignKeyViolation:
				return ErrLocationMissing
			}
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("rooms").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete room query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetResources(ctx context.Context, roomID string, resourceIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin set resources failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM room_resources WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("clear room resources failed: %w", err)
	}

	for _, resID := range resourceIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO room_resources (room_id, resource_id) VALUES ($1, $2)`,
			roomID, resID,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return fmt.Errorf("unknown resource %s: %w", resID, err)
			}
			return fmt.Errorf("attach resource failed: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	const query = `
		SELECT l.id, l.name,
		       count(r.id) AS total,
		       count(r.id) FILTER (WHERE EXISTS (
		           SELECT 1 FROM bookings b
		           WHERE b.room_id = r.id
		             AND b.status = 'confirmed'
		             AND b.is_active
		             AND b.start_datetime <= $1
		             AND b.end_datetime > $1
		       )) AS occupied
		FROM locations l
		JOIN rooms r ON r.location_id = l.id AND r.is_active
		WHERE l.is_active
		GROUP BY l.id, l.name
		ORDER BY l.name
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("room stats failed: %w", err)
	}
	defer rows.Close()

	stats := &Stats{
		ByLocation: make([]LocationStats, 0),
		Timestamp:  now,
	}

	for rows.Next() {
		var ls LocationStats
		if err := rows.Scan(&ls.LocationID, &ls.LocationName, &ls.TotalRooms, &ls.OccupiedRooms); err != nil {
			return nil, fmt.Errorf("scan room stats failed: %w", err)
		}
		ls.AvailableRooms = ls.TotalRooms - ls.OccupiedRooms

		stats.TotalRooms += ls.TotalRooms
		stats.OccupiedRooms += ls.OccupiedRooms
		stats.ByLocation = append(stats.ByLocation, ls)
	}

	stats.AvailableRooms = stats.TotalRooms - stats.OccupiedRooms

	return stats, nil
}
