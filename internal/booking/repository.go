package booking

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

// Repository defines data access methods for bookings.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, b *Booking) error
	Deactivate(ctx context.Context, id string) error

	// FindConflicts returns all active, blocking bookings for the room whose
	// interval overlaps [start, end), ordered by start time. excludeID is
	// used on the update path so a booking does not conflict with itself.
	FindConflicts(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]*Booking, error)

	// ListForRoomDay returns the room's active, blocking bookings on the
	// given date, ordered by start time. Input for the slot suggester.
	ListForRoomDay(ctx context.Context, roomID string, date time.Time) ([]*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// blockingStatuses are the statuses that occupy a time slot.
var blockingStatuses = []string{string(StatusPending), string(StatusConfirmed)}

func selectBuilder() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"b.id", "b.room_id", "r.name", "l.id", "l.name",
		"b.manager_id", "m.username",
		"b.date_booking", "b.start_datetime", "b.end_datetime",
		"b.has_coffee_break", "b.coffee_break_headcount", "b.status",
		"b.confirmed_by", "cb.username", "b.confirmed_at",
		"b.cancelled_by", "xb.username", "b.cancelled_at", "b.cancellation_reason",
		"b.notes", "b.is_active", "b.created_at", "b.updated_at",
	).
		From("bookings b").
		Join("rooms r ON b.room_id = r.id").
		Join("locations l ON r.location_id = l.id").
		Join("users m ON b.manager_id = m.id").
		LeftJoin("users cb ON b.confirmed_by = cb.id").
		LeftJoin("users xb ON b.cancelled_by = xb.id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.RoomID, &b.RoomName, &b.LocationID, &b.LocationName,
		&b.ManagerID, &b.ManagerName,
		&b.DateBooking, &b.StartDatetime, &b.EndDatetime,
		&b.HasCoffeeBreak, &b.CoffeeBreakHeadcount, &b.Status,
		&b.ConfirmedBy, &b.ConfirmedByName, &b.ConfirmedAt,
		&b.CancelledBy, &b.CancelledByName, &b.CancelledAt, &b.CancellationReason,
		&b.Notes, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("bookings").
		Columns(
			"room_id", "manager_id", "date_booking", "start_datetime", "end_datetime",
			"has_coffee_break", "coffee_break_headcount", "status", "notes",
		).
		Values(
			b.RoomID, b.ManagerID, b.DateBooking, b.StartDatetime, b.EndDatetime,
			b.HasCoffeeBreak, b.CoffeeBreakHeadcount, b.Status, b.Notes,
		).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return translateConstraintError(err)
	}
	return nil
}

// translateConstraintError maps the exclusion guard and FK failures to
// domain errors. The exclusion violation is the race-condition path: a
// concurrent insert won between our pre-check and this statement.
func translateConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation:
			return ErrTimeConflict
		case pgerrcode.ForeignKeyViolation:
			return ErrRoomNotFound
		case pgerrcode.CheckViolation:
			return ErrInvalidTimeRange
		}
	}
	return fmt.Errorf("booking write failed: %w", err)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	sql, args, err := selectBuilder().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBuilder().Column("count(*) OVER() AS total_count")

	if filter.ManagerID != "" {
		query = query.Where(squirrel.Eq{"b.manager_id": filter.ManagerID})
	}
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}
	if filter.LocationID != "" {
		query = query.Where(squirrel.Eq{"l.id": filter.LocationID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.Date != nil {
		query = query.Where(squirrel.Eq{"b.date_booking": *filter.Date})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.date_booking": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"b.date_booking": *filter.DateTo})
	}
	if filter.Search != "" {
		kw := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"r.name": kw},
			squirrel.ILike{"l.name": kw},
			squirrel.ILike{"m.username": kw},
			squirrel.ILike{"m.first_name": kw},
			squirrel.ILike{"m.last_name": kw},
		})
	}

	orderBy := "b.date_booking"
	switch filter.SortBy {
	case "start_datetime", "end_datetime", "status", "created_at":
		orderBy = "b." + filter.SortBy
	}
	orderDir := "ASC"
	if filter.SortOrder == "desc" {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "b.start_datetime ASC")

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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("bookings").
		Set("date_booking", b.DateBooking).
		Set("start_datetime", b.StartDatetime).
		Set("end_datetime", b.EndDatetime).
		Set("has_coffee_break", b.HasCoffeeBreak).
		Set("coffee_break_headcount", b.CoffeeBreakHeadcount).
		Set("status", b.Status).
		Set("confirmed_by", b.ConfirmedBy).
		Set("confirmed_at", b.ConfirmedAt).
		Set("cancelled_by", b.CancelledBy).
		Set("cancelled_at", b.CancelledAt).
		Set("cancellation_reason", b.CancellationReason).
		Set("notes", b.Notes).
		Set("is_active", b.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return translateConstraintError(err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE bookings SET is_active = false, updated_at = now() WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) FindConflicts(ctx context.Context, roomID string, start, end time.Time, excludeID string) ([]*Booking, error) {
	// Overlap predicate in SQL form: existing.start < end AND existing.end > start.
	// Must stay in sync with TimeRange.Overlaps.
	query := selectBuilder().
		Where(squirrel.Eq{"b.room_id": roomID}).
		Where(squirrel.Eq{"b.is_active": true}).
		Where(squirrel.Eq{"b.status": blockingStatuses}).
		Where(squirrel.Lt{"b.start_datetime": end}).
		Where(squirrel.Gt{"b.end_datetime": start}).
		OrderBy("b.start_datetime ASC")

	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"b.id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find conflicts query failed: %w", err)
	}

	return r.queryBookings(ctx, sql, args)
}

func (r *pgxRepository) ListForRoomDay(ctx context.Context, roomID string, date time.Time) ([]*Booking, error) {
	query := selectBuilder().
		Where(squirrel.Eq{"b.room_id": roomID}).
		Where(squirrel.Eq{"b.date_booking": date}).
		Where(squirrel.Eq{"b.is_active": true}).
		Where(squirrel.Eq{"b.status": blockingStatuses}).
		OrderBy("b.start_datetime ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build room day query failed: %w", err)
	}

	return r.queryBookings(ctx, sql, args)
}

func (r *pgxRepository) queryBookings(ctx context.Context, sql string, args []any) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, nil
}
