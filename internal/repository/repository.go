// Package repository implements all database queries for the turno booking
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucas-cardozo/turnos-service/internal/model"
)

// ErrNotFound is returned when a requested reservation does not exist.
var ErrNotFound = errors.New("reservation not found")

// ErrSlotTaken is returned when an active reservation already holds the
// (date, time) slot. It is detected from the unique-index violation, so
// it is reliable even when two inserts race.
var ErrSlotTaken = errors.New("slot already has an active reservation")

const uniqueViolation = "23505"

// Columns selected for every reservation read. slot_date and slot_time
// come back as the same strings the API accepts.
const reservationColumns = `
	id,
	to_char(slot_date, 'YYYY-MM-DD'),
	to_char(slot_time, 'HH24:MI'),
	customer_name,
	customer_email,
	status,
	created_at`

// ReservationRepository handles persistence for reservations.
type ReservationRepository struct {
	db *pgxpool.Pool
}

// NewReservationRepository constructs a ReservationRepository.
func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Insert atomically creates an active reservation for the draft's slot.
// The partial unique index on (slot_date, slot_time) WHERE status =
// 'active' is the sole authority on whether the slot is free; when two
// inserts race, exactly one commits and the other gets ErrSlotTaken.
func (r *ReservationRepository) Insert(ctx context.Context, draft model.ReservationDraft) (*model.Reservation, error) {
	res := &model.Reservation{
		ID:            uuid.New().String(),
		Date:          draft.Date,
		Time:          draft.Time,
		CustomerName:  draft.CustomerName,
		CustomerEmail: draft.CustomerEmail,
		Status:        model.StatusActive,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO turnos (id, slot_date, slot_time, customer_name, customer_email, status, created_at)
		 VALUES ($1, $2::date, $3::time, $4, $5, $6, $7)`,
		res.ID, res.Date, res.Time, res.CustomerName, res.CustomerEmail, res.Status, res.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	return res, nil
}

// List returns reservations with slot_date in [dateFrom, dateTo]
// inclusive, ordered ascending by (date, time). When activeOnly is true,
// cancelled rows are filtered out.
func (r *ReservationRepository) List(ctx context.Context, dateFrom, dateTo string, activeOnly bool) ([]model.Reservation, error) {
	query := `SELECT` + reservationColumns + `
		FROM turnos
		WHERE slot_date BETWEEN $1::date AND $2::date`
	args := []any{dateFrom, dateTo}
	if activeOnly {
		query += ` AND status = $3`
		args = append(args, model.StatusActive)
	}
	query += ` ORDER BY slot_date ASC, slot_time ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// ExistsActive reports whether an active reservation holds the slot.
func (r *ReservationRepository) ExistsActive(ctx context.Context, date, tod string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM turnos
			WHERE slot_date = $1::date AND slot_time = $2::time AND status = $3
		)`,
		date, tod, model.StatusActive,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active reservation: %w", err)
	}
	return exists, nil
}

// Cancel sets the reservation's status to cancelled and returns the
// updated row. Cancelling an already-cancelled reservation succeeds and
// leaves it in the same terminal state; only an unknown id fails.
func (r *ReservationRepository) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE turnos SET status = $1 WHERE id = $2
		 RETURNING`+reservationColumns,
		model.StatusCancelled, id,
	)

	var res model.Reservation
	if err := scanReservation(row, &res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}
	return &res, nil
}

// GetByID returns a single reservation or ErrNotFound.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT`+reservationColumns+` FROM turnos WHERE id = $1`,
		id,
	)

	var res model.Reservation
	if err := scanReservation(row, &res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}

func scanReservation(row pgx.Row, res *model.Reservation) error {
	return row.Scan(
		&res.ID,
		&res.Date,
		&res.Time,
		&res.CustomerName,
		&res.CustomerEmail,
		&res.Status,
		&res.CreatedAt,
	)
}
