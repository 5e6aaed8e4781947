// Package model defines the core domain types for the turno booking system.
package model

import "time"

// Status is the lifecycle state of a reservation. The only transition is
// active → cancelled; cancelled is terminal and rows are never deleted.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// Reservation represents a booked appointment slot. Date and Time are the
// slot coordinates ("YYYY-MM-DD" and "HH:MM"); at most one active
// reservation may exist per (Date, Time) pair.
type Reservation struct {
	ID            string    `json:"id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Active reports whether the reservation still occupies its slot.
func (r *Reservation) Active() bool {
	return r.Status == StatusActive
}

// ReservationDraft is the input for creating a reservation.
type ReservationDraft struct {
	Date          string
	Time          string
	CustomerName  string
	CustomerEmail string
}

// ReserveRequest is the payload for booking a slot.
type ReserveRequest struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// Failure codes attached to unsuccessful results so callers can
// distinguish expected business outcomes without parsing summaries.
const (
	CodeValidation = "validation_error"
	CodeSlotTaken  = "slot_taken"
	CodeNotFound   = "not_found"
)

// AvailabilityResult is the outcome of a checkAvailability call.
type AvailabilityResult struct {
	Success   bool   `json:"success"`
	Available bool   `json:"available"`
	Summary   string `json:"summary"`
	Code      string `json:"code,omitempty"`
}

// ReserveResult is the outcome of a reserve call. Warnings carry
// advisory annotations (outside business hours, notification failure)
// that never affect Success.
type ReserveResult struct {
	Success     bool         `json:"success"`
	Summary     string       `json:"summary"`
	Code        string       `json:"code,omitempty"`
	Reservation *Reservation `json:"reservation,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// ListResult is the outcome of a listReservations call. An empty match
// is a successful result with zero items, not an error.
type ListResult struct {
	Success bool          `json:"success"`
	Summary string        `json:"summary"`
	Code    string        `json:"code,omitempty"`
	Items   []Reservation `json:"items"`
}

// GetResult is the outcome of a single-reservation lookup.
type GetResult struct {
	Success     bool         `json:"success"`
	Summary     string       `json:"summary"`
	Code        string       `json:"code,omitempty"`
	Reservation *Reservation `json:"reservation,omitempty"`
}

// CancelResult is the outcome of a cancel call.
type CancelResult struct {
	Success     bool         `json:"success"`
	Summary     string       `json:"summary"`
	Code        string       `json:"code,omitempty"`
	Reservation *Reservation `json:"reservation,omitempty"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
