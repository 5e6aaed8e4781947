// Package service implements the scheduling operations: availability
// checks, booking, listing, and cancellation. It validates every input
// before touching the store and returns structured results; only
// infrastructure faults travel on the error channel.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucas-cardozo/turnos-service/internal/metrics"
	"github.com/lucas-cardozo/turnos-service/internal/model"
	"github.com/lucas-cardozo/turnos-service/internal/notify"
	"github.com/lucas-cardozo/turnos-service/internal/repository"
	"github.com/lucas-cardozo/turnos-service/internal/validate"
)

// Store is the persistence contract the scheduler depends on. The pgx
// repository satisfies it in production; tests substitute a fake.
type Store interface {
	Insert(ctx context.Context, draft model.ReservationDraft) (*model.Reservation, error)
	List(ctx context.Context, dateFrom, dateTo string, activeOnly bool) ([]model.Reservation, error)
	ExistsActive(ctx context.Context, date, tod string) (bool, error)
	Cancel(ctx context.Context, id string) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
}

// SchedulingService orchestrates validate → store → notify for the four
// booking operations. All dependencies are injected; the service holds
// no mutable state of its own, so it is safe for concurrent callers.
type SchedulingService struct {
	store         Store
	notifier      notify.Notifier
	clock         validate.Clock
	loc           *time.Location
	businessStart string
	businessEnd   string
	log           *zap.Logger
	metrics       *metrics.Collector
}

// Options tunes the service beyond its required dependencies.
type Options struct {
	Clock              validate.Clock
	Location           *time.Location
	BusinessHoursStart string
	BusinessHoursEnd   string
	Metrics            *metrics.Collector
}

// NewSchedulingService constructs a SchedulingService. Zero-value
// options fall back to the real clock, UTC, and 09:00–18:00.
func NewSchedulingService(store Store, notifier notify.Notifier, log *zap.Logger, opts Options) *SchedulingService {
	if opts.Clock == nil {
		opts.Clock = validate.RealClock{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.BusinessHoursStart == "" {
		opts.BusinessHoursStart = "09:00"
	}
	if opts.BusinessHoursEnd == "" {
		opts.BusinessHoursEnd = "18:00"
	}
	return &SchedulingService{
		store:         store,
		notifier:      notifier,
		clock:         opts.Clock,
		loc:           opts.Location,
		businessStart: opts.BusinessHoursStart,
		businessEnd:   opts.BusinessHoursEnd,
		log:           log,
		metrics:       opts.Metrics,
	}
}

// CheckAvailability reports whether the (date, time) slot is free.
func (s *SchedulingService) CheckAvailability(ctx context.Context, date, tod string) (*model.AvailabilityResult, error) {
	if reason := s.validateSlot(date, tod); reason != "" {
		return &model.AvailabilityResult{
			Summary: reason,
			Code:    model.CodeValidation,
		}, nil
	}
	if !validate.IsFutureDate(date, s.clock.Now(), s.loc) {
		return &model.AvailabilityResult{
			Summary: fmt.Sprintf("date %s is in the past", date),
			Code:    model.CodeValidation,
		}, nil
	}

	exists, err := s.store.ExistsActive(ctx, date, tod)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}

	res := &model.AvailabilityResult{Success: true, Available: !exists}
	if exists {
		res.Summary = fmt.Sprintf("slot %s %s is already taken", date, tod)
	} else {
		res.Summary = fmt.Sprintf("slot %s %s is available", date, tod)
	}
	return res, nil
}

// Reserve books the slot for the customer. The store's unique constraint
// is the sole authority on whether the slot is free; the ExistsActive
// pre-check only produces a friendlier early answer and a concurrent
// winner is still detected as ErrSlotTaken on insert. A confirmation is
// dispatched after the committed write; its failure becomes a warning
// inside the success result, never an overall failure.
func (s *SchedulingService) Reserve(ctx context.Context, req model.ReserveRequest) (*model.ReserveResult, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(strings.ToLower(req.CustomerEmail))

	if reason := s.validateReserve(req); reason != "" {
		s.countReservation(metrics.OutcomeRejected)
		return &model.ReserveResult{Summary: reason, Code: model.CodeValidation}, nil
	}

	var warnings []string
	if !validate.IsWithinBusinessHours(req.Time, s.businessStart, s.businessEnd) {
		warning := fmt.Sprintf("time %s is outside business hours (%s-%s)", req.Time, s.businessStart, s.businessEnd)
		warnings = append(warnings, warning)
		s.log.Warn("reservation outside business hours",
			zap.String("date", req.Date),
			zap.String("time", req.Time),
		)
	}

	// Fast path for the common "slot visibly taken" case. Correctness
	// does not depend on it: the insert below re-checks atomically.
	taken, err := s.store.ExistsActive(ctx, req.Date, req.Time)
	if err != nil {
		return nil, fmt.Errorf("reserve: %w", err)
	}
	if taken {
		s.countReservation(metrics.OutcomeSlotTaken)
		return &model.ReserveResult{
			Summary: fmt.Sprintf("slot %s %s is not available", req.Date, req.Time),
			Code:    model.CodeSlotTaken,
		}, nil
	}

	res, err := s.store.Insert(ctx, model.ReservationDraft{
		Date:          req.Date,
		Time:          req.Time,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			// Lost the race against a concurrent reserve.
			s.countReservation(metrics.OutcomeSlotTaken)
			return &model.ReserveResult{
				Summary: fmt.Sprintf("slot %s %s was just taken by another reservation", req.Date, req.Time),
				Code:    model.CodeSlotTaken,
			}, nil
		}
		return nil, fmt.Errorf("reserve: %w", err)
	}

	s.countReservation(metrics.OutcomeReserved)
	s.log.Info("reservation created",
		zap.String("id", res.ID),
		zap.String("date", res.Date),
		zap.String("time", res.Time),
	)

	// Post-commit hook: best-effort confirmation.
	if sent := s.notifier.NotifyConfirmation(ctx, res.CustomerEmail, res.CustomerName, res.Date, res.Time, res.ID); sent {
		s.countNotification("sent")
	} else {
		s.countNotification("failed")
		warnings = append(warnings, "confirmation notification could not be delivered")
	}

	return &model.ReserveResult{
		Success:     true,
		Summary:     fmt.Sprintf("reserved %s %s for %s", res.Date, res.Time, res.CustomerName),
		Reservation: res,
		Warnings:    warnings,
	}, nil
}

// ListReservations returns reservations in [dateFrom, dateTo]. Empty
// bounds default to today (dateFrom) and to dateFrom (dateTo). A range
// with no matches is a successful, empty result.
func (s *SchedulingService) ListReservations(ctx context.Context, dateFrom, dateTo string, activeOnly bool) (*model.ListResult, error) {
	if dateFrom == "" {
		dateFrom = s.clock.Now().In(s.loc).Format("2006-01-02")
	}
	if dateTo == "" {
		dateTo = dateFrom
	}
	if !validate.IsValidDateFormat(dateFrom) {
		return &model.ListResult{
			Summary: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", dateFrom),
			Code:    model.CodeValidation,
			Items:   []model.Reservation{},
		}, nil
	}
	if !validate.IsValidDateFormat(dateTo) {
		return &model.ListResult{
			Summary: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", dateTo),
			Code:    model.CodeValidation,
			Items:   []model.Reservation{},
		}, nil
	}

	items, err := s.store.List(ctx, dateFrom, dateTo, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	if items == nil {
		items = []model.Reservation{}
	}

	return &model.ListResult{
		Success: true,
		Summary: fmt.Sprintf("%d reservation(s) between %s and %s", len(items), dateFrom, dateTo),
		Items:   items,
	}, nil
}

// Cancel moves the reservation to its terminal cancelled state. The
// operation is idempotent: cancelling an already-cancelled reservation
// succeeds with the same terminal state.
func (s *SchedulingService) Cancel(ctx context.Context, id string) (*model.CancelResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return &model.CancelResult{
			Summary: fmt.Sprintf("no reservation found with id %q", id),
			Code:    model.CodeNotFound,
		}, nil
	}

	res, err := s.store.Cancel(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.CancelResult{
				Summary: fmt.Sprintf("no reservation found with id %q", id),
				Code:    model.CodeNotFound,
			}, nil
		}
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CancellationsTotal.Inc()
	}
	s.log.Info("reservation cancelled", zap.String("id", res.ID))

	return &model.CancelResult{
		Success:     true,
		Summary:     fmt.Sprintf("reservation %s cancelled", res.ID),
		Reservation: res,
	}, nil
}

// GetReservation returns a single reservation by id, wrapped in the
// same success/summary envelope as the other operations.
func (s *SchedulingService) GetReservation(ctx context.Context, id string) (*model.GetResult, error) {
	notFound := &model.GetResult{
		Summary: fmt.Sprintf("no reservation found with id %q", id),
		Code:    model.CodeNotFound,
	}
	if _, err := uuid.Parse(id); err != nil {
		return notFound, nil
	}

	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	return &model.GetResult{
		Success:     true,
		Summary:     fmt.Sprintf("reservation %s: %s %s (%s)", res.ID, res.Date, res.Time, res.Status),
		Reservation: res,
	}, nil
}

func (s *SchedulingService) validateSlot(date, tod string) string {
	if !validate.IsValidDateFormat(date) {
		return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date)
	}
	if !validate.IsValidTimeFormat(tod) {
		return fmt.Sprintf("invalid time %q, expected HH:MM", tod)
	}
	return ""
}

func (s *SchedulingService) validateReserve(req model.ReserveRequest) string {
	if reason := s.validateSlot(req.Date, req.Time); reason != "" {
		return reason
	}
	if req.CustomerName == "" {
		return "customer name is required"
	}
	if !isValidEmail(req.CustomerEmail) {
		return fmt.Sprintf("invalid customer email %q", req.CustomerEmail)
	}
	now := s.clock.Now()
	if !validate.IsFutureDate(req.Date, now, s.loc) {
		return fmt.Sprintf("date %s is in the past", req.Date)
	}
	if !validate.IsFutureDateTime(req.Date, req.Time, now, s.loc) {
		return fmt.Sprintf("time %s on %s has already passed", req.Time, req.Date)
	}
	return ""
}

func (s *SchedulingService) countReservation(outcome string) {
	if s.metrics != nil {
		s.metrics.ReservationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *SchedulingService) countNotification(result string) {
	if s.metrics != nil {
		s.metrics.NotificationsTotal.WithLabelValues(result).Inc()
	}
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
