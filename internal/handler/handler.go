// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the scheduling service.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucas-cardozo/turnos-service/internal/model"
	"github.com/lucas-cardozo/turnos-service/internal/service"
)

// TurnoHandler holds all HTTP handlers for the booking API.
type TurnoHandler struct {
	svc *service.SchedulingService
}

// NewTurnoHandler constructs a TurnoHandler.
func NewTurnoHandler(svc *service.SchedulingService) *TurnoHandler {
	return &TurnoHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// failureStatus maps a result failure code to an HTTP status. Business
// outcomes arrive as structured results, so this is the only place the
// taxonomy meets HTTP.
func failureStatus(code string) int {
	switch code {
	case model.CodeValidation:
		return http.StatusBadRequest
	case model.CodeSlotTaken:
		return http.StatusConflict
	case model.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// CheckAvailability handles GET /turnos/availability?date=YYYY-MM-DD&time=HH:MM
func (h *TurnoHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	tod := r.URL.Query().Get("time")

	res, err := h.svc.CheckAvailability(r.Context(), date, tod)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check availability")
		return
	}
	if !res.Success {
		writeJSON(w, failureStatus(res.Code), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Reserve handles POST /turnos
func (h *TurnoHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req model.ReserveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.Reserve(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reserve slot")
		return
	}
	if !res.Success {
		writeJSON(w, failureStatus(res.Code), res)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListReservations handles GET /turnos?from=YYYY-MM-DD&to=YYYY-MM-DD&all=true
// Without parameters it lists today's active reservations.
func (h *TurnoHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly := q.Get("all") != "true"

	res, err := h.svc.ListReservations(r.Context(), q.Get("from"), q.Get("to"), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	if !res.Success {
		writeJSON(w, failureStatus(res.Code), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetReservation handles GET /turnos/{id}
func (h *TurnoHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.svc.GetReservation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get reservation")
		return
	}
	if !res.Success {
		writeJSON(w, failureStatus(res.Code), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Cancel handles DELETE /turnos/{id}
// Cancellation is a status transition, not a removal; repeating it is
// a success with the same terminal state.
func (h *TurnoHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cancel reservation")
		return
	}
	if !res.Success {
		writeJSON(w, failureStatus(res.Code), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
