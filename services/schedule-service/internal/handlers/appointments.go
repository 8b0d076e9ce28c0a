package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
)

type createAppointmentRequest struct {
	ClientID  string `json:"client_id" validate:"required"`
	ServiceID string `json:"service_id" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no-show"`
	Notes     string `json:"notes"`
}

type updateAppointmentRequest struct {
	AppointmentID string  `json:"appointment_id" validate:"required"`
	Status        *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no-show"`
	Notes         *string `json:"notes"`
}

type deleteAppointmentRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required"`
}

// Appointments serves the collection: GET lists the caller's book,
// POST creates a booking on it.
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listAppointments(w, r)
	case http.MethodPost:
		h.createAppointment(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	filter := store.AppointmentFilter{TenantID: id.TenantID, BarberID: id.ActorID}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		filter.To = t
	}

	appts, err := h.data.Appointments().List(r.Context(), filter)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	items := make([]calendarAppointment, 0, len(appts))
	for _, a := range appts {
		items = append(items, toCalendarAppointment(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": items})
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	var endTime time.Time
	if req.EndTime != "" {
		endTime, err = time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			http.Error(w, "invalid end_time", http.StatusBadRequest)
			return
		}
	} else {
		// No explicit end: derive it from the booked service's duration.
		svc, err := h.data.Catalog().GetService(r.Context(), id.TenantID, req.ServiceID)
		if err != nil {
			if store.IsNotFound(err) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
					"error":  "validation failed",
					"field":  "service_id",
					"detail": "unknown service",
				})
				return
			}
			h.writeStoreError(w, r, err)
			return
		}
		endTime = startTime.Add(time.Duration(svc.DurationMins) * time.Minute)
	}

	appt, err := h.data.Appointments().Create(r.Context(), store.NewAppointment{
		TenantID:  id.TenantID,
		BarberID:  id.ActorID,
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCalendarAppointment(appt))
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}

	appt, err := h.data.Appointments().Update(r.Context(), id.TenantID, req.AppointmentID, store.AppointmentPatch{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarAppointment(appt))
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req deleteAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}

	if err := h.data.Appointments().Delete(r.Context(), id.TenantID, req.AppointmentID); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": req.AppointmentID})
}
