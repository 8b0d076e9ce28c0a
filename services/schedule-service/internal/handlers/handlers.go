// Package handlers exposes the HTTP surface of the schedule service.
// Handlers resolve the caller through identity.FromContext, talk to a
// store.DataSource and render JSON; the grid math lives in the
// calendar package.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shearbook/shearbook/services/schedule-service/internal/identity"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
)

type Handler struct {
	data     store.DataSource
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func New(data store.DataSource, logger *slog.Logger, validate *validator.Validate) *Handler {
	return &Handler{
		data:     data,
		logger:   logger,
		validate: validate,
		now:      time.Now,
	}
}

// Register wires every route onto mux. Auth and role middleware are
// applied here so the caller only stacks the outer chain.
func (h *Handler) Register(mux *http.ServeMux, authn func(http.Handler) http.Handler) {
	barber := func(fn http.HandlerFunc) http.Handler {
		return authn(identity.RequireRole(fn, identity.RoleBarber))
	}
	client := func(fn http.HandlerFunc) http.Handler {
		return authn(identity.RequireRole(fn, identity.RoleClient))
	}

	mux.Handle("/api/v1/calendar", barber(h.Calendar))
	mux.Handle("/api/v1/appointments", barber(h.Appointments))
	mux.Handle("/api/v1/appointments/update", barber(h.UpdateAppointment))
	mux.Handle("/api/v1/appointments/delete", barber(h.DeleteAppointment))
	mux.Handle("/api/v1/clients", barber(h.Clients))
	mux.Handle("/api/v1/clients/history", barber(h.ClientHistory))
	mux.Handle("/api/v1/services", barber(h.Services))
	mux.Handle("/api/v1/tenant", barber(h.Tenant))
	mux.Handle("/api/v1/analytics/revenue", barber(h.Revenue))
	mux.Handle("/api/v1/my/appointments", client(h.MyAppointments))
}

func (h *Handler) caller(r *http.Request) (identity.Identity, bool) {
	return identity.FromContext(r.Context())
}

// writeStoreError folds the store taxonomy into HTTP statuses.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"field":  ve.Field,
			"detail": ve.Reason,
		})
	case store.IsNotFound(err):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		h.logger.Error("store operation failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeInvalid renders go-playground/validator errors field by field.
func writeInvalid(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return
	}
	http.Error(w, "validation failed", http.StatusUnprocessableEntity)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
