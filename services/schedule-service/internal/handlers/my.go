package handlers

import (
	"net/http"
	"strconv"
	"time"
)

// MyAppointments is the client-role view: the caller's own upcoming
// bookings across the tenant. include_past=true lifts the time floor.
func (h *Handler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	from := h.now().UTC()
	if includePast, _ := strconv.ParseBool(r.URL.Query().Get("include_past")); includePast {
		from = time.Time{}
	}

	appts, err := h.data.Appointments().ListForClient(r.Context(), id.TenantID, id.ActorID, from)
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
