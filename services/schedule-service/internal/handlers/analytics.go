package handlers

import (
	"net/http"

	"github.com/shearbook/shearbook/services/schedule-service/internal/analytics"
)

// Revenue aggregates the caller's completed appointments over the
// requested range. Unknown ranges degrade to the monthly window.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rng := analytics.ParseRange(r.URL.Query().Get("range"))
	from, to := analytics.Window(rng, h.now().UTC())

	visits, err := h.data.Appointments().ListCompleted(r.Context(), id.TenantID, id.ActorID, from, to)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	summary := analytics.Summarize(visits)
	writeJSON(w, http.StatusOK, map[string]any{
		"range":   string(rng),
		"summary": summary,
	})
}
