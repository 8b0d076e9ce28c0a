package handlers

import (
	"net/http"
	"strings"

	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

type clientItem struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	TotalVisits int    `json:"total_visits"`
	LastVisit   string `json:"last_visit"`
}

// Clients lists the caller's client roster, derived from appointment
// history. The q parameter filters in memory on name, email or phone.
func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	clients, err := h.data.Catalog().ListClients(r.Context(), id.TenantID, id.ActorID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	items := make([]clientItem, 0, len(clients))
	for _, c := range clients {
		if q != "" && !clientMatches(c, q) {
			continue
		}
		items = append(items, clientItem{
			ID:          c.ID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			Email:       c.Email,
			Phone:       c.Phone,
			TotalVisits: c.TotalVisits,
			LastVisit:   c.LastVisit,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": items})
}

func clientMatches(c model.Client, q string) bool {
	name := strings.ToLower(c.FirstName + " " + c.LastName)
	return strings.Contains(name, q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.Phone), q)
}

// ClientHistory returns every appointment one client booked with the
// caller's shop, most recent first.
func (h *Handler) ClientHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if clientID == "" {
		http.Error(w, "missing client_id", http.StatusBadRequest)
		return
	}

	appts, err := h.data.Catalog().ClientHistory(r.Context(), id.TenantID, clientID)
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

type serviceItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DurationMins int     `json:"duration_mins"`
	Price        float64 `json:"price"`
}

// Services lists the tenant's bookable service menu.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	services, err := h.data.Catalog().ListServices(r.Context(), id.TenantID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, serviceItem{
			ID:           s.ID,
			Name:         s.Name,
			DurationMins: s.DurationMins,
			Price:        s.Price,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": items})
}
