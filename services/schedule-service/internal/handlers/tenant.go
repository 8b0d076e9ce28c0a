package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

type tenantPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required,max=120"`
	Subdomain    string `json:"subdomain" validate:"required,hostname_rfc1123,max=63"`
	LogoURL      string `json:"logo_url" validate:"omitempty,url"`
	PrimaryColor string `json:"primary_color" validate:"omitempty,hexcolor"`
}

// Tenant serves the shop settings form: GET reads, PUT replaces.
func (h *Handler) Tenant(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getTenant(w, r)
	case http.MethodPut:
		h.updateTenant(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tenant, err := h.data.Tenants().Get(r.Context(), id.TenantID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantPayload(tenant))
}

func (h *Handler) updateTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req tenantPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}

	// The tenant in the token is the only one the caller may edit.
	updated, err := h.data.Tenants().Update(r.Context(), model.Tenant{
		ID:           id.TenantID,
		Name:         req.Name,
		Subdomain:    req.Subdomain,
		LogoURL:      req.LogoURL,
		PrimaryColor: req.PrimaryColor,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantPayload(updated))
}

func toTenantPayload(t model.Tenant) tenantPayload {
	return tenantPayload{
		ID:           t.ID,
		Name:         t.Name,
		Subdomain:    t.Subdomain,
		LogoURL:      t.LogoURL,
		PrimaryColor: t.PrimaryColor,
	}
}
