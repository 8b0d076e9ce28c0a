package postgres

import (
	"context"

	"github.com/shearbook/shearbook/libs/db"
	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
)

type tenantStore struct {
	pool *db.Pool
}

func (r *tenantStore) Get(ctx context.Context, tenantID string) (model.Tenant, error) {
	var t model.Tenant
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, subdomain, COALESCE(logo_url, ''), COALESCE(primary_color, '')
		FROM tenants
		WHERE id = $1
	`, tenantID).Scan(&t.ID, &t.Name, &t.Subdomain, &t.LogoURL, &t.PrimaryColor)
	if err != nil {
		return model.Tenant{}, mapErr("tenants.get", err)
	}
	return t, nil
}

func (r *tenantStore) Update(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants
		SET name = $2, subdomain = $3, logo_url = $4, primary_color = $5
		WHERE id = $1
	`, tenant.ID, tenant.Name, tenant.Subdomain, tenant.LogoURL, tenant.PrimaryColor)
	if err != nil {
		return model.Tenant{}, mapErr("tenants.update", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Tenant{}, store.ErrNotFound
	}
	return r.Get(ctx, tenant.ID)
}
