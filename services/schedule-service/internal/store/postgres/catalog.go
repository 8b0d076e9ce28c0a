package postgres

import (
	"context"

	"github.com/shearbook/shearbook/libs/db"
	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

type catalogStore struct {
	pool *db.Pool
}

func (r *catalogStore) ListServices(ctx context.Context, tenantID string) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, duration_mins, price
		FROM services
		WHERE tenant_id = $1
		ORDER BY name ASC
	`, tenantID)
	if err != nil {
		return nil, mapErr("catalog.list_services", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Name, &s.DurationMins, &s.Price); err != nil {
			return nil, mapErr("catalog.list_services", err)
		}
		services = append(services, s)
	}
	if rows.Err() != nil {
		return nil, mapErr("catalog.list_services", rows.Err())
	}
	return services, nil
}

func (r *catalogStore) GetService(ctx context.Context, tenantID, id string) (model.Service, error) {
	var s model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, duration_mins, price
		FROM services
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID).Scan(&s.ID, &s.TenantID, &s.Name, &s.DurationMins, &s.Price)
	if err != nil {
		return model.Service{}, mapErr("catalog.get_service", err)
	}
	return s, nil
}

func (r *catalogStore) ListClients(ctx context.Context, tenantID, barberID string) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id,
			COALESCE(p.first_name, ''),
			COALESCE(p.last_name, ''),
			COALESCE(p.email, ''),
			COALESCE(p.phone, ''),
			COUNT(a.id),
			to_char(MAX(a.start_time) AT TIME ZONE 'UTC', 'YYYY-MM-DD')
		FROM appointments a
		JOIN profiles p ON p.id = a.client_id
		WHERE a.tenant_id = $1 AND a.barber_id = $2
		GROUP BY p.id, p.first_name, p.last_name, p.email, p.phone
		ORDER BY MAX(a.start_time) DESC, p.id ASC
	`, tenantID, barberID)
	if err != nil {
		return nil, mapErr("catalog.list_clients", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.TotalVisits, &c.LastVisit); err != nil {
			return nil, mapErr("catalog.list_clients", err)
		}
		clients = append(clients, c)
	}
	if rows.Err() != nil {
		return nil, mapErr("catalog.list_clients", rows.Err())
	}
	return clients, nil
}

func (r *catalogStore) ClientHistory(ctx context.Context, tenantID, clientID string) ([]model.Appointment, error) {
	query := `SELECT` + appointmentColumns + appointmentJoins + `
	WHERE a.tenant_id = $1 AND a.client_id = $2
	ORDER BY a.start_time DESC, a.id ASC`

	rows, err := r.pool.Query(ctx, query, tenantID, clientID)
	if err != nil {
		return nil, mapErr("catalog.client_history", err)
	}
	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, mapErr("catalog.client_history", err)
	}
	return appts, nil
}
