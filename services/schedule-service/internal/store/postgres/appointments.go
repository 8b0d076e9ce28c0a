package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shearbook/shearbook/libs/db"
	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
	"github.com/shearbook/shearbook/services/schedule-service/internal/outbox"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
)

type appointmentStore struct {
	pool   *db.Pool
	events *outbox.Repository
}

const appointmentColumns = `
	a.id, a.tenant_id, a.barber_id, a.client_id, a.service_id,
	COALESCE(TRIM(p.first_name || ' ' || p.last_name), ''),
	COALESCE(s.name, ''),
	a.start_time, a.end_time, a.status, COALESCE(a.notes, ''), a.created_at`

const appointmentJoins = `
	FROM appointments a
	LEFT JOIN profiles p ON p.id = a.client_id
	LEFT JOIN services s ON s.id = a.service_id`

func (r *appointmentStore) List(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error) {
	query := `SELECT` + appointmentColumns + appointmentJoins + `
	WHERE a.tenant_id = $1
		AND ($2 = '' OR a.barber_id::text = $2)
		AND ($3::timestamptz IS NULL OR a.start_time >= $3)
		AND ($4::timestamptz IS NULL OR a.start_time <= $4)
	ORDER BY a.start_time ASC, a.id ASC`

	rows, err := r.pool.Query(ctx, query, f.TenantID, f.BarberID, nullableTime(f.From), nullableTime(f.To))
	if err != nil {
		return nil, mapErr("appointments.list", err)
	}
	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, mapErr("appointments.list", err)
	}
	return appts, nil
}

func (r *appointmentStore) ListForClient(ctx context.Context, tenantID, clientID string, from time.Time) ([]model.Appointment, error) {
	query := `SELECT` + appointmentColumns + appointmentJoins + `
	WHERE a.tenant_id = $1
		AND a.client_id = $2
		AND ($3::timestamptz IS NULL OR a.start_time >= $3)
	ORDER BY a.start_time ASC, a.id ASC`

	rows, err := r.pool.Query(ctx, query, tenantID, clientID, nullableTime(from))
	if err != nil {
		return nil, mapErr("appointments.list_for_client", err)
	}
	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, mapErr("appointments.list_for_client", err)
	}
	return appts, nil
}

func (r *appointmentStore) Get(ctx context.Context, tenantID, id string) (model.Appointment, error) {
	query := `SELECT` + appointmentColumns + appointmentJoins + `
	WHERE a.id = $1 AND a.tenant_id = $2`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		return model.Appointment{}, mapErr("appointments.get", err)
	}
	return appt, nil
}

func (r *appointmentStore) Create(ctx context.Context, in store.NewAppointment) (model.Appointment, error) {
	status := in.Status
	if status == "" {
		status = model.StatusScheduled
	}
	if !model.KnownStatus(status) {
		return model.Appointment{}, &store.ValidationError{Field: "status", Reason: "unknown value " + status}
	}
	if !in.EndTime.After(in.StartTime) {
		return model.Appointment{}, &store.ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, mapErr("appointments.create", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Referenced rows must exist in the caller's tenant before the
	// insert; a foreign key alone cannot check the tenant.
	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM services WHERE id = $1 AND tenant_id = $2)
	`, in.ServiceID, in.TenantID).Scan(&exists)
	if err != nil {
		return model.Appointment{}, mapErr("appointments.create", err)
	}
	if !exists {
		return model.Appointment{}, &store.ValidationError{Field: "service_id", Reason: "unknown service"}
	}
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)
	`, in.ClientID).Scan(&exists)
	if err != nil {
		return model.Appointment{}, mapErr("appointments.create", err)
	}
	if !exists {
		return model.Appointment{}, &store.ValidationError{Field: "client_id", Reason: "unknown client"}
	}

	var id string
	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(tenant_id, barber_id, client_id, service_id, start_time, end_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, in.TenantID, in.BarberID, in.ClientID, in.ServiceID, in.StartTime, in.EndTime, status, in.Notes).Scan(&id, &createdAt)
	if err != nil {
		return model.Appointment{}, mapErr("appointments.create", err)
	}

	appt := model.Appointment{
		ID:        id,
		TenantID:  in.TenantID,
		BarberID:  in.BarberID,
		ClientID:  in.ClientID,
		ServiceID: in.ServiceID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Status:    status,
		Notes:     in.Notes,
		CreatedAt: createdAt,
	}
	if err := r.insertEvent(ctx, tx, outbox.EventAppointmentCreated, appt); err != nil {
		return model.Appointment{}, mapErr("appointments.create", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, mapErr("appointments.create", err)
	}
	return r.Get(ctx, in.TenantID, id)
}

func (r *appointmentStore) Update(ctx context.Context, tenantID, id string, patch store.AppointmentPatch) (model.Appointment, error) {
	if patch.Status != nil && !model.KnownStatus(*patch.Status) {
		return model.Appointment{}, &store.ValidationError{Field: "status", Reason: "unknown value " + *patch.Status}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, mapErr("appointments.update", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := getForUpdate(ctx, tx, tenantID, id)
	if err != nil {
		return model.Appointment{}, mapErr("appointments.update", err)
	}
	if patch.Status != nil {
		appt.Status = *patch.Status
	}
	if patch.Notes != nil {
		appt.Notes = *patch.Notes
	}

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET status = $3, notes = $4
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID, appt.Status, appt.Notes)
	if err != nil {
		return model.Appointment{}, mapErr("appointments.update", err)
	}

	if err := r.insertEvent(ctx, tx, outbox.EventAppointmentUpdated, appt); err != nil {
		return model.Appointment{}, mapErr("appointments.update", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, mapErr("appointments.update", err)
	}
	return r.Get(ctx, tenantID, id)
}

func (r *appointmentStore) Delete(ctx context.Context, tenantID, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapErr("appointments.delete", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := getForUpdate(ctx, tx, tenantID, id)
	if err != nil {
		return mapErr("appointments.delete", err)
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return mapErr("appointments.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	if err := r.insertEvent(ctx, tx, outbox.EventAppointmentDeleted, appt); err != nil {
		return mapErr("appointments.delete", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapErr("appointments.delete", err)
	}
	return nil
}

func (r *appointmentStore) ListCompleted(ctx context.Context, tenantID, barberID string, from, to time.Time) ([]model.Visit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(s.name, ''), COALESCE(s.price, 0), a.start_time
		FROM appointments a
		LEFT JOIN services s ON s.id = a.service_id
		WHERE a.tenant_id = $1
			AND a.barber_id = $2
			AND a.status = 'completed'
			AND a.start_time >= $3
			AND a.start_time <= $4
		ORDER BY a.start_time ASC
	`, tenantID, barberID, from, to)
	if err != nil {
		return nil, mapErr("appointments.list_completed", err)
	}
	defer rows.Close()

	var visits []model.Visit
	for rows.Next() {
		var v model.Visit
		if err := rows.Scan(&v.ServiceName, &v.Price, &v.StartTime); err != nil {
			return nil, mapErr("appointments.list_completed", err)
		}
		visits = append(visits, v)
	}
	if rows.Err() != nil {
		return nil, mapErr("appointments.list_completed", rows.Err())
	}
	return visits, nil
}

func (r *appointmentStore) insertEvent(ctx context.Context, tx pgx.Tx, eventType string, appt model.Appointment) error {
	if r.events == nil {
		return nil
	}
	evt, err := outbox.AppointmentEvent(eventType, appt)
	if err != nil {
		return err
	}
	return r.events.Insert(ctx, tx, evt)
}

func getForUpdate(ctx context.Context, tx pgx.Tx, tenantID, id string) (model.Appointment, error) {
	var appt model.Appointment
	err := tx.QueryRow(ctx, `
		SELECT id, tenant_id, barber_id, client_id, service_id,
			start_time, end_time, status, COALESCE(notes, ''), created_at
		FROM appointments
		WHERE id = $1 AND tenant_id = $2
		FOR UPDATE
	`, id, tenantID).Scan(
		&appt.ID,
		&appt.TenantID,
		&appt.BarberID,
		&appt.ClientID,
		&appt.ServiceID,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&appt.Notes,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.TenantID,
		&appt.BarberID,
		&appt.ClientID,
		&appt.ServiceID,
		&appt.ClientName,
		&appt.ServiceName,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&appt.Notes,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
