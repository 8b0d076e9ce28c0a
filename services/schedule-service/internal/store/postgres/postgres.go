// Package postgres implements store.DataSource on pgx. Appointment
// writes also insert an outbox row in the same transaction so the
// lifecycle events cannot drift from the table.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shearbook/shearbook/libs/db"
	"github.com/shearbook/shearbook/services/schedule-service/internal/outbox"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
)

type DataSource struct {
	pool   *db.Pool
	events *outbox.Repository
}

func New(pool *db.Pool, events *outbox.Repository) *DataSource {
	return &DataSource{pool: pool, events: events}
}

func (ds *DataSource) Appointments() store.AppointmentStore {
	return &appointmentStore{pool: ds.pool, events: ds.events}
}

func (ds *DataSource) Catalog() store.CatalogStore {
	return &catalogStore{pool: ds.pool}
}

func (ds *DataSource) Tenants() store.TenantStore {
	return &tenantStore{pool: ds.pool}
}

// mapErr folds pgx errors into the store taxonomy. Validation errors
// are produced before SQL runs and pass through unchanged.
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var ve *store.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &store.StoreError{Op: op, Err: err}
}
