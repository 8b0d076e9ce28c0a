// Package store defines the data access contract for the schedule
// service. Implementations live in store/postgres (production) and
// store/memory (local development and tests); the process picks one at
// startup and the rest of the service never learns which.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

// ErrNotFound reports that the requested row does not exist in the
// caller's tenant. Implementations return it for unknown ids and for
// rows that belong to another tenant, which keeps tenancy leaks out of
// the error surface.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected write: a missing reference, an
// out-of-domain status, an end before a start.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps backend failures (connection loss, bad SQL, broken
// invariants) with the operation that hit them.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AppointmentFilter scopes a listing. TenantID is mandatory; BarberID
// narrows to one barber's book; From/To bound StartTime when non-zero.
type AppointmentFilter struct {
	TenantID string
	BarberID string
	From     time.Time
	To       time.Time
}

// NewAppointment carries the fields a caller may set on creation.
// Status defaults to scheduled when empty.
type NewAppointment struct {
	TenantID  string
	BarberID  string
	ClientID  string
	ServiceID string
	StartTime time.Time
	EndTime   time.Time
	Status    string
	Notes     string
}

// AppointmentPatch updates only the fields a nil pointer leaves alone.
type AppointmentPatch struct {
	Status *string
	Notes  *string
}

type AppointmentStore interface {
	List(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error)
	ListForClient(ctx context.Context, tenantID, clientID string, from time.Time) ([]model.Appointment, error)
	Get(ctx context.Context, tenantID, id string) (model.Appointment, error)
	Create(ctx context.Context, appt NewAppointment) (model.Appointment, error)
	Update(ctx context.Context, tenantID, id string, patch AppointmentPatch) (model.Appointment, error)
	Delete(ctx context.Context, tenantID, id string) error
	// ListCompleted feeds revenue analytics: completed visits for one
	// barber with the service name and price joined in.
	ListCompleted(ctx context.Context, tenantID, barberID string, from, to time.Time) ([]model.Visit, error)
}

type CatalogStore interface {
	ListServices(ctx context.Context, tenantID string) ([]model.Service, error)
	GetService(ctx context.Context, tenantID, id string) (model.Service, error)
	// ListClients derives the client roster from appointment history:
	// distinct clients of one barber with visit counts and last visit.
	ListClients(ctx context.Context, tenantID, barberID string) ([]model.Client, error)
	ClientHistory(ctx context.Context, tenantID, clientID string) ([]model.Appointment, error)
}

type TenantStore interface {
	Get(ctx context.Context, tenantID string) (model.Tenant, error)
	Update(ctx context.Context, tenant model.Tenant) (model.Tenant, error)
}

// DataSource bundles the stores one backend provides.
type DataSource interface {
	Appointments() AppointmentStore
	Catalog() CatalogStore
	Tenants() TenantStore
}
