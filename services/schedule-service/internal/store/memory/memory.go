// Package memory implements store.DataSource with mutex-guarded maps.
// It backs local development and handler tests; processes pointed at it
// serve believable data with no Postgres around.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
	"github.com/shearbook/shearbook/services/schedule-service/internal/store"
)

type DataSource struct {
	mu           sync.RWMutex
	appointments map[string]model.Appointment
	services     map[string]model.Service
	clients      map[string]model.Client
	tenants      map[string]model.Tenant

	now func() time.Time
}

func New() *DataSource {
	return &DataSource{
		appointments: map[string]model.Appointment{},
		services:     map[string]model.Service{},
		clients:      map[string]model.Client{},
		tenants:      map[string]model.Tenant{},
		now:          time.Now,
	}
}

func (ds *DataSource) Appointments() store.AppointmentStore { return (*appointmentStore)(ds) }
func (ds *DataSource) Catalog() store.CatalogStore          { return (*catalogStore)(ds) }
func (ds *DataSource) Tenants() store.TenantStore           { return (*tenantStore)(ds) }

// AddTenant, AddService and AddClient seed reference data. They are for
// fixtures and tests, not the request path.
func (ds *DataSource) AddTenant(t model.Tenant) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.tenants[t.ID] = t
}

func (ds *DataSource) AddService(s model.Service) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.services[s.ID] = s
}

func (ds *DataSource) AddClient(c model.Client) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.clients[c.ID] = c
}

type appointmentStore DataSource

func (s *appointmentStore) List(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Appointment
	for _, a := range s.appointments {
		if a.TenantID != f.TenantID {
			continue
		}
		if f.BarberID != "" && a.BarberID != f.BarberID {
			continue
		}
		if !f.From.IsZero() && a.StartTime.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && a.StartTime.After(f.To) {
			continue
		}
		out = append(out, s.withNames(a))
	}
	sortByStart(out)
	return out, nil
}

func (s *appointmentStore) ListForClient(ctx context.Context, tenantID, clientID string, from time.Time) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Appointment
	for _, a := range s.appointments {
		if a.TenantID != tenantID || a.ClientID != clientID {
			continue
		}
		if !from.IsZero() && a.StartTime.Before(from) {
			continue
		}
		out = append(out, s.withNames(a))
	}
	sortByStart(out)
	return out, nil
}

func (s *appointmentStore) Get(ctx context.Context, tenantID, id string) (model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok || a.TenantID != tenantID {
		return model.Appointment{}, store.ErrNotFound
	}
	return s.withNames(a), nil
}

func (s *appointmentStore) Create(ctx context.Context, in store.NewAppointment) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
	svc, ok := s.services[in.ServiceID]
	if !ok || svc.TenantID != in.TenantID {
		return model.Appointment{}, &store.ValidationError{Field: "service_id", Reason: "unknown service"}
	}
	if _, ok := s.clients[in.ClientID]; !ok {
		return model.Appointment{}, &store.ValidationError{Field: "client_id", Reason: "unknown client"}
	}

	a := model.Appointment{
		ID:        uuid.NewString(),
		TenantID:  in.TenantID,
		BarberID:  in.BarberID,
		ClientID:  in.ClientID,
		ServiceID: in.ServiceID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Status:    status,
		Notes:     in.Notes,
		CreatedAt: s.now(),
	}
	s.appointments[a.ID] = a
	return s.withNames(a), nil
}

func (s *appointmentStore) Update(ctx context.Context, tenantID, id string, patch store.AppointmentPatch) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok || a.TenantID != tenantID {
		return model.Appointment{}, store.ErrNotFound
	}
	if patch.Status != nil {
		if !model.KnownStatus(*patch.Status) {
			return model.Appointment{}, &store.ValidationError{Field: "status", Reason: "unknown value " + *patch.Status}
		}
		a.Status = *patch.Status
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	s.appointments[id] = a
	return s.withNames(a), nil
}

func (s *appointmentStore) Delete(ctx context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok || a.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

func (s *appointmentStore) ListCompleted(ctx context.Context, tenantID, barberID string, from, to time.Time) ([]model.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Visit
	for _, a := range s.appointments {
		if a.TenantID != tenantID || a.BarberID != barberID || a.Status != model.StatusCompleted {
			continue
		}
		if a.StartTime.Before(from) || a.StartTime.After(to) {
			continue
		}
		v := model.Visit{StartTime: a.StartTime}
		if svc, ok := s.services[a.ServiceID]; ok {
			v.ServiceName = svc.Name
			v.Price = svc.Price
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *appointmentStore) withNames(a model.Appointment) model.Appointment {
	if svc, ok := s.services[a.ServiceID]; ok {
		a.ServiceName = svc.Name
	}
	if c, ok := s.clients[a.ClientID]; ok {
		a.ClientName = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	return a
}

func sortByStart(appts []model.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].StartTime.Equal(appts[j].StartTime) {
			return appts[i].ID < appts[j].ID
		}
		return appts[i].StartTime.Before(appts[j].StartTime)
	})
}

type catalogStore DataSource

func (s *catalogStore) ListServices(ctx context.Context, tenantID string) ([]model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Service
	for _, svc := range s.services {
		if svc.TenantID == tenantID {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *catalogStore) GetService(ctx context.Context, tenantID, id string) (model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok || svc.TenantID != tenantID {
		return model.Service{}, store.ErrNotFound
	}
	return svc, nil
}

func (s *catalogStore) ListClients(ctx context.Context, tenantID, barberID string) ([]model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visits := map[string]int{}
	last := map[string]time.Time{}
	for _, a := range s.appointments {
		if a.TenantID != tenantID || a.BarberID != barberID {
			continue
		}
		visits[a.ClientID]++
		if a.StartTime.After(last[a.ClientID]) {
			last[a.ClientID] = a.StartTime
		}
	}

	out := make([]model.Client, 0, len(visits))
	for id, n := range visits {
		c, ok := s.clients[id]
		if !ok {
			c = model.Client{ID: id}
		}
		c.TotalVisits = n
		c.LastVisit = last[id].UTC().Format("2006-01-02")
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastVisit == out[j].LastVisit {
			return out[i].ID < out[j].ID
		}
		return out[i].LastVisit > out[j].LastVisit
	})
	return out, nil
}

func (s *catalogStore) ClientHistory(ctx context.Context, tenantID, clientID string) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Appointment
	for _, a := range s.appointments {
		if a.TenantID != tenantID || a.ClientID != clientID {
			continue
		}
		out = append(out, (*appointmentStore)(s).withNames(a))
	}
	// Most recent first.
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

type tenantStore DataSource

func (s *tenantStore) Get(ctx context.Context, tenantID string) (model.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[tenantID]
	if !ok {
		return model.Tenant{}, store.ErrNotFound
	}
	return t, nil
}

func (s *tenantStore) Update(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[tenant.ID]; !ok {
		return model.Tenant{}, store.ErrNotFound
	}
	s.tenants[tenant.ID] = tenant
	return tenant, nil
}
