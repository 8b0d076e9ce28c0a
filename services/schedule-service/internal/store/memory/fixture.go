package memory

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shearbook/shearbook/services/schedule-service/internal/model"
)

// FixtureGenerator seeds a DataSource with one shop's worth of data: a
// tenant, a service menu, a client roster and 10 to 15 appointments
// spread over the seven days either side of Now. The same Seed always
// produces the same dataset.
type FixtureGenerator struct {
	Seed     int64
	Now      time.Time
	TenantID string
	BarberID string
}

// NewSeeded builds a DataSource populated by gen. Zero-value fields get
// defaults: current time, tenant "tenant-demo", barber "barber-demo".
func NewSeeded(gen FixtureGenerator) *DataSource {
	if gen.Now.IsZero() {
		gen.Now = time.Now()
	}
	if gen.TenantID == "" {
		gen.TenantID = "tenant-demo"
	}
	if gen.BarberID == "" {
		gen.BarberID = "barber-demo"
	}

	ds := New()
	rng := rand.New(rand.NewSource(gen.Seed))

	ds.AddTenant(model.Tenant{
		ID:           gen.TenantID,
		Name:         "Demo Barber Shop",
		Subdomain:    "demo",
		PrimaryColor: "#4a75b5",
	})

	services := []model.Service{
		{ID: "service-1", TenantID: gen.TenantID, Name: "Haircut", DurationMins: 30, Price: 25},
		{ID: "service-2", TenantID: gen.TenantID, Name: "Beard Trim", DurationMins: 15, Price: 15},
		{ID: "service-3", TenantID: gen.TenantID, Name: "Full Service", DurationMins: 45, Price: 40},
		{ID: "service-4", TenantID: gen.TenantID, Name: "Hair Coloring", DurationMins: 90, Price: 60},
		{ID: "service-5", TenantID: gen.TenantID, Name: "Kids Cut", DurationMins: 20, Price: 18},
	}
	for _, s := range services {
		ds.AddService(s)
	}

	clients := []model.Client{
		{ID: "client-1", FirstName: "John", LastName: "Smith", Email: "john@example.com", Phone: "555-123-4567"},
		{ID: "client-2", FirstName: "Michael", LastName: "Johnson", Email: "michael@example.com", Phone: "555-987-6543"},
		{ID: "client-3", FirstName: "Robert", LastName: "Williams", Email: "robert@example.com", Phone: "555-456-7890"},
		{ID: "client-4", FirstName: "David", LastName: "Brown", Email: "david@example.com", Phone: "555-789-0123"},
		{ID: "client-5", FirstName: "James", LastName: "Jones", Email: "james@example.com", Phone: "555-321-6547"},
	}
	for _, c := range clients {
		ds.AddClient(c)
	}

	anchor := time.Date(gen.Now.Year(), gen.Now.Month(), gen.Now.Day(), 0, 0, 0, 0, time.UTC)
	count := 10 + rng.Intn(6)
	for i := 0; i < count; i++ {
		day := anchor.AddDate(0, 0, -7+rng.Intn(14))
		hour := 9 + rng.Intn(8)
		minute := 0
		if rng.Intn(2) == 1 {
			minute = 30
		}
		start := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

		svc := services[rng.Intn(len(services))]
		client := clients[rng.Intn(len(clients))]

		status := model.StatusScheduled
		if rng.Float64() > 0.8 {
			if rng.Intn(2) == 0 {
				status = model.StatusCompleted
			} else {
				status = model.StatusCancelled
			}
		}

		notes := ""
		if rng.Intn(2) == 1 {
			notes = "Walk-in regular"
		}

		a := model.Appointment{
			ID:        fmt.Sprintf("fixture-appointment-%d", i),
			TenantID:  gen.TenantID,
			BarberID:  gen.BarberID,
			ClientID:  client.ID,
			ServiceID: svc.ID,
			StartTime: start,
			EndTime:   start.Add(time.Duration(svc.DurationMins) * time.Minute),
			Status:    status,
			Notes:     notes,
			CreatedAt: gen.Now,
		}
		ds.appointments[a.ID] = a
	}

	return ds
}
